package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

const (
	DefaultWeakThreshold = 60.0
	DefaultWeakLimit     = 10
	DefaultTrendDays     = 7

	weakExcerptRunes = 50
)

// StatisticsService computes read-only reports from raw answers.
// Only RefreshStatistics writes, and only to the cached singleton.
type StatisticsService struct {
	store     storage.Store
	loc       *time.Location
	weakLimit int
	logger    *zap.Logger

	now func() time.Time
}

// NewStatisticsService creates a new StatisticsService.
// loc decides the day boundaries of LearningTrend; nil means UTC.
func NewStatisticsService(store storage.Store, loc *time.Location, weakLimit int, logger *zap.Logger) *StatisticsService {
	if loc == nil {
		loc = time.UTC
	}
	if weakLimit <= 0 {
		weakLimit = DefaultWeakLimit
	}
	return &StatisticsService{
		store:     store,
		loc:       loc,
		weakLimit: weakLimit,
		logger:    logger,
		now:       time.Now,
	}
}

// SessionStats classifies every recorded answer of a session.
func (s *StatisticsService) SessionStats(ctx context.Context, sessionID string) (*entities.SessionStats, error) {
	answers, err := s.store.Answers().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storageErr("list answers", err)
	}

	stats := &entities.SessionStats{SessionID: sessionID, Total: len(answers)}
	for _, a := range answers {
		switch {
		case a.IsCorrect == nil:
			stats.Unanswered++
		case *a.IsCorrect:
			stats.Correct++
		default:
			stats.Incorrect++
		}
		stats.ElapsedSeconds += a.LatencySeconds
	}

	stats.CorrectRate = entities.Rate(stats.Correct, stats.Total)
	if stats.Total > 0 {
		stats.AvgSecondsPerQuestion = float64(stats.ElapsedSeconds) / float64(stats.Total)
	}

	return stats, nil
}

// CategoryStats groups answers by category name. A nil categoryID covers every category.
func (s *StatisticsService) CategoryStats(ctx context.Context, categoryID *int64) (map[string]entities.CategoryStat, error) {
	facts, err := s.store.Answers().ListFacts(ctx, storage.AnswerFilter{CategoryID: categoryID})
	if err != nil {
		return nil, storageErr("list answer facts", err)
	}

	out := make(map[string]entities.CategoryStat)
	for i := range facts {
		f := &facts[i]
		st := out[f.CategoryName]
		st.CategoryName = f.CategoryName
		st.Total++
		if f.Correct() {
			st.Correct++
		}
		out[f.CategoryName] = st
	}

	for name, st := range out {
		st.CorrectRate = entities.Rate(st.Correct, st.Total)
		out[name] = st
	}

	return out, nil
}

// OverallStats aggregates every answer ever recorded.
func (s *StatisticsService) OverallStats(ctx context.Context) (*entities.OverallStats, error) {
	facts, err := s.store.Answers().ListFacts(ctx, storage.AnswerFilter{})
	if err != nil {
		return nil, storageErr("list answer facts", err)
	}

	stats := &entities.OverallStats{TotalAnswered: len(facts)}
	sessions := make(map[string]struct{})
	for i := range facts {
		f := &facts[i]
		if f.Correct() {
			stats.TotalCorrect++
		}
		stats.TotalStudySeconds += f.LatencySeconds
		if f.SessionID != "" {
			sessions[f.SessionID] = struct{}{}
		}
	}
	stats.CorrectRate = entities.Rate(stats.TotalCorrect, stats.TotalAnswered)
	stats.StudySessions = len(sessions)

	return stats, nil
}

// WeakPoints returns questions whose correct rate is strictly below threshold,
// weakest first, at most the configured limit. No match yields an empty slice.
func (s *StatisticsService) WeakPoints(ctx context.Context, threshold float64) ([]entities.WeakPoint, error) {
	facts, err := s.store.Answers().ListFacts(ctx, storage.AnswerFilter{})
	if err != nil {
		return nil, storageErr("list answer facts", err)
	}

	out := []entities.WeakPoint{}
	for _, wp := range questionRates(facts) {
		if wp.CorrectRate < threshold {
			out = append(out, wp)
		}
	}

	if len(out) > s.weakLimit {
		out = out[:s.weakLimit]
	}

	return out, nil
}

// LearningTrend returns the per-day correct rate of the last days days,
// oldest first. Days without answers are omitted.
func (s *StatisticsService) LearningTrend(ctx context.Context, days int) ([]entities.TrendPoint, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}

	since := s.now().UTC().AddDate(0, 0, -days)
	facts, err := s.store.Answers().ListFacts(ctx, storage.AnswerFilter{Since: &since})
	if err != nil {
		return nil, storageErr("list answer facts", err)
	}

	type bucket struct{ total, correct int }
	buckets := make(map[string]*bucket)
	for i := range facts {
		f := &facts[i]
		day := entities.StudyDay(f.AnsweredAt, s.loc)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.total++
		if f.Correct() {
			b.correct++
		}
	}

	dates := make([]string, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	trend := make([]entities.TrendPoint, 0, len(dates))
	for _, d := range dates {
		b := buckets[d]
		trend = append(trend, entities.TrendPoint{
			Date:        d,
			CorrectRate: entities.Rate(b.correct, b.total),
			Questions:   b.total,
		})
	}

	return trend, nil
}

// GetStatistics reads the cached singleton. A store that never finished a
// session returns zero statistics.
func (s *StatisticsService) GetStatistics(ctx context.Context) (*entities.Statistics, error) {
	st, err := s.store.Statistics().Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrStatisticsNotFound) {
			return &entities.Statistics{}, nil
		}
		return nil, storageErr("get statistics", err)
	}
	return st, nil
}

// RefreshStatistics rebuilds the singleton from every raw answer using tx,
// which should be the transaction of the calling operation.
func (s *StatisticsService) RefreshStatistics(ctx context.Context, tx storage.Store) (*entities.Statistics, error) {
	st, err := tx.Statistics().Get(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrStatisticsNotFound) {
			return nil, storageErr("get statistics", err)
		}
		st = &entities.Statistics{}
	}

	facts, err := tx.Answers().ListFacts(ctx, storage.AnswerFilter{})
	if err != nil {
		return nil, storageErr("list answer facts", err)
	}

	st.Rebuild(facts, s.now().UTC())
	if err := tx.Statistics().Save(ctx, st); err != nil {
		return nil, storageErr("save statistics", err)
	}

	s.logger.Debug("statistics refreshed",
		zap.Int("total_answered", st.TotalAnswered),
		zap.Float64("correct_rate", st.CorrectRate),
	)

	return st, nil
}

// questionRates computes the historical correct rate of every answered
// question, weakest first. Ties keep the lower question ID first.
func questionRates(facts []entities.AnswerFact) []entities.WeakPoint {
	byQuestion := make(map[int64]*entities.WeakPoint)
	for i := range facts {
		f := &facts[i]
		wp, ok := byQuestion[f.QuestionID]
		if !ok {
			q := entities.Question{Text: f.QuestionText}
			wp = &entities.WeakPoint{
				QuestionID:  f.QuestionID,
				TextExcerpt: q.Excerpt(weakExcerptRunes),
				Category:    f.CategoryName,
			}
			byQuestion[f.QuestionID] = wp
		}
		wp.AttemptCount++
		if f.Correct() {
			wp.CorrectCount++
		}
	}

	out := make([]entities.WeakPoint, 0, len(byQuestion))
	for _, wp := range byQuestion {
		wp.CorrectRate = entities.Rate(wp.CorrectCount, wp.AttemptCount)
		out = append(out, *wp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CorrectRate != out[j].CorrectRate {
			return out[i].CorrectRate < out[j].CorrectRate
		}
		return out[i].QuestionID < out[j].QuestionID
	})

	return out
}
