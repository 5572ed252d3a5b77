package terminal

import (
	"context"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
	"github.com/aliskhannn/itpass-trainer/internal/service"
)

type QuizEngine interface {
	StartSession(ctx context.Context, opts service.StartOptions) (string, []*entities.Question, error)
	CurrentQuestion() *entities.Question
	CurrentIndex() int
	QuestionCount() int
	NextQuestion() bool
	PreviousQuestion() bool
	SubmitAnswer(ctx context.Context, choiceID int64, latencySeconds int) (*entities.UserAnswer, error)
	FinishSession(ctx context.Context) (*entities.SessionSummary, error)
	AbandonSession(ctx context.Context) error
}

type StatisticsService interface {
	SessionStats(ctx context.Context, sessionID string) (*entities.SessionStats, error)
	CategoryStats(ctx context.Context, categoryID *int64) (map[string]entities.CategoryStat, error)
	OverallStats(ctx context.Context) (*entities.OverallStats, error)
	WeakPoints(ctx context.Context, threshold float64) ([]entities.WeakPoint, error)
	LearningTrend(ctx context.Context, days int) ([]entities.TrendPoint, error)
}
