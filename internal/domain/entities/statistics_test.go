package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, entities.Rate(0, 0))
	assert.Equal(t, 0.0, entities.Rate(3, 0))
	assert.Equal(t, 100.0, entities.Rate(4, 4))
	assert.InDelta(t, 30.0, entities.Rate(3, 10), 1e-9)
}

func fact(correct *bool, latency int, at time.Time) entities.AnswerFact {
	return entities.AnswerFact{UserAnswer: entities.UserAnswer{
		IsCorrect:      correct,
		LatencySeconds: latency,
		AnsweredAt:     at,
	}}
}

func TestStatistics_Rebuild(t *testing.T) {
	yes, no := true, false
	t1 := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	now := t2.Add(time.Minute)

	s := entities.Statistics{TotalAnswered: 99, TotalCorrect: 99}
	s.Rebuild([]entities.AnswerFact{
		fact(&yes, 10, t1),
		fact(&no, 20, t2),
		fact(nil, 5, t1),
		fact(&yes, 15, t1),
	}, now)

	assert.Equal(t, 4, s.TotalAnswered)
	assert.Equal(t, 2, s.TotalCorrect)
	assert.Equal(t, 50.0, s.CorrectRate)
	assert.Equal(t, 50, s.TotalStudySeconds)
	require.NotNil(t, s.LastStudiedAt)
	assert.Equal(t, t2, *s.LastStudiedAt)
	assert.Equal(t, now, s.UpdatedAt)
}

func TestStatistics_RebuildEmpty(t *testing.T) {
	s := entities.Statistics{TotalAnswered: 3}
	s.Rebuild(nil, time.Now())

	assert.Zero(t, s.TotalAnswered)
	assert.Zero(t, s.CorrectRate)
	assert.Nil(t, s.LastStudiedAt)
}
