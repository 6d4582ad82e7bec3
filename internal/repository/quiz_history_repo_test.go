package repository

import (
	"HealthyTrack-Dashboard/internal/model"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHistory(t *testing.T) *QuizHistoryRepository {
	t.Helper()
	repo, err := NewQuizHistoryRepository(filepath.Join(t.TempDir(), "data", "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestQuizHistoryEmptyStats(t *testing.T) {
	repo := newHistory(t)

	stats, err := repo.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, stats.Attempts)
	assert.Nil(t, stats.Last)
}

func TestQuizHistoryStats(t *testing.T) {
	repo := newHistory(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	attempts := []model.QuizResult{
		{UserID: 1, Username: "ana", Score: 5, Total: 10, Percent: 50, Answers: []int{1, 0}, CompletedAt: base},
		{UserID: 1, Username: "ana", Score: 9, Total: 10, Percent: 90, Answers: []int{1, 1}, CompletedAt: base.Add(time.Hour)},
		{UserID: 1, Username: "ana", Score: 7, Total: 10, Percent: 70, Answers: []int{2}, CompletedAt: base.Add(2 * time.Hour)},
		{UserID: 2, Username: "bo", Score: 10, Total: 10, Percent: 100, Answers: []int{}, CompletedAt: base},
	}
	for i := range attempts {
		require.NoError(t, repo.Save(ctx, &attempts[i]))
		assert.NotEmpty(t, attempts[i].ID)
	}

	stats, err := repo.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Attempts)
	assert.Equal(t, 90, stats.BestPercent)
	assert.InDelta(t, 70.0, stats.AveragePercent, 0.001)
	require.NotNil(t, stats.Last)
	assert.Equal(t, 70, stats.Last.Percent)
	assert.Equal(t, []int{2}, stats.Last.Answers)
	assert.True(t, stats.Last.CompletedAt.Equal(base.Add(2*time.Hour)))

	recent, err := repo.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 70, recent[0].Percent)
	assert.Equal(t, 90, recent[1].Percent)
}
