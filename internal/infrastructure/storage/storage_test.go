package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
)

func TestMemoryUserRepository_GetCreatesAndSaves(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	user.SetState(entity.StateAwaitingPhoto)
	// Без Save изменения не видны другим читателям.
	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, again.State)

	require.NoError(t, repo.Save(ctx, user))
	again, err = repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, again.State)
}

func TestMemorySurveyRepository_Lifecycle(t *testing.T) {
	repo := NewMemorySurveyRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, port.ErrSurveyNotFound)

	older := &entity.SurveyRun{Job: entity.SurveyJob{ID: "a"}, Status: entity.RunRunning, StartedAt: time.Unix(100, 0)}
	newer := &entity.SurveyRun{Job: entity.SurveyJob{ID: "b"}, Status: entity.RunRunning, StartedAt: time.Unix(200, 0)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.Error(t, repo.Create(ctx, older))

	older.Status = entity.RunCompleted
	require.NoError(t, repo.Update(ctx, older))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, entity.RunCompleted, got.Status)

	runs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "b", runs[0].Job.ID)

	require.ErrorIs(t, repo.Update(ctx, &entity.SurveyRun{Job: entity.SurveyJob{ID: "zzz"}}), port.ErrSurveyNotFound)
}
