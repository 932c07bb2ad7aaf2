package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
)

// MemorySurveyRepository in-memory хранилище запусков обследований
type MemorySurveyRepository struct {
	mu   sync.RWMutex
	runs map[string]entity.SurveyRun
}

// NewMemorySurveyRepository создаёт пустое хранилище
func NewMemorySurveyRepository() *MemorySurveyRepository {
	return &MemorySurveyRepository{
		runs: make(map[string]entity.SurveyRun),
	}
}

// Create сохраняет новый запуск; повторный ID считается ошибкой
func (r *MemorySurveyRepository) Create(ctx context.Context, run *entity.SurveyRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.Job.ID]; exists {
		return fmt.Errorf("survey %s already exists", run.Job.ID)
	}
	r.runs[run.Job.ID] = *run
	return nil
}

// Get возвращает копию запуска
func (r *MemorySurveyRepository) Get(ctx context.Context, id string) (*entity.SurveyRun, error) {
	r.mu.RLock()
	run, exists := r.runs[id]
	r.mu.RUnlock()

	if !exists {
		return nil, port.ErrSurveyNotFound
	}
	return &run, nil
}

// Update заменяет состояние существующего запуска
func (r *MemorySurveyRepository) Update(ctx context.Context, run *entity.SurveyRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.Job.ID]; !exists {
		return port.ErrSurveyNotFound
	}
	r.runs[run.Job.ID] = *run
	return nil
}

// List возвращает все запуски, новые первыми
func (r *MemorySurveyRepository) List(ctx context.Context) ([]*entity.SurveyRun, error) {
	r.mu.RLock()
	out := make([]*entity.SurveyRun, 0, len(r.runs))
	for _, run := range r.runs {
		run := run
		out = append(out, &run)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

var _ port.SurveyRepository = (*MemorySurveyRepository)(nil)
