package port

import (
	"context"
	"errors"

	"road-survey/internal/domain/entity"
)

// ErrSurveyNotFound запуск с таким ID не найден
var ErrSurveyNotFound = errors.New("survey not found")

// ErrSurveyFinished запуск уже завершён, отменять нечего
var ErrSurveyFinished = errors.New("survey already finished")

// SurveyRepository хранилище запусков обследований
type SurveyRepository interface {
	// Create сохраняет новый запуск
	Create(ctx context.Context, run *entity.SurveyRun) error

	// Get возвращает копию запуска по ID или ErrSurveyNotFound
	Get(ctx context.Context, id string) (*entity.SurveyRun, error)

	// Update заменяет сохранённое состояние запуска
	Update(ctx context.Context, run *entity.SurveyRun) error

	// List возвращает все запуски, новые первыми
	List(ctx context.Context) ([]*entity.SurveyRun, error)
}

// SurveyNotifier отправляет итоги обследования во внешний канал
type SurveyNotifier interface {
	NotifySurvey(ctx context.Context, result *entity.SurveyResult) error
}
