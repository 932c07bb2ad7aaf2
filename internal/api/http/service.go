package httpapi

import (
	"context"

	"road-survey/internal/domain/entity"
)

// SurveyService операции над запусками, доступные через API
type SurveyService interface {
	Start(ctx context.Context, job entity.SurveyJob) (*entity.SurveyRun, error)
	Get(ctx context.Context, id string) (*entity.SurveyRun, error)
	List(ctx context.Context) ([]*entity.SurveyRun, error)
	Cancel(ctx context.Context, id string) error
}

// JobDefaults значения задания, если клиент их не передал
type JobDefaults struct {
	OutputDir    string
	Confidence   float64
	Format       entity.OutputFormat
	Thumbnails   bool
	IncludeClean bool
}
