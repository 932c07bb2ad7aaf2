package container

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"road-survey/config"
	app "road-survey/internal/application"
	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
	"road-survey/internal/infrastructure/storage"
	"road-survey/internal/infrastructure/vision"
	"road-survey/internal/metrics"
	"road-survey/internal/report"
	"road-survey/internal/survey"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
	SurveyService     *app.SurveyService
	Logger            *zap.SugaredLogger

	closeDetector func() error
}

// Deps внешние зависимости сервисов
type Deps struct {
	UserRepo    port.UserRepository
	SurveyRepo  port.SurveyRepository
	Detector    port.DamageDetector
	Highlighter port.DamageHighlighter
	Describer   port.DamageDescriber
	Notifier    port.SurveyNotifier
	Pipeline    survey.Options
	Reports     report.HTMLOptions
	Logger      *zap.SugaredLogger
}

func New(d Deps) *Container {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.UserRepo == nil {
		d.UserRepo = storage.NewMemoryUserRepository()
	}
	if d.SurveyRepo == nil {
		d.SurveyRepo = storage.NewMemorySurveyRepository()
	}
	if d.Highlighter == nil {
		d.Highlighter = vision.NewAnnotator()
	}
	if d.Describer == nil {
		d.Describer = app.NewTextDescriber()
	}

	onImage := d.Pipeline.OnImage
	d.Pipeline.OnImage = func(rec entity.ImageRecord, elapsed time.Duration) {
		metrics.ObserveImage(rec, elapsed)
		if onImage != nil {
			onImage(rec, elapsed)
		}
	}

	pipeline := survey.NewPipeline(d.Detector, d.Highlighter, d.Pipeline, d.Logger.Named("survey"))
	userService := app.NewUserService(d.UserRepo)
	inspectionService := app.NewInspectionService(userService, pipeline.Adapter(), d.Highlighter, d.Describer)
	surveyService := app.NewSurveyService(pipeline, report.NewGenerator(d.Reports), d.SurveyRepo, d.Notifier, d.Logger.Named("service"))

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
		SurveyService:     surveyService,
		Logger:            d.Logger,
	}
}

// FromConfig собирает контейнер по настройкам: детектор, конвейер и отчёты.
func FromConfig(cfg *config.Config, logger *zap.SugaredLogger, notifier port.SurveyNotifier, onImage func(entity.ImageRecord, time.Duration)) (*Container, error) {
	detector, closeDetector, err := NewDetector(cfg.Model)
	if err != nil {
		return nil, err
	}

	c := New(Deps{
		Detector: detector,
		Notifier: notifier,
		Pipeline: survey.Options{
			Workers:       cfg.Survey.Workers,
			ImageTimeout:  cfg.Survey.ImageTimeout,
			ThumbnailSize: cfg.Survey.ThumbnailSize,
			OnImage:       onImage,
		},
		Reports: report.HTMLOptions{
			DefaultCenter: report.Coordinates{Latitude: cfg.Survey.MapCenter[0], Longitude: cfg.Survey.MapCenter[1]},
		},
		Logger: logger,
	})
	c.closeDetector = closeDetector
	return c, nil
}

// NewDetector создаёт детектор выбранного бэкенда и функцию освобождения ресурсов.
func NewDetector(cfg config.ModelConfig) (port.DamageDetector, func() error, error) {
	switch cfg.Backend {
	case "", config.BackendDemo:
		return vision.NewDemoDetector(), func() error { return nil }, nil
	case config.BackendGoCV:
		detector, err := vision.NewGoCVDetector(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("load model %s: %w", cfg.Path, err)
		}
		return detector, detector.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
}

// Close освобождает ресурсы детектора.
func (c *Container) Close() error {
	if c.closeDetector == nil {
		return nil
	}
	return c.closeDetector()
}
