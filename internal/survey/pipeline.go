package survey

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
)

// Options настройки конвейера обследования
type Options struct {
	Workers       int           // размер пула; 0 означает число ядер
	ImageTimeout  time.Duration // таймаут детекции одного снимка
	ThumbnailSize int

	// OnImage вызывается после учёта каждого снимка. Должен быть потокобезопасным.
	OnImage func(rec entity.ImageRecord, elapsed time.Duration)
}

// Pipeline однопроходный конвейер: перечисление, детекция, раскладка, агрегация.
type Pipeline struct {
	adapter     *Adapter
	highlighter port.DamageHighlighter
	opts        Options
	logger      *zap.SugaredLogger
}

// NewPipeline собирает конвейер вокруг внешнего детектора.
func NewPipeline(detector port.DamageDetector, highlighter port.DamageHighlighter, opts Options, logger *zap.SugaredLogger) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		adapter:     NewAdapter(detector, opts.ImageTimeout, logger),
		highlighter: highlighter,
		opts:        opts,
		logger:      logger,
	}
}

// Adapter адаптер детекции конвейера.
func (p *Pipeline) Adapter() *Adapter { return p.adapter }

// Run обрабатывает папку обследования.
//
// Ошибки отдельных снимков изолируются и попадают в failed. Ошибка записи артефакта
// останавливает запуск и возвращается без результата. При отмене ctx новые снимки
// не запускаются, незавершённые бросаются, а возвращается согласованный частичный
// результат вместе с ошибкой, оборачивающей ctx.Err().
func (p *Pipeline) Run(ctx context.Context, job entity.SurveyJob) (*entity.SurveyResult, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid survey job: %w", err)
	}

	enumerator, err := NewEnumerator(job.InputDir)
	if err != nil {
		return nil, err
	}

	organizer := NewOrganizer(OrganizerOptions{
		Root:          job.OutputDir,
		IncludeClean:  job.IncludeClean,
		Thumbnails:    job.Thumbnails,
		ThumbnailSize: p.opts.ThumbnailSize,
	}, p.highlighter)
	if err := organizer.Prepare(); err != nil {
		return nil, err
	}

	agg := NewAggregator(job)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	var enumErr error
	for rec, err := range enumerator.Images() {
		if err != nil {
			enumErr = err
			break
		}
		if gctx.Err() != nil {
			break
		}
		agg.Enumerated()
		organizer.Claim(&rec)
		g.Go(func() error {
			return p.process(gctx, job, organizer, agg, rec)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if enumErr != nil {
		return nil, fmt.Errorf("enumerate %s: %w", job.InputDir, enumErr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result := agg.Finalize(true)
		p.logger.Warnw("survey cancelled", "survey", job.DisplayName(), "processed", result.Total)
		return result, fmt.Errorf("survey %s cancelled: %w", job.DisplayName(), ctxErr)
	}

	result := agg.Finalize(false)
	p.logger.Infow("survey finished",
		"survey", job.DisplayName(),
		"total", result.Total,
		"damaged", result.DamagedCount(),
		"clean", result.CleanCount,
		"failed", result.FailedCount(),
	)
	return result, nil
}

// process обрабатывает один снимок. Возвращает ошибку только для сбоев записи.
func (p *Pipeline) process(ctx context.Context, job entity.SurveyJob, organizer *Organizer, agg *Aggregator, rec entity.ImageRecord) error {
	if ctx.Err() != nil {
		return nil
	}
	started := time.Now()

	img, err := p.adapter.Decode(rec.Path)
	if err == nil {
		bounds := img.Bounds()
		rec.Width, rec.Height = bounds.Dx(), bounds.Dy()

		var detections []entity.DetectionRecord
		detections, err = p.adapter.Detect(ctx, rec.Path, img, job.Confidence)
		if err == nil {
			rec.MarkProcessed(detections)
		}
	}

	if err != nil {
		// Отменённый запуск: снимок не учитывается вовсе.
		if ctx.Err() != nil {
			return nil
		}
		p.logger.Warnw("image failed", "path", rec.Path, "error", err)
		rec.MarkFailed(err)
	} else if err := organizer.Place(&rec, img); err != nil {
		return err
	}

	if err := agg.Add(rec); err != nil {
		return err
	}
	if p.opts.OnImage != nil {
		p.opts.OnImage(rec, time.Since(started))
	}
	return nil
}
