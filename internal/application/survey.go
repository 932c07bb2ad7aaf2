package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
	"road-survey/internal/metrics"
	"road-survey/internal/report"
	"road-survey/internal/survey"
)

// SurveyService запускает пакетные обследования и отслеживает их статус.
type SurveyService struct {
	pipeline *survey.Pipeline
	reports  *report.Generator
	repo     port.SurveyRepository
	notifier port.SurveyNotifier
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup

	now func() time.Time
}

// NewSurveyService собирает сервис. notifier может быть nil.
func NewSurveyService(pipeline *survey.Pipeline, reports *report.Generator, repo port.SurveyRepository, notifier port.SurveyNotifier, logger *zap.SugaredLogger) *SurveyService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SurveyService{
		pipeline: pipeline,
		reports:  reports,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
		now:      time.Now,
	}
}

// Run выполняет обследование синхронно.
//
// При отмене ctx возвращается согласованный частичный результат и ошибка,
// оборачивающая ctx.Err(); отчёты в этом случае не пишутся.
func (s *SurveyService) Run(ctx context.Context, job entity.SurveyJob) (*entity.SurveyResult, error) {
	job, err := s.prepare(job)
	if err != nil {
		return nil, err
	}
	run, err := s.register(ctx, job)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, run)
}

// Start запускает обследование в фоне и сразу возвращает запись о запуске.
// Функция отмены регистрируется до сохранения запуска, поэтому Cancel,
// пришедший сразу после появления записи, прерывает именно этот запуск.
func (s *SurveyService) Start(ctx context.Context, job entity.SurveyJob) (*entity.SurveyRun, error) {
	job, err := s.prepare(job)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if _, running := s.cancels[job.ID]; running {
		s.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("survey %s is already running", job.ID)
	}
	s.cancels[job.ID] = cancel
	s.mu.Unlock()

	run, err := s.register(ctx, job)
	if err != nil {
		s.mu.Lock()
		delete(s.cancels, job.ID)
		s.mu.Unlock()
		cancel()
		return nil, err
	}

	snapshot := *run
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.cancels, run.Job.ID)
			s.mu.Unlock()
			cancel()
		}()
		_, _ = s.execute(runCtx, run)
	}()

	return &snapshot, nil
}

// Cancel прерывает фоновый запуск.
func (s *SurveyService) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
		return nil
	}

	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return port.ErrSurveyFinished
}

// Get возвращает состояние запуска.
func (s *SurveyService) Get(ctx context.Context, id string) (*entity.SurveyRun, error) {
	return s.repo.Get(ctx, id)
}

// List возвращает все запуски, новые первыми.
func (s *SurveyService) List(ctx context.Context) ([]*entity.SurveyRun, error) {
	return s.repo.List(ctx)
}

// Shutdown отменяет фоновые запуски и ждёт их завершения.
func (s *SurveyService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// prepare дополняет ID, время создания и формат и проверяет задание.
func (s *SurveyService) prepare(job entity.SurveyJob) (entity.SurveyJob, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}
	if job.Format == "" {
		job.Format = entity.FormatBoth
	}
	if err := job.Validate(); err != nil {
		return job, fmt.Errorf("invalid survey job: %w", err)
	}
	if _, err := survey.NewEnumerator(job.InputDir); err != nil {
		return job, err
	}
	return job, nil
}

// register сохраняет запуск в статусе running.
func (s *SurveyService) register(ctx context.Context, job entity.SurveyJob) (*entity.SurveyRun, error) {
	run := &entity.SurveyRun{
		Job:       job,
		Status:    entity.RunRunning,
		StartedAt: s.now(),
	}
	if err := s.repo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("register survey %s: %w", job.ID, err)
	}
	return run, nil
}

func (s *SurveyService) execute(ctx context.Context, run *entity.SurveyRun) (*entity.SurveyResult, error) {
	job := run.Job
	log := s.logger.With("survey", job.DisplayName(), "id", job.ID)
	log.Infow("survey started", "input", job.InputDir, "output", job.OutputDir, "threshold", job.Confidence)

	result, err := s.pipeline.Run(ctx, job)
	switch {
	case err != nil && result != nil:
		s.finish(run, entity.RunCancelled, result, err)
		log.Warnw("survey cancelled", "processed", result.Total)
		return result, err
	case err != nil:
		s.finish(run, entity.RunFailed, nil, err)
		log.Errorw("survey failed", "error", err)
		return nil, err
	}

	paths, err := s.reports.Generate(job.OutputDir, result, job.Format)
	if err != nil {
		err = fmt.Errorf("generate reports: %w", err)
		s.finish(run, entity.RunFailed, nil, err)
		log.Errorw("report generation failed", "error", err)
		return nil, err
	}
	run.JSONReport, run.HTMLReport = paths.JSON, paths.HTML
	s.finish(run, entity.RunCompleted, result, nil)

	if s.notifier != nil {
		if err := s.notifier.NotifySurvey(ctx, result); err != nil {
			log.Warnw("survey notification failed", "error", err)
		}
	}
	return result, nil
}

func (s *SurveyService) finish(run *entity.SurveyRun, status entity.RunStatus, result *entity.SurveyResult, err error) {
	run.Status = status
	run.Result = result
	run.FinishedAt = s.now()
	if err != nil {
		run.Error = err.Error()
	}
	metrics.ObserveRun(status)

	// Контекст запуска может быть уже отменён, а статус сохранить нужно.
	if uErr := s.repo.Update(context.Background(), run); uErr != nil {
		s.logger.Errorw("save survey status", "id", run.Job.ID, "error", uErr)
	}
}
