package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
	"road-survey/internal/infrastructure/storage"
	"road-survey/internal/infrastructure/vision"
	"road-survey/internal/report"
	"road-survey/internal/survey"
)

var (
	cleanColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	slowColor  = color.RGBA{R: 10, G: 200, B: 10, A: 255}
)

type recordingNotifier struct {
	mu      sync.Mutex
	results []*entity.SurveyResult
	err     error
}

func (n *recordingNotifier) NotifySurvey(ctx context.Context, result *entity.SurveyResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results = append(n.results, result)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.results)
}

func writeSurveyPNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 48, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newSurveyService(t *testing.T, notifier port.SurveyNotifier) (*SurveyService, *storage.MemorySurveyRepository) {
	t.Helper()
	detector := vision.NewFakeDetector()
	detector.Responses[potholeColor] = []entity.RawDetection{
		{Label: "D40", Confidence: 0.9, Box: entity.BoundingBox{X1: 1, Y1: 1, X2: 20, Y2: 20}},
	}
	detector.Delays[slowColor] = 5 * time.Second

	repo := storage.NewMemorySurveyRepository()
	pipeline := survey.NewPipeline(detector, vision.NewAnnotator(), survey.Options{Workers: 2}, nil)
	svc := NewSurveyService(pipeline, report.NewGenerator(report.HTMLOptions{}), repo, notifier, nil)
	return svc, repo
}

func surveyJob(input, output string) entity.SurveyJob {
	return entity.SurveyJob{
		Name:         "north ring",
		InputDir:     input,
		OutputDir:    output,
		Confidence:   0.5,
		Thumbnails:   true,
		IncludeClean: true,
	}
}

func TestSurveyService_RunWritesReports(t *testing.T) {
	input := t.TempDir()
	output := filepath.Join(t.TempDir(), "out")
	for i := 0; i < 4; i++ {
		c := cleanColor
		if i == 1 {
			c = potholeColor
		}
		writeSurveyPNG(t, filepath.Join(input, fmt.Sprintf("frame_%d.png", i)), c)
	}

	notifier := &recordingNotifier{err: errors.New("telegram is down")}
	svc, repo := newSurveyService(t, notifier)

	result, err := svc.Run(context.Background(), surveyJob(input, output))
	require.NoError(t, err)
	require.Equal(t, 4, result.Total)
	require.Equal(t, 1, result.DamagedCount())
	require.Equal(t, 3, result.CleanCount)
	require.Equal(t, 1, notifier.count())

	runs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	require.Equal(t, entity.RunCompleted, run.Status)
	require.NotEmpty(t, run.Job.ID)
	require.Equal(t, entity.FormatBoth, run.Job.Format)
	require.Empty(t, run.Error)
	require.Equal(t, filepath.Join(output, "reports", "north_ring.json"), run.JSONReport)
	require.Equal(t, filepath.Join(output, report.HTMLFileName), run.HTMLReport)
	require.FileExists(t, run.JSONReport)
	require.FileExists(t, run.HTMLReport)

	f, err := os.Open(run.JSONReport)
	require.NoError(t, err)
	defer f.Close()
	doc, err := report.ReadJSON(f)
	require.NoError(t, err)
	require.Equal(t, 4, doc.TotalImages)
	require.Equal(t, 1, doc.DamageTypeCounts["D40"])
}

func TestSurveyService_RunRejectsBadJobs(t *testing.T) {
	svc, repo := newSurveyService(t, nil)
	ctx := context.Background()

	_, err := svc.Run(ctx, surveyJob(filepath.Join(t.TempDir(), "missing"), t.TempDir()))
	require.Error(t, err)

	job := surveyJob(t.TempDir(), t.TempDir())
	job.Confidence = 2
	_, err = svc.Run(ctx, job)
	require.Error(t, err)

	runs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestSurveyService_WriteFailureMarksRunFailed(t *testing.T) {
	input := t.TempDir()
	writeSurveyPNG(t, filepath.Join(input, "a.png"), potholeColor)

	output := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(output, "reports"), []byte("not a dir"), 0o644))

	notifier := &recordingNotifier{}
	svc, repo := newSurveyService(t, notifier)

	result, err := svc.Run(context.Background(), surveyJob(input, output))
	require.Error(t, err)
	require.Nil(t, result)

	var writeErr *survey.WriteError
	require.ErrorAs(t, err, &writeErr)
	require.Zero(t, notifier.count())

	runs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, entity.RunFailed, runs[0].Status)
	require.NotEmpty(t, runs[0].Error)
}

func TestSurveyService_RunCancelledKeepsPartialResult(t *testing.T) {
	input := t.TempDir()
	writeSurveyPNG(t, filepath.Join(input, "a.png"), cleanColor)
	writeSurveyPNG(t, filepath.Join(input, "b.png"), slowColor)
	writeSurveyPNG(t, filepath.Join(input, "c.png"), slowColor)
	output := t.TempDir()

	notifier := &recordingNotifier{}
	svc, repo := newSurveyService(t, notifier)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	result, err := svc.Run(ctx, surveyJob(input, output))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, result)
	require.True(t, result.Cancelled)
	require.Equal(t, result.Total, result.DamagedCount()+result.CleanCount+result.FailedCount())
	require.Zero(t, notifier.count())

	runs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, entity.RunCancelled, runs[0].Status)
	require.Empty(t, runs[0].JSONReport)
	require.NoFileExists(t, filepath.Join(output, report.HTMLFileName))
}

func TestSurveyService_StartAndCancel(t *testing.T) {
	input := t.TempDir()
	writeSurveyPNG(t, filepath.Join(input, "slow.png"), slowColor)

	svc, _ := newSurveyService(t, nil)
	ctx := context.Background()

	run, err := svc.Start(ctx, surveyJob(input, t.TempDir()))
	require.NoError(t, err)
	require.Equal(t, entity.RunRunning, run.Status)

	require.NoError(t, svc.Cancel(ctx, run.Job.ID))
	require.Eventually(t, func() bool {
		got, err := svc.Get(ctx, run.Job.ID)
		return err == nil && got.Status == entity.RunCancelled
	}, 3*time.Second, 10*time.Millisecond)

	require.ErrorIs(t, svc.Cancel(ctx, run.Job.ID), port.ErrSurveyFinished)
	require.ErrorIs(t, svc.Cancel(ctx, "unknown"), port.ErrSurveyNotFound)
	require.NoError(t, svc.Shutdown(ctx))
}

func TestSurveyService_ShutdownCancelsRunning(t *testing.T) {
	input := t.TempDir()
	writeSurveyPNG(t, filepath.Join(input, "slow.png"), slowColor)

	svc, _ := newSurveyService(t, nil)
	run, err := svc.Start(context.Background(), surveyJob(input, t.TempDir()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	got, err := svc.Get(context.Background(), run.Job.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RunCancelled, got.Status)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

// cancelOnCreate отменяет запуск в момент его сохранения.
type cancelOnCreate struct {
	*storage.MemorySurveyRepository
	svc       *SurveyService
	cancelErr error
}

func (r *cancelOnCreate) Create(ctx context.Context, run *entity.SurveyRun) error {
	if err := r.MemorySurveyRepository.Create(ctx, run); err != nil {
		return err
	}
	r.cancelErr = r.svc.Cancel(ctx, run.Job.ID)
	return nil
}

func TestSurveyService_CancelRightAfterRegistration(t *testing.T) {
	input := t.TempDir()
	writeSurveyPNG(t, filepath.Join(input, "slow.png"), slowColor)

	detector := vision.NewFakeDetector()
	detector.Delays[slowColor] = 5 * time.Second
	pipeline := survey.NewPipeline(detector, vision.NewAnnotator(), survey.Options{Workers: 1}, nil)

	repo := &cancelOnCreate{MemorySurveyRepository: storage.NewMemorySurveyRepository()}
	svc := NewSurveyService(pipeline, report.NewGenerator(report.HTMLOptions{}), repo, nil, nil)
	repo.svc = svc

	ctx := context.Background()
	run, err := svc.Start(ctx, surveyJob(input, t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, repo.cancelErr)

	require.Eventually(t, func() bool {
		got, err := svc.Get(ctx, run.Job.ID)
		return err == nil && got.Status == entity.RunCancelled
	}, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, svc.Shutdown(ctx))
}

func TestSurveyService_StartRejectsRunningID(t *testing.T) {
	input := t.TempDir()
	writeSurveyPNG(t, filepath.Join(input, "slow.png"), slowColor)

	svc, _ := newSurveyService(t, nil)
	ctx := context.Background()

	job := surveyJob(input, t.TempDir())
	job.ID = "fixed"
	_, err := svc.Start(ctx, job)
	require.NoError(t, err)

	_, err = svc.Start(ctx, job)
	require.Error(t, err)

	require.NoError(t, svc.Cancel(ctx, "fixed"))
	require.NoError(t, svc.Shutdown(ctx))
}
