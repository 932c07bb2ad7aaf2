package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "road-survey/internal/application"
	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
	"road-survey/internal/infrastructure/storage"
	"road-survey/internal/infrastructure/vision"
	"road-survey/internal/report"
	"road-survey/internal/survey"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	started   []entity.SurveyJob
	startErr  error
	runs      map[string]*entity.SurveyRun
	cancelErr error
}

func (s *stubService) Start(ctx context.Context, job entity.SurveyJob) (*entity.SurveyRun, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.started = append(s.started, job)
	return &entity.SurveyRun{Job: job, Status: entity.RunRunning}, nil
}

func (s *stubService) Get(ctx context.Context, id string) (*entity.SurveyRun, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, port.ErrSurveyNotFound
	}
	return run, nil
}

func (s *stubService) List(ctx context.Context) ([]*entity.SurveyRun, error) {
	var out []*entity.SurveyRun
	for _, run := range s.runs {
		out = append(out, run)
	}
	return out, nil
}

func (s *stubService) Cancel(ctx context.Context, id string) error {
	if _, ok := s.runs[id]; !ok {
		return port.ErrSurveyNotFound
	}
	return s.cancelErr
}

var testDefaults = JobDefaults{
	OutputDir:    "/tmp/surveys",
	Confidence:   0.3,
	Format:       entity.FormatBoth,
	Thumbnails:   true,
	IncludeClean: true,
}

func do(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCreateSurvey(t *testing.T) {
	svc := &stubService{}
	engine := NewRouter(svc, testDefaults, zap.NewNop().Sugar())

	w := do(t, engine, http.MethodPost, "/v1/surveys", `{"folder":"/data/flight1","name":"flight 1","confidence":0.5,"includeClean":false}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "running", resp["status"])
	require.NotEmpty(t, resp["id"])

	require.Len(t, svc.started, 1)
	job := svc.started[0]
	require.Equal(t, "/data/flight1", job.InputDir)
	require.Equal(t, filepath.Join("/tmp/surveys", resp["id"]), job.OutputDir)
	require.Equal(t, 0.5, job.Confidence)
	require.False(t, job.IncludeClean)
	require.True(t, job.Thumbnails)
	require.Equal(t, entity.FormatBoth, job.Format)
}

func TestCreateSurveyRejectsBadInput(t *testing.T) {
	svc := &stubService{}
	engine := NewRouter(svc, testDefaults, zap.NewNop().Sugar())

	require.Equal(t, http.StatusBadRequest, do(t, engine, http.MethodPost, "/v1/surveys", `{}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, engine, http.MethodPost, "/v1/surveys", `{"folder":"x","format":"pdf"}`).Code)

	svc.startErr = &survey.NotFoundError{Path: "x", Err: os.ErrNotExist}
	w := do(t, engine, http.MethodPost, "/v1/surveys", `{"folder":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "not found")
}

func TestGetAndCancelSurvey(t *testing.T) {
	svc := &stubService{runs: map[string]*entity.SurveyRun{
		"done": {
			Job:    entity.SurveyJob{ID: "done", Name: "route"},
			Status: entity.RunCompleted,
			Result: &entity.SurveyResult{SurveyName: "route", Total: 3, CleanCount: 3},
		},
	}}
	engine := NewRouter(svc, testDefaults, zap.NewNop().Sugar())

	w := do(t, engine, http.MethodGet, "/v1/surveys/done", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Status string           `json:"status"`
		Report *report.Document `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "completed", view.Status)
	require.Equal(t, 3, view.Report.TotalImages)
	require.Equal(t, 0, view.Report.FailedCount)

	require.Equal(t, http.StatusNotFound, do(t, engine, http.MethodGet, "/v1/surveys/missing", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, engine, http.MethodGet, "/v1/surveys/done/report", "").Code)

	require.Equal(t, http.StatusAccepted, do(t, engine, http.MethodPost, "/v1/surveys/done/cancel", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, engine, http.MethodPost, "/v1/surveys/missing/cancel", "").Code)

	svc.cancelErr = port.ErrSurveyFinished
	require.Equal(t, http.StatusConflict, do(t, engine, http.MethodPost, "/v1/surveys/done/cancel", "").Code)

	svc.cancelErr = errors.New("boom")
	require.Equal(t, http.StatusInternalServerError, do(t, engine, http.MethodPost, "/v1/surveys/done/cancel", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := NewRouter(&stubService{}, testDefaults, zap.NewNop().Sugar())
	w := do(t, engine, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "road_survey_runs_total")
}

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestSurveyLifecycle(t *testing.T) {
	input := t.TempDir()
	damaged := color.RGBA{R: 200, A: 255}
	writePNG(t, filepath.Join(input, "a_lat40.7_lon-74.0.png"), damaged)
	writePNG(t, filepath.Join(input, "b.png"), color.RGBA{G: 200, A: 255})

	detector := vision.NewFakeDetector()
	detector.Responses[damaged] = []entity.RawDetection{
		{Label: "D40_Pothole", Confidence: 0.9, Box: entity.BoundingBox{X1: 2, Y1: 2, X2: 20, Y2: 20}},
	}

	pipeline := survey.NewPipeline(detector, vision.NewAnnotator(), survey.Options{Workers: 2}, nil)
	svc := app.NewSurveyService(pipeline, report.NewGenerator(report.HTMLOptions{}), storage.NewMemorySurveyRepository(), nil, nil)
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	defaults := testDefaults
	defaults.OutputDir = t.TempDir()
	engine := NewRouter(svc, defaults, zap.NewNop().Sugar())

	w := do(t, engine, http.MethodPost, "/v1/surveys", `{"folder":"`+filepath.ToSlash(input)+`","name":"lifecycle"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	require.Eventually(t, func() bool {
		run, err := svc.Get(context.Background(), created["id"])
		return err == nil && run.Finished()
	}, 5*time.Second, 10*time.Millisecond)

	w = do(t, engine, http.MethodGet, "/v1/surveys/"+created["id"], "")
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Status string           `json:"status"`
		Report *report.Document `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "completed", view.Status)
	require.Equal(t, 2, view.Report.TotalImages)
	require.Equal(t, 1, view.Report.DamagedCount)
	require.Equal(t, 1, view.Report.DamageTypeCounts["D40"])

	reportPath := "/v1/surveys/" + created["id"] + "/report"
	w = do(t, engine, http.MethodGet, reportPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Road Damage Survey: lifecycle")

	// Относительные ссылки галереи должны открываться через API.
	page, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	base, err := url.Parse(reportPath)
	require.NoError(t, err)
	images := page.Find(".gallery img")
	require.Equal(t, 1, images.Length())
	images.Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		require.True(t, ok)
		ref, err := url.Parse(src)
		require.NoError(t, err)
		resp := do(t, engine, http.MethodGet, base.ResolveReference(ref).Path, "")
		require.Equal(t, http.StatusOK, resp.Code, src)
		require.NotZero(t, resp.Body.Len())
	})

	thumb := view.Report.DamagedImages[0].ThumbnailPath
	require.NotEmpty(t, thumb)
	require.Equal(t, http.StatusOK, do(t, engine, http.MethodGet, "/v1/surveys/"+created["id"]+"/"+thumb, "").Code)
	require.Equal(t, http.StatusNotFound, do(t, engine, http.MethodGet, "/v1/surveys/"+created["id"]+"/detected_images/missing.jpg", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, engine, http.MethodGet, "/v1/surveys/"+created["id"]+"/thumbnails/.hidden", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, engine, http.MethodGet, "/v1/surveys/unknown/thumbnails/a.jpg", "").Code)

	w = do(t, engine, http.MethodGet, "/v1/surveys", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), created["id"])
}
