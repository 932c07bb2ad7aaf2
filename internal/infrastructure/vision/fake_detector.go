package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"road-survey/internal/domain/entity"
)

// ErrFakeInference ошибка, которую FakeDetector возвращает для помеченных снимков.
var ErrFakeInference = errors.New("fake inference failure")

// FakeDetector детектор для тестов: ответ выбирается по цвету левого верхнего пикселя.
type FakeDetector struct {
	Responses map[color.RGBA][]entity.RawDetection
	Failures  map[color.RGBA]bool
	Delays    map[color.RGBA]time.Duration

	calls atomic.Int64
}

// NewFakeDetector создаёт пустой сценарий: все снимки чистые.
func NewFakeDetector() *FakeDetector {
	return &FakeDetector{
		Responses: make(map[color.RGBA][]entity.RawDetection),
		Failures:  make(map[color.RGBA]bool),
		Delays:    make(map[color.RGBA]time.Duration),
	}
}

// Calls число вызовов Detect.
func (f *FakeDetector) Calls() int64 { return f.calls.Load() }

// Detect возвращает заранее заданный ответ.
func (f *FakeDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.RawDetection, error) {
	f.calls.Add(1)

	b := img.Bounds()
	key := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.RGBA)

	if delay := f.Delays[key]; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Failures[key] {
		return nil, ErrFakeInference
	}
	return append([]entity.RawDetection(nil), f.Responses[key]...), nil
}
