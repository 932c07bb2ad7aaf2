//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"

	"road-survey/internal/domain/entity"
)

// GoCVDetector заглушка, если сборка без OpenCV.
type GoCVDetector struct {
	InputSize    int
	NMSThreshold float32
}

// NewGoCVDetector возвращает ошибку, если сборка без тега gocv.
func NewGoCVDetector(modelPath string) (*GoCVDetector, error) {
	_ = modelPath
	return nil, errors.New("gocv build tag is not enabled")
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *GoCVDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.RawDetection, error) {
	_ = ctx
	_ = img
	_ = threshold
	return nil, errors.New("gocv build tag is not enabled")
}

// Close ничего не делает.
func (d *GoCVDetector) Close() error { return nil }
