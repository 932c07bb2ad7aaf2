package survey

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
)

// DefaultImageTimeout ограничение на детекцию одного снимка.
const DefaultImageTimeout = 30 * time.Second

// Adapter вызывает внешнюю модель и нормализует её ответ.
type Adapter struct {
	detector port.DamageDetector
	timeout  time.Duration
	logger   *zap.SugaredLogger
}

// NewAdapter создаёт адаптер; timeout <= 0 заменяется значением по умолчанию.
func NewAdapter(detector port.DamageDetector, timeout time.Duration, logger *zap.SugaredLogger) *Adapter {
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Adapter{detector: detector, timeout: timeout, logger: logger}
}

// Decode читает снимок с диска с учётом EXIF-ориентации.
func (a *Adapter) Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// DecodeBytes декодирует снимок из памяти (загрузка через бота).
func (a *Adapter) DecodeBytes(name string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Path: name, Err: fmt.Errorf("empty image")}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	return img, nil
}

// Detect запускает модель с ограничением по времени и оставляет детекции не ниже порога.
// Если модель не уложилась в таймаут, её горутина бросается, а снимок считается ошибочным.
func (a *Adapter) Detect(ctx context.Context, path string, img image.Image, threshold float64) ([]entity.DetectionRecord, error) {
	if a.detector == nil {
		return nil, &InferenceError{Path: path, Err: fmt.Errorf("detector is not configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type outcome struct {
		raw []entity.RawDetection
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		raw, err := a.detector.Detect(ctx, img, threshold)
		done <- outcome{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &InferenceError{Path: path, Err: ctx.Err()}
	case out := <-done:
		if out.err != nil {
			return nil, &InferenceError{Path: path, Err: out.err}
		}
		return a.normalize(path, out.raw, threshold), nil
	}
}

func (a *Adapter) normalize(path string, raw []entity.RawDetection, threshold float64) []entity.DetectionRecord {
	records := Normalize(raw, threshold)
	if dropped := len(raw) - len(records); dropped > 0 {
		a.logger.Debugw("detections discarded", "path", path, "dropped", dropped, "kept", len(records))
	}
	return records
}

// Normalize переводит сырые детекции в DetectionRecord.
// Отбрасываются детекции ниже порога, с неизвестным классом и с уверенностью вне [0, 1].
func Normalize(raw []entity.RawDetection, threshold float64) []entity.DetectionRecord {
	records := make([]entity.DetectionRecord, 0, len(raw))
	for _, r := range raw {
		if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
			continue
		}
		if r.Confidence < threshold {
			continue
		}
		class, err := entity.ParseDamageClass(r.Label)
		if err != nil {
			continue
		}
		rec := entity.DetectionRecord{
			Class:      class,
			Confidence: r.Confidence,
			Box:        r.Box,
		}
		rec.Severity = entity.AssessSeverity(rec)
		rec.RepairCost = entity.EstimateRepairCost(rec)
		records = append(records, rec)
	}
	return records
}
