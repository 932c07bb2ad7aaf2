package port

import (
	"context"
	"image"

	"road-survey/internal/domain/entity"
)

// DamageDetector внешняя модель детекции повреждений
type DamageDetector interface {
	// Detect возвращает сырые детекции модели для декодированного изображения
	Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.RawDetection, error)
}

// DamageHighlighter рисует рамки детекций поверх снимка
type DamageHighlighter interface {
	// Highlight возвращает новое изображение с подсветкой повреждений
	Highlight(img image.Image, detections []entity.DetectionRecord) (image.Image, error)
}
