package port

import (
	"context"

	"road-survey/internal/domain/entity"
)

// DamageDescriber интерфейс описателя повреждений
type DamageDescriber interface {
	// Describe генерирует текстовое описание найденных повреждений
	Describe(ctx context.Context, detections []entity.DetectionRecord) (string, error)
}
