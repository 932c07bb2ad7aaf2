package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
)

// TextDescriber собирает текстовую сводку по детекциям без внешних сервисов.
type TextDescriber struct{}

func NewTextDescriber() *TextDescriber {
	return &TextDescriber{}
}

// Describe возвращает сводку: число повреждений по классам и наивысшую серьёзность.
func (d *TextDescriber) Describe(ctx context.Context, detections []entity.DetectionRecord) (string, error) {
	if len(detections) == 0 {
		return "✅ Повреждения не обнаружены.", nil
	}

	byClass := lo.GroupBy(detections, func(r entity.DetectionRecord) entity.DamageClass { return r.Class })

	var b strings.Builder
	fmt.Fprintf(&b, "🚧 Найдено повреждений: %d\n", len(detections))
	for _, class := range entity.DamageClasses() {
		records, ok := byClass[class]
		if !ok {
			continue
		}
		best := lo.MaxBy(records, func(a, b entity.DetectionRecord) bool { return a.Confidence > b.Confidence })
		fmt.Fprintf(&b, "• %s (%s): %d, уверенность до %.0f%%\n", class.Name(), class, len(records), best.Confidence*100)
	}

	worst := lo.MaxBy(detections, func(a, b entity.DetectionRecord) bool {
		return a.Severity.Priority() < b.Severity.Priority()
	})
	fmt.Fprintf(&b, "⚠️ Наибольшая серьёзность: %s\n", worst.Severity)
	fmt.Fprintf(&b, "🛣 Состояние покрытия: %s", entity.AssessCondition(detections))

	return b.String(), nil
}

var _ port.DamageDescriber = (*TextDescriber)(nil)
