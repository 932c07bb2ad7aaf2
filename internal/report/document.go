package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/samber/lo"

	"road-survey/internal/domain/entity"
)

// Document JSON-отчёт обследования. Набор полей стабилен: потребители API
// и вебхуков полагаются на него, поля можно только добавлять.
type Document struct {
	SurveyName          string         `json:"survey_name"`
	GeneratedAt         time.Time      `json:"generated_at"`
	ConfidenceThreshold float64        `json:"confidence_threshold"`
	TotalImages         int            `json:"total_images"`
	DamagedCount        int            `json:"damaged_count"`
	CleanCount          int            `json:"clean_count"`
	FailedCount         int            `json:"failed_count"`
	DamageRate          float64        `json:"damage_rate"`
	DamageTypeCounts    map[string]int `json:"damage_type_counts"`
	TotalDetections     int            `json:"total_detections"`
	AverageConfidence   float64        `json:"average_confidence"`
	Condition           string         `json:"condition"`
	DamagedImages       []DamagedImage `json:"damaged_images"`
	FailedImages        []FailedImage  `json:"failed_images"`

	// Оценка ремонта
	TotalDamagedArea float64                 `json:"total_damaged_area_sqm"`
	TotalRepairCost  float64                 `json:"total_repair_cost"`
	ProjectDays      int                     `json:"estimated_project_days"`
	Budget           entity.BudgetBreakdown  `json:"budget_breakdown"`
	Recommendations  []entity.Recommendation `json:"recommendations"`
}

// DamagedImage повреждённый снимок. Координаты null, если неизвестны.
type DamagedImage struct {
	Path          string                   `json:"path"`
	Latitude      *float64                 `json:"latitude"`
	Longitude     *float64                 `json:"longitude"`
	Detections    []entity.DetectionRecord `json:"detections"`
	DamagedPath   string                   `json:"damaged_path,omitempty"`
	DetectedPath  string                   `json:"detected_path,omitempty"`
	ThumbnailPath string                   `json:"thumbnail_path,omitempty"`
}

// FailedImage снимок, который не удалось обработать.
type FailedImage struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Located сообщает, известны ли координаты снимка.
func (d DamagedImage) Located() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// FromResult строит документ по финальному результату.
func FromResult(result *entity.SurveyResult, generatedAt time.Time) *Document {
	counts := make(map[string]int, len(entity.DamageClasses()))
	for _, class := range entity.DamageClasses() {
		counts[string(class)] = result.ClassCounts[class]
	}

	damaged := lo.Map(result.Damaged, func(rec entity.ImageRecord, _ int) DamagedImage {
		img := DamagedImage{
			Path:          rec.RelPath,
			Detections:    append([]entity.DetectionRecord{}, rec.Detections...),
			DamagedPath:   rec.DamagedPath,
			DetectedPath:  rec.DetectedPath,
			ThumbnailPath: rec.ThumbnailPath,
		}
		if rec.Location != nil {
			lat, lon := rec.Location.Latitude, rec.Location.Longitude
			img.Latitude, img.Longitude = &lat, &lon
		}
		return img
	})

	detections := result.Detections()
	budget := entity.Budget(detections)
	area := lo.SumBy(detections, func(d entity.DetectionRecord) float64 { return d.AreaSquareMeters() })

	failed := lo.Map(result.Failed, func(rec entity.ImageRecord, _ int) FailedImage {
		return FailedImage{Path: rec.RelPath, Error: rec.Err}
	})

	return &Document{
		SurveyName:          result.SurveyName,
		GeneratedAt:         generatedAt.UTC(),
		ConfidenceThreshold: result.Threshold,
		TotalImages:         result.Total,
		DamagedCount:        result.DamagedCount(),
		CleanCount:          result.CleanCount,
		FailedCount:         result.FailedCount(),
		DamageRate:          result.DamageRate(),
		DamageTypeCounts:    counts,
		TotalDetections:     result.TotalDetections(),
		AverageConfidence:   result.AverageConfidence(),
		Condition:           string(result.Condition()),
		DamagedImages:       damaged,
		FailedImages:        failed,
		TotalDamagedArea:    math.Round(area*100) / 100,
		TotalRepairCost:     budget.Total,
		ProjectDays:         entity.ProjectDays(detections),
		Budget:              budget,
		Recommendations:     entity.Recommend(detections),
	}
}

// LocatedImages повреждённые снимки с координатами, в порядке перечисления.
func (d *Document) LocatedImages() []DamagedImage {
	return lo.Filter(d.DamagedImages, func(img DamagedImage, _ int) bool {
		return img.Located()
	})
}

// ClassRows счётчики классов в каноническом порядке.
func (d *Document) ClassRows() []ClassRow {
	return lo.Map(entity.DamageClasses(), func(class entity.DamageClass, _ int) ClassRow {
		return ClassRow{Code: string(class), Name: class.Name(), Count: d.DamageTypeCounts[string(class)]}
	})
}

// ClassRow строка таблицы классов повреждений.
type ClassRow struct {
	Code  string
	Name  string
	Count int
}

// WriteJSON сериализует документ с отступами.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// ReadJSON разбирает ранее сохранённый отчёт.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if doc.DamagedImages == nil {
		doc.DamagedImages = []DamagedImage{}
	}
	if doc.Recommendations == nil {
		doc.Recommendations = []entity.Recommendation{}
	}
	if doc.FailedImages == nil {
		doc.FailedImages = []FailedImage{}
	}
	return &doc, nil
}
