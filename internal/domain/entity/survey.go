package entity

import (
	"fmt"
	"strings"
	"time"
)

// OutputFormat набор отчётов, которые нужно сформировать
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatWeb  OutputFormat = "web"
	FormatBoth OutputFormat = "both"
)

// ParseOutputFormat разбирает значение флага формата.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case FormatJSON, FormatWeb, FormatBoth:
		return f, nil
	case "":
		return FormatBoth, nil
	}
	return "", fmt.Errorf("unknown output format %q (use json, web or both)", value)
}

// WantsJSON нужен ли JSON-отчёт
func (f OutputFormat) WantsJSON() bool { return f == FormatJSON || f == FormatBoth }

// WantsHTML нужен ли HTML-отчёт
func (f OutputFormat) WantsHTML() bool { return f == FormatWeb || f == FormatBoth }

// SurveyJob параметры одного пакетного запуска. После создания не меняется.
type SurveyJob struct {
	ID           string
	Name         string
	InputDir     string
	OutputDir    string
	Confidence   float64
	Format       OutputFormat
	Thumbnails   bool
	IncludeClean bool
	CreatedAt    time.Time
}

// Validate проверяет параметры запуска.
func (j SurveyJob) Validate() error {
	if j.InputDir == "" {
		return fmt.Errorf("input folder is required")
	}
	if j.OutputDir == "" {
		return fmt.Errorf("output folder is required")
	}
	if j.Confidence < 0 || j.Confidence > 1 {
		return fmt.Errorf("confidence threshold %v must be within [0, 1]", j.Confidence)
	}
	if _, err := ParseOutputFormat(string(j.Format)); err != nil {
		return err
	}
	return nil
}

// DisplayName имя обследования для отчётов.
func (j SurveyJob) DisplayName() string {
	if strings.TrimSpace(j.Name) == "" {
		return "survey"
	}
	return j.Name
}

// SurveyResult агрегат по всем снимкам обследования
type SurveyResult struct {
	SurveyName  string
	Threshold   float64
	Enumerated  int // найдено снимков-кандидатов
	Total       int // обработано (damaged + clean + failed)
	CleanCount  int
	Damaged     []ImageRecord // в порядке перечисления
	Failed      []ImageRecord // в порядке перечисления
	ClassCounts map[DamageClass]int
	Cancelled   bool
	FinishedAt  time.Time
}

// DamagedCount число снимков с повреждениями
func (r *SurveyResult) DamagedCount() int { return len(r.Damaged) }

// FailedCount число снимков, которые не удалось обработать
func (r *SurveyResult) FailedCount() int { return len(r.Failed) }

// DamageRate доля повреждённых снимков; 0 для пустого обследования.
func (r *SurveyResult) DamageRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.DamagedCount()) / float64(r.Total)
}

// Detections все детекции повреждённых снимков в порядке перечисления.
func (r *SurveyResult) Detections() []DetectionRecord {
	var out []DetectionRecord
	for _, img := range r.Damaged {
		out = append(out, img.Detections...)
	}
	return out
}

// TotalDetections общее число детекций.
func (r *SurveyResult) TotalDetections() int {
	total := 0
	for _, n := range r.ClassCounts {
		total += n
	}
	return total
}

// AverageConfidence средняя уверенность по всем детекциям.
func (r *SurveyResult) AverageConfidence() float64 {
	detections := r.Detections()
	if len(detections) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range detections {
		sum += d.Confidence
	}
	return sum / float64(len(detections))
}

// Condition общее состояние участка.
func (r *SurveyResult) Condition() Condition {
	return AssessCondition(r.Detections())
}

// Located повреждённые снимки с известными координатами.
func (r *SurveyResult) Located() []ImageRecord {
	var out []ImageRecord
	for _, img := range r.Damaged {
		if img.HasLocation() {
			out = append(out, img)
		}
	}
	return out
}

// RunStatus статус асинхронного запуска обследования
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// SurveyRun состояние запуска, отслеживаемое HTTP API
type SurveyRun struct {
	Job        SurveyJob
	Status     RunStatus
	Result     *SurveyResult
	Error      string
	JSONReport string // путь к JSON-отчёту, если сформирован
	HTMLReport string // путь к HTML-отчёту, если сформирован
	StartedAt  time.Time
	FinishedAt time.Time
}

// Finished сообщает, завершён ли запуск.
func (r *SurveyRun) Finished() bool {
	return r.Status != RunRunning
}
