package survey

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"road-survey/internal/domain/entity"
)

// Aggregator накапливает итоги обследования.
// Все обновления идут под мьютексом; порядок поступления на итог не влияет.
type Aggregator struct {
	mu          sync.Mutex
	name        string
	threshold   float64
	enumerated  int
	total       int
	clean       int
	damaged     []entity.ImageRecord
	failed      []entity.ImageRecord
	classCounts map[entity.DamageClass]int
}

// NewAggregator создаёт пустой аккумулятор для запуска.
func NewAggregator(job entity.SurveyJob) *Aggregator {
	return &Aggregator{
		name:        job.DisplayName(),
		threshold:   job.Confidence,
		classCounts: make(map[entity.DamageClass]int),
	}
}

// Enumerated учитывает снимок, отправленный в обработку.
func (a *Aggregator) Enumerated() {
	a.mu.Lock()
	a.enumerated++
	a.mu.Unlock()
}

// Add учитывает обработанный снимок ровно в одной из групп: damaged, clean или failed.
func (a *Aggregator) Add(rec entity.ImageRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch rec.Status {
	case entity.StatusFailed:
		a.failed = append(a.failed, rec)
	case entity.StatusProcessed:
		if !rec.Damaged() {
			a.clean++
			break
		}
		a.damaged = append(a.damaged, rec)
		for _, d := range rec.Detections {
			a.classCounts[d.Class]++
		}
	default:
		return fmt.Errorf("image %s is still %s", rec.Path, rec.Status)
	}
	a.total++
	return nil
}

// Snapshot возвращает согласованную копию текущих итогов.
// Списки снимков упорядочены по порядку перечисления.
func (a *Aggregator) Snapshot() *entity.SurveyResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := &entity.SurveyResult{
		SurveyName:  a.name,
		Threshold:   a.threshold,
		Enumerated:  a.enumerated,
		Total:       a.total,
		CleanCount:  a.clean,
		Damaged:     append([]entity.ImageRecord(nil), a.damaged...),
		Failed:      append([]entity.ImageRecord(nil), a.failed...),
		ClassCounts: make(map[entity.DamageClass]int, len(a.classCounts)),
	}
	for class, n := range a.classCounts {
		result.ClassCounts[class] = n
	}
	sortByIndex(result.Damaged)
	sortByIndex(result.Failed)
	return result
}

// Finalize фиксирует итог; cancelled помечает частичный результат.
func (a *Aggregator) Finalize(cancelled bool) *entity.SurveyResult {
	result := a.Snapshot()
	result.Cancelled = cancelled
	result.FinishedAt = time.Now().UTC()
	return result
}

func sortByIndex(records []entity.ImageRecord) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Index < records[j].Index })
}
