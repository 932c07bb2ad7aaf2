package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"road-survey/internal/domain/entity"
)

const namespace = "road_survey"

var (
	ImagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_total",
			Help:      "Total number of survey images processed, labeled by outcome (damaged, clean, failed).",
		},
		[]string{"status"},
	)

	DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Total number of damage detections above threshold, labeled by class code.",
		},
		[]string{"class"},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of survey runs, labeled by final status.",
		},
		[]string{"outcome"},
	)

	ImageSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_seconds",
			Help:      "Time spent on a single image: decode, detection and artifact writes (seconds).",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(
		ImagesTotal,
		DetectionsTotal,
		RunsTotal,
		ImageSeconds,
	)

	// Нулевые ряды, чтобы счётчики были видны до первого запуска.
	for _, status := range []string{"damaged", "clean", "failed"} {
		ImagesTotal.WithLabelValues(status)
	}
	for _, class := range entity.DamageClasses() {
		DetectionsTotal.WithLabelValues(string(class))
	}
	for _, status := range []entity.RunStatus{entity.RunCompleted, entity.RunFailed, entity.RunCancelled} {
		RunsTotal.WithLabelValues(string(status))
	}
}

// ObserveImage учитывает обработанный снимок.
func ObserveImage(rec entity.ImageRecord, elapsed time.Duration) {
	switch {
	case rec.Status == entity.StatusFailed:
		ImagesTotal.WithLabelValues("failed").Inc()
	case rec.Damaged():
		ImagesTotal.WithLabelValues("damaged").Inc()
	default:
		ImagesTotal.WithLabelValues("clean").Inc()
	}
	for _, d := range rec.Detections {
		DetectionsTotal.WithLabelValues(string(d.Class)).Inc()
	}
	ImageSeconds.Observe(elapsed.Seconds())
}

// ObserveRun учитывает завершение запуска.
func ObserveRun(status entity.RunStatus) {
	RunsTotal.WithLabelValues(string(status)).Inc()
}
