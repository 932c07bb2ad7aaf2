package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"

	"road-survey/internal/domain/entity"
)

//go:embed templates/report.html.tmpl
var templatesFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"percent":  func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
			"money":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
			"deref":    func(v *float64) float64 { return *v },
			"imageSrc": imageSrc,
		}).
		ParseFS(templatesFS, "templates/report.html.tmpl"),
)

// Marker метка повреждения на карте
type Marker struct {
	Path      string  `json:"path"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Summary   string  `json:"summary"`
}

type htmlView struct {
	Doc      *Document
	Center   Coordinates
	ExtentKm float64
	Markers  []Marker
}

// HTMLOptions настройки HTML-отчёта
type HTMLOptions struct {
	DefaultCenter Coordinates
}

// WriteHTML рендерит автономный HTML-отчёт: карту, галерею и статистику.
// Снимки без координат попадают в галерею, но не на карту.
func WriteHTML(w io.Writer, doc *Document, opts HTMLOptions) error {
	if opts.DefaultCenter == (Coordinates{}) {
		opts.DefaultCenter = DefaultCenter
	}
	center := MapCenter(doc.DamagedImages, opts.DefaultCenter)

	view := htmlView{
		Doc:      doc,
		Center:   center,
		ExtentKm: ExtentKm(center, doc.DamagedImages),
		Markers: lo.Map(doc.LocatedImages(), func(img DamagedImage, _ int) Marker {
			return Marker{
				Path:      img.Path,
				Latitude:  *img.Latitude,
				Longitude: *img.Longitude,
				Summary:   detectionSummary(img),
			}
		}),
	}
	if view.Markers == nil {
		view.Markers = []Marker{}
	}

	if err := reportTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func imageSrc(img DamagedImage) string {
	for _, p := range []string{img.DetectedPath, img.DamagedPath, img.ThumbnailPath} {
		if p != "" {
			return p
		}
	}
	return ""
}

func detectionSummary(img DamagedImage) string {
	counts := lo.CountValuesBy(img.Detections, func(d entity.DetectionRecord) string { return d.Class.Name() })
	keys := lo.Keys(counts)
	slices.Sort(keys)
	parts := lo.Map(keys, func(k string, _ int) string { return fmt.Sprintf("%s x%d", k, counts[k]) })
	return strings.Join(parts, ", ")
}
