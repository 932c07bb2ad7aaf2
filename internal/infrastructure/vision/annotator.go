package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"road-survey/internal/domain/entity"
)

// Annotator рисует рамки и подписи детекций цветами классов.
type Annotator struct {
	LineWidth float64
}

// NewAnnotator создаёт рисовальщик с толщиной линии по умолчанию.
func NewAnnotator() *Annotator {
	return &Annotator{LineWidth: 3}
}

// Highlight возвращает копию снимка с подсвеченными повреждениями.
func (a *Annotator) Highlight(img image.Image, detections []entity.DetectionRecord) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("empty image")
	}
	dc := gg.NewContextForImage(img)

	for _, d := range detections {
		clr := d.Class.Color()
		x, y := d.Box.X1, d.Box.Y1
		if d.Box.X2 < x {
			x = d.Box.X2
		}
		if d.Box.Y2 < y {
			y = d.Box.Y2
		}

		dc.SetColor(clr)
		dc.SetLineWidth(a.LineWidth)
		dc.DrawRectangle(x, y, d.Box.Width(), d.Box.Height())
		dc.Stroke()

		label := fmt.Sprintf("%s: %.2f", d.Class, d.Confidence)
		tw, th := dc.MeasureString(label)
		top := y - th - 6
		if top < 0 {
			top = y
		}
		dc.DrawRectangle(x, top, tw+10, th+6)
		dc.Fill()
		dc.SetColor(color.Black)
		dc.DrawString(label, x+5, top+th+2)
	}

	return dc.Image(), nil
}
