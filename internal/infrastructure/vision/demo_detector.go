package vision

import (
	"context"
	"image"

	"road-survey/internal/domain/entity"
)

// DemoDetector эвристический детектор без модели для демонстраций.
//
// Снимок делится на сетку, тёмные относительно среднего ячейки объединяются
// в связные области. Класс области определяется её формой (см. classifyRegion).
type DemoDetector struct {
	GridSize      int     // число ячеек по каждой стороне
	DarknessRatio float64 // ячейка тёмная, если её яркость ниже доли от средней
}

// NewDemoDetector создаёт детектор с настройками по умолчанию.
func NewDemoDetector() *DemoDetector {
	return &DemoDetector{GridSize: 8, DarknessRatio: 0.55}
}

type cell struct{ col, row int }

// Detect анализирует яркость ячеек.
func (d *DemoDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.RawDetection, error) {
	bounds := img.Bounds()
	if bounds.Dx() < d.GridSize || bounds.Dy() < d.GridSize {
		return nil, nil
	}

	luma := d.cellLuma(ctx, img)
	if luma == nil {
		return nil, ctx.Err()
	}

	mean := 0.0
	for _, row := range luma {
		for _, v := range row {
			mean += v
		}
	}
	mean /= float64(d.GridSize * d.GridSize)
	if mean == 0 {
		return nil, nil
	}

	dark := make(map[cell]float64)
	for r, row := range luma {
		for c, v := range row {
			if v < mean*d.DarknessRatio {
				dark[cell{c, r}] = 1 - v/mean
			}
		}
	}

	cellW := float64(bounds.Dx()) / float64(d.GridSize)
	cellH := float64(bounds.Dy()) / float64(d.GridSize)

	var detections []entity.RawDetection
	for _, region := range d.regions(dark) {
		minC, minR, maxC, maxR := d.GridSize, d.GridSize, -1, -1
		conf := 0.0
		for _, cl := range region {
			minC, maxC = min(minC, cl.col), max(maxC, cl.col)
			minR, maxR = min(minR, cl.row), max(maxR, cl.row)
			conf += dark[cl]
		}
		conf /= float64(len(region))

		w, h := maxC-minC+1, maxR-minR+1
		detections = append(detections, entity.RawDetection{
			Label:      string(classifyRegion(len(region), w, h)),
			Confidence: conf,
			Box: entity.BoundingBox{
				X1: float64(bounds.Min.X) + float64(minC)*cellW,
				Y1: float64(bounds.Min.Y) + float64(minR)*cellH,
				X2: float64(bounds.Min.X) + float64(maxC+1)*cellW,
				Y2: float64(bounds.Min.Y) + float64(maxR+1)*cellH,
			},
		})
	}
	return detections, nil
}

func classifyRegion(size, w, h int) entity.DamageClass {
	switch {
	case size >= 4 && w >= 2 && h >= 2:
		return entity.ClassAlligatorCrack
	case h >= 2 && w == 1:
		return entity.ClassLongitudinalCrack
	case w >= 2 && h == 1:
		return entity.ClassTransverseCrack
	default:
		return entity.ClassPothole
	}
}

// cellLuma считает среднюю яркость каждой ячейки в диапазоне [0, 1].
func (d *DemoDetector) cellLuma(ctx context.Context, img image.Image) [][]float64 {
	bounds := img.Bounds()
	sums := make([][]float64, d.GridSize)
	counts := make([][]int, d.GridSize)
	for i := range sums {
		sums[i] = make([]float64, d.GridSize)
		counts[i] = make([]int, d.GridSize)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if ctx.Err() != nil {
			return nil
		}
		row := (y - bounds.Min.Y) * d.GridSize / bounds.Dy()
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			col := (x - bounds.Min.X) * d.GridSize / bounds.Dx()
			r, g, b, _ := img.At(x, y).RGBA()
			sums[row][col] += (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
			counts[row][col]++
		}
	}

	for r := range sums {
		for c := range sums[r] {
			if counts[r][c] > 0 {
				sums[r][c] /= float64(counts[r][c])
			}
		}
	}
	return sums
}

// regions группирует тёмные ячейки в связные области в детерминированном порядке.
func (d *DemoDetector) regions(dark map[cell]float64) [][]cell {
	seen := make(map[cell]bool)
	var out [][]cell
	for r := 0; r < d.GridSize; r++ {
		for c := 0; c < d.GridSize; c++ {
			start := cell{c, r}
			if _, ok := dark[start]; !ok || seen[start] {
				continue
			}
			var region []cell
			stack := []cell{start}
			seen[start] = true
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				region = append(region, cur)
				for _, n := range []cell{{cur.col + 1, cur.row}, {cur.col - 1, cur.row}, {cur.col, cur.row + 1}, {cur.col, cur.row - 1}} {
					if _, ok := dark[n]; ok && !seen[n] {
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}
			out = append(out, region)
		}
	}
	return out
}
