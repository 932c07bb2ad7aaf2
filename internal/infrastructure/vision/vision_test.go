package vision

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"road-survey/internal/domain/entity"
)

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func road(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), color.RGBA{R: 170, G: 170, B: 170, A: 255})
	return img
}

var dark = color.RGBA{R: 20, G: 20, B: 20, A: 255}

func TestDemoDetectorClasses(t *testing.T) {
	d := NewDemoDetector()
	ctx := context.Background()

	cases := []struct {
		name  string
		paint image.Rectangle // ячейки 10x10 px на снимке 80x80
		want  entity.DamageClass
	}{
		{name: "isolated cell", paint: image.Rect(30, 30, 40, 40), want: entity.ClassPothole},
		{name: "vertical run", paint: image.Rect(10, 0, 20, 50), want: entity.ClassLongitudinalCrack},
		{name: "horizontal run", paint: image.Rect(0, 60, 40, 70), want: entity.ClassTransverseCrack},
		{name: "cluster", paint: image.Rect(40, 40, 60, 60), want: entity.ClassAlligatorCrack},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img := road(80, 80)
			fill(img, tc.paint, dark)

			raw, err := d.Detect(ctx, img, 0.3)
			require.NoError(t, err)
			require.Len(t, raw, 1)
			require.Equal(t, string(tc.want), raw[0].Label)
			require.Greater(t, raw[0].Confidence, 0.5)
			require.LessOrEqual(t, raw[0].Confidence, 1.0)
			require.Equal(t, float64(tc.paint.Min.X), raw[0].Box.X1)
			require.Equal(t, float64(tc.paint.Max.Y), raw[0].Box.Y2)
		})
	}
}

func TestDemoDetectorCleanAndTiny(t *testing.T) {
	d := NewDemoDetector()

	raw, err := d.Detect(context.Background(), road(80, 80), 0.3)
	require.NoError(t, err)
	require.Empty(t, raw)

	raw, err = d.Detect(context.Background(), road(4, 4), 0.3)
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestDemoDetectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDemoDetector().Detect(ctx, road(80, 80), 0.3)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFakeDetector(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	f := NewFakeDetector()
	f.Responses[red] = []entity.RawDetection{{Label: "D40", Confidence: 0.9}}
	f.Failures[dark] = true
	f.Delays[dark] = time.Second

	img := road(4, 4)
	img.Set(0, 0, red)
	raw, err := f.Detect(context.Background(), img, 0.5)
	require.NoError(t, err)
	require.Len(t, raw, 1)

	raw[0].Label = "changed"
	again, err := f.Detect(context.Background(), img, 0.5)
	require.NoError(t, err)
	require.Equal(t, "D40", again[0].Label)

	darkImg := road(4, 4)
	darkImg.Set(0, 0, dark)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = f.Detect(ctx, darkImg, 0.5)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.Equal(t, int64(3), f.Calls())
}

func TestAnnotator(t *testing.T) {
	img := road(100, 60)
	detections := []entity.DetectionRecord{
		{Class: entity.ClassPothole, Confidence: 0.87, Box: entity.BoundingBox{X1: 20, Y1: 20, X2: 60, Y2: 50}},
	}

	out, err := NewAnnotator().Highlight(img, detections)
	require.NoError(t, err)
	require.Equal(t, img.Bounds().Size(), out.Bounds().Size())

	// Рамка на левой границе окрашена цветом класса, исходный снимок не изменён.
	r, g, b, _ := out.At(20, 35).RGBA()
	want := entity.ClassPothole.Color()
	require.Equal(t, uint32(want.R)*0x101, r)
	require.Equal(t, uint32(want.G)*0x101, g)
	require.Equal(t, uint32(want.B)*0x101, b)
	require.Equal(t, color.RGBA{R: 170, G: 170, B: 170, A: 255}, img.RGBAAt(20, 35))

	_, err = NewAnnotator().Highlight(nil, detections)
	require.Error(t, err)
}

func TestLabelForIndex(t *testing.T) {
	require.Equal(t, "D00_Longitudinal_Crack", LabelForIndex(0))
	require.Equal(t, "Block_Crack", LabelForIndex(5))
	require.Empty(t, LabelForIndex(6))
	require.Empty(t, LabelForIndex(-1))

	for i := range ModelLabels {
		_, err := entity.ParseDamageClass(LabelForIndex(i))
		require.NoError(t, err)
	}
}
