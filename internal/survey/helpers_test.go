package survey

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	colorDamaged = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	colorClean   = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	colorBroken  = color.RGBA{R: 10, G: 10, B: 200, A: 255}
	colorSlow    = color.RGBA{R: 10, G: 200, B: 10, A: 255}
)

func solidImage(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writePNG сохраняет однотонный снимок; цвет определяет ответ FakeDetector.
func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, solidImage(c, 48, 32)))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
