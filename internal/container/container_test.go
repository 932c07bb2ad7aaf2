package container

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"road-survey/config"
	"road-survey/internal/domain/entity"
	"road-survey/internal/infrastructure/vision"
)

func TestNewDetector(t *testing.T) {
	detector, closeFn, err := NewDetector(config.ModelConfig{Backend: config.BackendDemo})
	require.NoError(t, err)
	require.IsType(t, &vision.DemoDetector{}, detector)
	require.NoError(t, closeFn())

	_, _, err = NewDetector(config.ModelConfig{Backend: "tensorflow"})
	require.Error(t, err)
}

func TestContainerInspect(t *testing.T) {
	marker := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	detector := vision.NewFakeDetector()
	detector.Responses[marker] = []entity.RawDetection{
		{Label: "D10", Confidence: 0.7, Box: entity.BoundingBox{X1: 0, Y1: 10, X2: 60, Y2: 20}},
	}

	c := New(Deps{Detector: detector})
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, marker)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := c.InspectionService.CheckPhoto(context.Background(), 1, 1, buf.Bytes())
	require.NoError(t, err)
	require.True(t, out.Damaged())
	require.Equal(t, entity.ClassTransverseCrack, out.Detections[0].Class)
	require.Contains(t, out.Description, "Transverse Crack")
	require.NotEmpty(t, out.Highlighted)

	user, err := c.UserService.Get(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, user.Checked)
	require.Equal(t, 1, user.Damaged)
	require.Equal(t, entity.StateMainMenu, user.State)
}
