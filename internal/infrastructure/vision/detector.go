//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"road-survey/internal/domain/entity"
)

// GoCVDetector запускает ONNX-модель YOLO через OpenCV DNN.
type GoCVDetector struct {
	InputSize    int
	NMSThreshold float32

	mu  sync.Mutex
	net gocv.Net
}

// NewGoCVDetector загружает модель из файла ONNX.
func NewGoCVDetector(modelPath string) (*GoCVDetector, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", modelPath)
	}
	return &GoCVDetector{
		InputSize:    640,
		NMSThreshold: 0.45,
		net:          net,
	}, nil
}

// Detect прогоняет снимок через сеть и возвращает детекции после NMS.
func (d *GoCVDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	size := image.Pt(d.InputSize, d.InputSize)
	blob := gocv.BlobFromImage(mat, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	// Сеть OpenCV не потокобезопасна.
	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	return d.parseOutput(out, mat.Cols(), mat.Rows(), float32(threshold))
}

// parseOutput разбирает выход YOLOv8 формы [1, 4+классы, якоря].
func (d *GoCVDetector) parseOutput(out gocv.Mat, width, height int, threshold float32) ([]entity.RawDetection, error) {
	dims := out.Size()
	if len(dims) != 3 || dims[1] < 5 {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}
	rows, anchors := dims[1], dims[2]
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	scaleX := float32(width) / float32(d.InputSize)
	scaleY := float32(height) / float32(d.InputSize)

	var (
		boxes   []image.Rectangle
		scores  []float32
		classes []int
	)
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 4; c < rows; c++ {
			if s := data[c*anchors+i]; s > bestScore {
				best, bestScore = c-4, s
			}
		}
		if best < 0 || bestScore < threshold {
			continue
		}
		cx, cy := data[i], data[anchors+i]
		w, h := data[2*anchors+i], data[3*anchors+i]
		boxes = append(boxes, image.Rect(
			int((cx-w/2)*scaleX), int((cy-h/2)*scaleY),
			int((cx+w/2)*scaleX), int((cy+h/2)*scaleY),
		))
		scores = append(scores, bestScore)
		classes = append(classes, best)
	}
	if len(boxes) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, threshold, d.NMSThreshold)
	detections := make([]entity.RawDetection, 0, len(keep))
	for _, idx := range keep {
		r := boxes[idx]
		detections = append(detections, entity.RawDetection{
			Label:      LabelForIndex(classes[idx]),
			Confidence: float64(scores[idx]),
			Box: entity.BoundingBox{
				X1: float64(r.Min.X), Y1: float64(r.Min.Y),
				X2: float64(r.Max.X), Y2: float64(r.Max.Y),
			},
		})
	}
	return detections, nil
}

// Close освобождает сеть.
func (d *GoCVDetector) Close() error {
	return d.net.Close()
}
