package entity

// BoundingBox рамка детекции в пиксельных координатах изображения
type BoundingBox struct {
	X1 float64 `json:"x1"` // левый край
	Y1 float64 `json:"y1"` // верхний край
	X2 float64 `json:"x2"` // правый край
	Y2 float64 `json:"y2"` // нижний край
}

// Width возвращает ширину рамки в пикселях
func (b BoundingBox) Width() float64 {
	if b.X2 < b.X1 {
		return b.X1 - b.X2
	}
	return b.X2 - b.X1
}

// Height возвращает высоту рамки в пикселях
func (b BoundingBox) Height() float64 {
	if b.Y2 < b.Y1 {
		return b.Y1 - b.Y2
	}
	return b.Y2 - b.Y1
}

// Area возвращает площадь рамки в пикселях
func (b BoundingBox) Area() float64 {
	return b.Width() * b.Height()
}

// Center возвращает координаты центра рамки
func (b BoundingBox) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// RawDetection необработанный ответ модели.
type RawDetection struct {
	Label      string
	Confidence float64
	Box        BoundingBox
}

// DetectionRecord нормализованная детекция, прошедшая порог уверенности.
type DetectionRecord struct {
	Class      DamageClass `json:"class"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"bbox"`
	Severity   Severity    `json:"severity,omitempty"`
	RepairCost float64     `json:"repair_cost"`
}
