package entity

import "fmt"

// ImageStatus статус обработки снимка
type ImageStatus string

const (
	StatusPending   ImageStatus = "pending"   // ожидает обработки
	StatusProcessed ImageStatus = "processed" // детекция выполнена
	StatusFailed    ImageStatus = "failed"    // не удалось декодировать или распознать
)

// Location географические координаты снимка
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewLocation проверяет диапазоны широты и долготы.
func NewLocation(lat, lon float64) (*Location, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude %v out of range", lon)
	}
	return &Location{Latitude: lat, Longitude: lon}, nil
}

// ImageRecord один входной снимок обследования
type ImageRecord struct {
	Index      int               // порядковый номер при перечислении
	Path       string            // путь к исходному файлу
	RelPath    string            // путь относительно входной папки
	Location   *Location         // nil, если координаты неизвестны
	Status     ImageStatus       // статус обработки
	Detections []DetectionRecord // детекции выше порога
	Err        string            // причина ошибки для StatusFailed
	Width      int
	Height     int

	Artifact      string // уникальное имя артефактов в выходных каталогах
	DamagedPath   string // копия в damaged_images
	DetectedPath  string // размеченная копия в detected_images
	CleanPath     string // копия в clean_images
	ThumbnailPath string // миниатюра в thumbnails
}

// NewImageRecord создаёт запись в статусе pending.
func NewImageRecord(index int, path, relPath string) ImageRecord {
	return ImageRecord{
		Index:   index,
		Path:    path,
		RelPath: relPath,
		Status:  StatusPending,
	}
}

// Damaged сообщает, есть ли на снимке хотя бы одна детекция.
func (r ImageRecord) Damaged() bool {
	return r.Status == StatusProcessed && len(r.Detections) > 0
}

// HasLocation сообщает, известны ли координаты.
func (r ImageRecord) HasLocation() bool {
	return r.Location != nil
}

// MarkProcessed фиксирует результат детекции.
func (r *ImageRecord) MarkProcessed(detections []DetectionRecord) {
	r.Status = StatusProcessed
	r.Detections = detections
	r.Err = ""
}

// MarkFailed фиксирует ошибку обработки; детекции сбрасываются.
func (r *ImageRecord) MarkFailed(err error) {
	r.Status = StatusFailed
	r.Detections = nil
	if err != nil {
		r.Err = err.Error()
	}
}
