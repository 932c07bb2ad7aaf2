package survey

import (
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/multierr"

	"road-survey/internal/domain/entity"
	"road-survey/internal/domain/port"
)

// Каталоги внутри корня выходных данных.
const (
	DirDamaged    = "damaged_images"
	DirDetected   = "detected_images"
	DirClean      = "clean_images"
	DirThumbnails = "thumbnails"
	DirReports    = "reports"
)

// DefaultThumbnailSize сторона миниатюры в пикселях.
const DefaultThumbnailSize = 150

// OrganizerOptions настройки раскладки артефактов
type OrganizerOptions struct {
	Root          string
	IncludeClean  bool
	Thumbnails    bool
	ThumbnailSize int
}

// Organizer раскладывает снимки по выходным каталогам.
type Organizer struct {
	opts        OrganizerOptions
	highlighter port.DamageHighlighter

	mu    sync.Mutex
	taken map[string]bool // имена без учёта регистра
}

// NewOrganizer создаёт раскладчик артефактов.
func NewOrganizer(opts OrganizerOptions, highlighter port.DamageHighlighter) *Organizer {
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = DefaultThumbnailSize
	}
	return &Organizer{opts: opts, highlighter: highlighter, taken: make(map[string]bool)}
}

// Prepare создаёт каталоги разделов; повторный вызов не ошибка.
func (o *Organizer) Prepare() error {
	dirs := []string{DirDamaged, DirDetected, DirReports}
	if o.opts.IncludeClean {
		dirs = append(dirs, DirClean)
	}
	if o.opts.Thumbnails {
		dirs = append(dirs, DirThumbnails)
	}
	for _, dir := range dirs {
		full := filepath.Join(o.opts.Root, dir)
		if err := os.MkdirAll(full, 0o755); err != nil {
			return &WriteError{Path: full, Op: "mkdir", Err: err}
		}
	}
	return nil
}

// Claim закрепляет за снимком уникальное имя артефактов.
// Если имя уже занято другим снимком, к нему добавляется номер снимка.
// Конвейер вызывает Claim в порядке перечисления, поэтому имена воспроизводимы.
func (o *Organizer) Claim(rec *entity.ImageRecord) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if rec.Artifact != "" {
		return rec.Artifact
	}
	base := ArtifactBase(rec.RelPath)
	name := base
	for n := 0; o.taken[strings.ToLower(name)]; n++ {
		if n == 0 {
			name = fmt.Sprintf("%s_%d", base, rec.Index)
		} else {
			name = fmt.Sprintf("%s_%d_%d", base, rec.Index, n)
		}
	}
	o.taken[strings.ToLower(name)] = true
	rec.Artifact = name
	return name
}

// Place копирует снимок в свой раздел и записывает производные артефакты.
// Пути артефактов сохраняются в записи относительно корня.
func (o *Organizer) Place(rec *entity.ImageRecord, img image.Image) error {
	base := o.Claim(rec)

	switch {
	case rec.Damaged():
		rec.DamagedPath = path.Join(DirDamaged, base+strings.ToLower(filepath.Ext(rec.Path)))
		if err := o.copyFile(rec.Path, rec.DamagedPath); err != nil {
			return err
		}

		rec.DetectedPath = path.Join(DirDetected, "detected_"+base+".jpg")
		if err := o.writeDetected(rec, img); err != nil {
			return err
		}

		if o.opts.Thumbnails {
			rec.ThumbnailPath = path.Join(DirThumbnails, "thumb_"+base+".jpg")
			thumb := imaging.Fit(img, o.opts.ThumbnailSize, o.opts.ThumbnailSize, imaging.Lanczos)
			if err := o.saveJPEG(thumb, rec.ThumbnailPath, 85); err != nil {
				return err
			}
		}

	case rec.Status == entity.StatusProcessed && o.opts.IncludeClean:
		rec.CleanPath = path.Join(DirClean, base+strings.ToLower(filepath.Ext(rec.Path)))
		if err := o.copyFile(rec.Path, rec.CleanPath); err != nil {
			return err
		}
	}
	return nil
}

func (o *Organizer) writeDetected(rec *entity.ImageRecord, img image.Image) error {
	annotated := img
	if o.highlighter != nil {
		highlighted, err := o.highlighter.Highlight(img, rec.Detections)
		if err != nil {
			return &WriteError{Path: o.abs(rec.DetectedPath), Op: "annotate", Err: err}
		}
		annotated = highlighted
	}
	return o.saveJPEG(annotated, rec.DetectedPath, 90)
}

func (o *Organizer) saveJPEG(img image.Image, rel string, quality int) error {
	full := o.abs(rel)
	if err := imaging.Save(img, full, imaging.JPEGQuality(quality)); err != nil {
		return &WriteError{Path: full, Op: "save", Err: err}
	}
	return nil
}

func (o *Organizer) copyFile(src, rel string) (err error) {
	dst := o.abs(rel)

	in, err := os.Open(src)
	if err != nil {
		return &WriteError{Path: src, Op: "open", Err: err}
	}
	defer func() { err = multierr.Append(err, in.Close()) }()

	out, err := os.Create(dst)
	if err != nil {
		return &WriteError{Path: dst, Op: "create", Err: err}
	}
	if _, cErr := io.Copy(out, in); cErr != nil {
		return &WriteError{Path: dst, Op: "copy", Err: multierr.Append(cErr, out.Close())}
	}
	if cErr := out.Close(); cErr != nil {
		return &WriteError{Path: dst, Op: "close", Err: cErr}
	}
	return nil
}

func (o *Organizer) abs(rel string) string {
	return filepath.Join(o.opts.Root, filepath.FromSlash(rel))
}

// ArtifactBase строит имя артефакта из относительного пути без расширения.
// Вложенные каталоги сворачиваются через "_". Разные пути могут дать одно имя,
// уникальность обеспечивает Organizer.Claim.
func ArtifactBase(rel string) string {
	rel = filepath.ToSlash(rel)
	return SanitizeName(strings.TrimSuffix(rel, path.Ext(rel)), "image")
}

// SanitizeName оставляет в имени только безопасные для файловой системы символы.
func SanitizeName(name, fallback string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.' || r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if strings.Trim(safe, "._") == "" {
		return fallback
	}
	return safe
}
