package survey

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"road-survey/internal/domain/entity"
)

// SupportedExtensions расширения снимков, которые принимает обследование.
var SupportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImageFile проверяет расширение без учёта регистра.
func IsImageFile(name string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// CheckImageFile возвращает UnsupportedFormatError для неподдерживаемых файлов.
func CheckImageFile(name string) error {
	if !IsImageFile(name) {
		return &UnsupportedFormatError{Path: name}
	}
	return nil
}

// Enumerator обходит входную папку рекурсивно.
type Enumerator struct {
	root string
}

// NewEnumerator проверяет, что папка существует и читается.
func NewEnumerator(root string) (*Enumerator, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &NotFoundError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Path: root, Err: errors.New("not a directory")}
	}
	f, err := os.Open(root)
	if err != nil {
		return nil, &NotFoundError{Path: root, Err: err}
	}
	_ = f.Close()

	return &Enumerator{root: root}, nil
}

// Root входная папка.
func (e *Enumerator) Root() string { return e.root }

// Images лениво перечисляет снимки обходом в глубину: внутри каталога имена
// отсортированы побайтно, подкаталог обходится целиком на месте своего имени.
// Каждый вызов заново читает папку, поэтому последовательность перезапускаема.
func (e *Enumerator) Images() iter.Seq2[entity.ImageRecord, error] {
	return func(yield func(entity.ImageRecord, error) bool) {
		index := 0
		err := e.walk(e.root, func(path, rel string) bool {
			rec := entity.NewImageRecord(index, path, rel)
			rec.Location = ExtractLocation(filepath.Base(path))
			index++
			return yield(rec, nil)
		})
		if err != nil {
			yield(entity.ImageRecord{}, err)
		}
	}
}

// Collect возвращает все снимки списком.
func (e *Enumerator) Collect() ([]entity.ImageRecord, error) {
	var out []entity.ImageRecord
	for rec, err := range e.Images() {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// walk обходит каталог в глубину, сортируя записи каждого каталога по имени.
// Возвращает nil, если потребитель остановил обход.
func (e *Enumerator) walk(dir string, visit func(path, rel string) bool) error {
	stopped := false
	var walkDir func(string) error
	walkDir = func(current string) error {
		entries, err := os.ReadDir(current)
		if err != nil {
			return fmt.Errorf("read dir %s: %w", current, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			if stopped {
				return nil
			}
			full := filepath.Join(current, entry.Name())
			if entry.IsDir() {
				if err := walkDir(full); err != nil {
					return err
				}
				continue
			}
			if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
				continue
			}
			if CheckImageFile(entry.Name()) != nil {
				continue
			}
			rel, err := filepath.Rel(e.root, full)
			if err != nil {
				rel = entry.Name()
			}
			if !visit(full, filepath.ToSlash(rel)) {
				stopped = true
				return nil
			}
		}
		return nil
	}
	return walkDir(dir)
}
