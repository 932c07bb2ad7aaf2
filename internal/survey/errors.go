package survey

import "fmt"

// NotFoundError входная папка не существует или недоступна.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input folder %s not found: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// UnsupportedFormatError файл не является поддерживаемым изображением.
// Перечислитель такие файлы молча пропускает.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported image format: %s", e.Path)
}

// DecodeError снимок не удалось прочитать или декодировать.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InferenceError модель не вернула результат (ошибка или таймаут).
type InferenceError struct {
	Path string
	Err  error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Path, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// WriteError ошибка записи артефакта или отчёта; фатальна для запуска.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
