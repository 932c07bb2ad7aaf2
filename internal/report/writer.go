package report

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"road-survey/internal/domain/entity"
	"road-survey/internal/survey"
)

// HTMLFileName имя HTML-отчёта в корне выходной папки.
const HTMLFileName = "damage_report.html"

// Paths пути к сформированным отчётам; пустая строка означает, что отчёт не запрошен.
type Paths struct {
	JSON string
	HTML string
}

// Generator формирует отчёты по результату обследования.
type Generator struct {
	opts HTMLOptions
	now  func() time.Time
}

// NewGenerator создаёт генератор отчётов.
func NewGenerator(opts HTMLOptions) *Generator {
	return &Generator{opts: opts, now: time.Now}
}

// Generate пишет отчёты выбранного формата в outputDir.
// Ошибки файловой системы возвращаются как *survey.WriteError.
func (g *Generator) Generate(outputDir string, result *entity.SurveyResult, format entity.OutputFormat) (Paths, error) {
	var paths Paths
	doc := FromResult(result, g.now())

	if format.WantsJSON() {
		dir := filepath.Join(outputDir, survey.DirReports)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, &survey.WriteError{Path: dir, Op: "mkdir", Err: err}
		}
		name := survey.SanitizeName(result.SurveyName, "survey") + ".json"
		paths.JSON = filepath.Join(dir, name)
		if err := writeFile(paths.JSON, doc.WriteJSON); err != nil {
			return paths, err
		}
	}

	if format.WantsHTML() {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return paths, &survey.WriteError{Path: outputDir, Op: "mkdir", Err: err}
		}
		paths.HTML = filepath.Join(outputDir, HTMLFileName)
		err := writeFile(paths.HTML, func(w io.Writer) error {
			return WriteHTML(w, doc, g.opts)
		})
		if err != nil {
			return paths, err
		}
	}

	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &survey.WriteError{Path: path, Op: "create", Err: err}
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			err = multierr.Append(err, &survey.WriteError{Path: path, Op: "close", Err: cErr})
		}
	}()
	if err := write(f); err != nil {
		return &survey.WriteError{Path: path, Op: "write", Err: err}
	}
	return nil
}
