package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"road-survey/internal/survey"
)

// artifactDirs разделы выходной папки, которые отдаются рядом с HTML-отчётом.
var artifactDirs = []string{survey.DirDamaged, survey.DirDetected, survey.DirClean, survey.DirThumbnails}

type surveyArtifactController struct {
	svc SurveyService
	dir string
}

func NewSurveyArtifactController(svc SurveyService, dir string) *surveyArtifactController {
	return &surveyArtifactController{svc: svc, dir: dir}
}

// Handle отдаёт файл из раздела выходной папки запуска.
// Ссылки в damage_report.html относительные, поэтому разделы смонтированы рядом с /report.
func (h *surveyArtifactController) Handle(c *gin.Context) {
	run, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}

	name := c.Param("file")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	full := filepath.Join(run.Job.OutputDir, h.dir, name)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.File(full)
}
