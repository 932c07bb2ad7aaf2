package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type surveyReportController struct{ svc SurveyService }

func NewSurveyReportController(svc SurveyService) *surveyReportController {
	return &surveyReportController{svc}
}

func (h *surveyReportController) Handle(c *gin.Context) {
	run, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	if run.HTMLReport == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not available", "status": run.Status})
		return
	}
	c.File(filepath.Clean(run.HTMLReport))
}
