package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"road-survey/internal/domain/entity"
)

type listSurveysController struct{ svc SurveyService }

func NewListSurveysController(svc SurveyService) *listSurveysController {
	return &listSurveysController{svc}
}

// Handle отдаёт краткий список без отчётов.
func (h *listSurveysController) Handle(c *gin.Context) {
	runs, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := lo.Map(runs, func(run *entity.SurveyRun, _ int) surveyView {
		view := newSurveyView(run)
		view.Report = nil
		return view
	})
	c.JSON(http.StatusOK, gin.H{"surveys": views})
}
