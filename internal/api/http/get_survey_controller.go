package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"road-survey/internal/domain/port"
)

type getSurveyController struct{ svc SurveyService }

func NewGetSurveyController(svc SurveyService) *getSurveyController {
	return &getSurveyController{svc}
}

func (h *getSurveyController) Handle(c *gin.Context) {
	run, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSurveyView(run))
}

func writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, port.ErrSurveyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
