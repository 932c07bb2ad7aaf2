package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"road-survey/internal/domain/port"
)

type cancelSurveyController struct{ svc SurveyService }

func NewCancelSurveyController(svc SurveyService) *cancelSurveyController {
	return &cancelSurveyController{svc}
}

func (h *cancelSurveyController) Handle(c *gin.Context) {
	id := c.Param("id")
	err := h.svc.Cancel(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"id": id, "status": "cancelling"})
	case errors.Is(err, port.ErrSurveyFinished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		writeLookupError(c, err)
	}
}
