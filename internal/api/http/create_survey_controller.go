package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"road-survey/internal/domain/entity"
)

type createSurveyController struct {
	svc      SurveyService
	defaults JobDefaults
}

func NewCreateSurveyController(svc SurveyService, defaults JobDefaults) *createSurveyController {
	return &createSurveyController{svc: svc, defaults: defaults}
}

type createSurveyReq struct {
	Folder       string   `json:"folder" binding:"required"`
	Name         string   `json:"name"`
	Output       string   `json:"output,omitempty"` // по умолчанию <outputDir>/<id>
	Confidence   *float64 `json:"confidence,omitempty"`
	Format       string   `json:"format,omitempty"`
	Thumbnails   *bool    `json:"thumbnails,omitempty"`
	IncludeClean *bool    `json:"includeClean,omitempty"`
}

func (h *createSurveyController) Handle(c *gin.Context) {
	var req createSurveyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	format := h.defaults.Format
	if req.Format != "" {
		f, err := entity.ParseOutputFormat(req.Format)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		format = f
	}

	job := entity.SurveyJob{
		ID:           uuid.NewString(),
		Name:         req.Name,
		InputDir:     req.Folder,
		OutputDir:    req.Output,
		Confidence:   h.defaults.Confidence,
		Format:       format,
		Thumbnails:   h.defaults.Thumbnails,
		IncludeClean: h.defaults.IncludeClean,
	}
	if job.OutputDir == "" {
		job.OutputDir = filepath.Join(h.defaults.OutputDir, job.ID)
	}
	if req.Confidence != nil {
		job.Confidence = *req.Confidence
	}
	if req.Thumbnails != nil {
		job.Thumbnails = *req.Thumbnails
	}
	if req.IncludeClean != nil {
		job.IncludeClean = *req.IncludeClean
	}

	run, err := h.svc.Start(c.Request.Context(), job)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": run.Job.ID, "status": run.Status})
}
