package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/services"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

type GenerationHandler struct {
	svc services.LessonGenerationService
}

func NewGenerationHandler(svc services.LessonGenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// POST /api/lessons/generate
func (h *GenerationHandler) Start(c *gin.Context) {
	var cmd types.GenerateLessonCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body: %w", err))
		return
	}

	job, err := h.svc.StartGeneration(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidArgument) {
			RespondError(c, http.StatusBadRequest, "invalid_argument", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// GET /api/lessons/generate/:id
func (h *GenerationHandler) GetStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", fmt.Errorf("invalid job id %q", c.Param("id")))
		return
	}

	job, err := h.svc.GetStatus(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("job %s not found", jobID))
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}

	RespondOK(c, gin.H{"job": job})
}
