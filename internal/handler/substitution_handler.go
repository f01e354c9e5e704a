package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
	"github.com/HummaSaeed/TimeTableManager/pkg/response"
)

type substitutionService interface {
	MarkAbsent(ctx context.Context, schoolID string, req dto.MarkAbsenceRequest) (*dto.MarkAbsenceResponse, error)
}

type SubstitutionHandler struct {
	substitutions substitutionService
}

func NewSubstitutionHandler(substitutions substitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{substitutions: substitutions}
}

// MarkAbsent godoc
// @Summary Record a teacher absence
// @Description Records the absence and assigns substitutes to the teacher's slots for that weekday, reporting a per-slot outcome.
// @Tags substitution
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkAbsenceRequest true "Absence details"
// @Success 200 {object} response.Envelope{data=dto.MarkAbsenceResponse}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /substitutions/absences [post]
func (h *SubstitutionHandler) MarkAbsent(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.MarkAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.substitutions.MarkAbsent(c.Request.Context(), school, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
