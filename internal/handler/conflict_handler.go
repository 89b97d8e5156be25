package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/j4nthirty1ne/school-timetable-api/internal/dto"
	"github.com/j4nthirty1ne/school-timetable-api/internal/models"
	appErrors "github.com/j4nthirty1ne/school-timetable-api/pkg/errors"
	"github.com/j4nthirty1ne/school-timetable-api/pkg/response"
)

type conflictChecker interface {
	Check(ctx context.Context, req dto.ConflictCheckRequest) (*models.ConflictReport, error)
}

// ConflictHandler exposes the pre-confirmation conflict check endpoint.
type ConflictHandler struct {
	service conflictChecker
}

// NewConflictHandler constructs handler.
func NewConflictHandler(svc conflictChecker) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

// Check godoc
// @Summary Check a proposed assignment for timetable conflicts
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.ConflictCheckRequest true "Proposed assignment"
// @Success 200 {object} dto.ConflictCheckResponse
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /schedules/check-conflicts [post]
func (h *ConflictHandler) Check(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	report, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.NewConflictCheckResponse(report))
}
