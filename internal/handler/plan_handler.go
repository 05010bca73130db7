package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/response"
	"github.com/campusflow/compass-backend/internal/service"
	"github.com/campusflow/compass-backend/internal/validator"
)

type PlanHandler struct {
	plannerService *service.PlannerService
}

func NewPlanHandler(plannerService *service.PlannerService) *PlanHandler {
	return &PlanHandler{plannerService: plannerService}
}

// Compute godoc
// POST /api/v1/plans/compute
func (h *PlanHandler) Compute(c *gin.Context) {
	var req model.ComputePlanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.plannerService.ComputePlan(c.Request.Context(), req)
	if err != nil {
		failPlannerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Validate godoc
// POST /api/v1/plans/validate
func (h *PlanHandler) Validate(c *gin.Context) {
	var req model.ValidatePlanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	advisories, err := h.plannerService.ValidatePlan(c.Request.Context(), req)
	if err != nil {
		failPlannerError(c, err)
		return
	}

	valid := true
	for _, a := range advisories {
		if a.Severity == model.SeverityFatal {
			valid = false
		}
	}
	response.Success(c, http.StatusOK, gin.H{"valid": valid, "advisories": advisories})
}

// Get godoc
// GET /api/v1/plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.plannerService.GetCachedPlan(c.Request.Context(), planID.String())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if result == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// failPlannerError maps planner service errors onto the response envelope.
func failPlannerError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.Is(err, service.ErrSnapshotUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrProfileInvalid,
			map[string]string{ve.Field: ve.Reason})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
