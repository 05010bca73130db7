package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/response"
	"github.com/campusflow/compass-backend/internal/service"
	"github.com/campusflow/compass-backend/internal/validator"
)

// StudentHandler exposes stored planning profiles and plan computation
// against them.
type StudentHandler struct {
	studentService *service.StudentService
	plannerService *service.PlannerService
}

func NewStudentHandler(studentService *service.StudentService, plannerService *service.PlannerService) *StudentHandler {
	return &StudentHandler{studentService: studentService, plannerService: plannerService}
}

// GetProfile godoc
// GET /api/v1/students/:id/profile
func (h *StudentHandler) GetProfile(c *gin.Context) {
	profile, err := h.studentService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if profile == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// SaveProfile godoc
// PUT /api/v1/students/:id/profile
// Replaces the stored profile wholesale. The path id wins over any id in
// the body.
func (h *StudentHandler) SaveProfile(c *gin.Context) {
	var profile model.StudentProfile
	if fields := validator.Bind(c, &profile); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	profile.StudentID = c.Param("id")

	if err := h.studentService.SaveProfile(c.Request.Context(), profile); err != nil {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrProfileInvalid,
				map[string]string{ve.Field: ve.Reason})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student_id": profile.StudentID})
}

// DeleteProfile godoc
// DELETE /api/v1/students/:id/profile
func (h *StudentHandler) DeleteProfile(c *gin.Context) {
	if err := h.studentService.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ComputePlan godoc
// POST /api/v1/students/:id/plan
// Computes a plan from the stored profile; the body carries constraints
// only.
func (h *StudentHandler) ComputePlan(c *gin.Context) {
	// An empty body means default constraints.
	var cons model.Constraints
	if err := c.ShouldBindJSON(&cons); err != nil && !errors.Is(err, io.EOF) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	profile, err := h.studentService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if profile == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	result, err := h.plannerService.ComputePlan(c.Request.Context(), model.ComputePlanRequest{
		Profile:     *profile,
		Constraints: cons,
	})
	if err != nil {
		failPlannerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
