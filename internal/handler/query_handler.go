package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/response"
	"github.com/campusflow/compass-backend/internal/service"
	"github.com/campusflow/compass-backend/internal/validator"
)

type QueryHandler struct {
	queryService *service.QueryService
}

func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Run godoc
// POST /api/v1/query
func (h *QueryHandler) Run(c *gin.Context) {
	var req model.QueryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.queryService.Run(c.Request.Context(), req)
	if err != nil {
		failQueryError(c, err)
		return
	}

	if result.Rows == nil {
		result.Rows = []map[string]interface{}{}
	}
	response.Success(c, http.StatusOK, result)
}

// Explain godoc
// POST /api/v1/query/explain
func (h *QueryHandler) Explain(c *gin.Context) {
	var req model.QueryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.queryService.Explain(req)
	if err != nil {
		failQueryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sql": result.SQL, "param_count": result.RowCount})
}

// failQueryError distinguishes rejected queries, timeouts and database
// outages for the caller.
func failQueryError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrQueryRejected,
			map[string]string{ve.Field: ve.Reason})
	case errors.Is(err, apperrors.ErrQueryTimeout):
		response.Fail(c, http.StatusGatewayTimeout, response.ErrQueryTimeout)
	case errors.Is(err, apperrors.ErrDBUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDBUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
