package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/repository"
	"github.com/campusflow/compass-backend/internal/response"
	"github.com/campusflow/compass-backend/internal/service"
)

// SnapshotHandler exposes the admin snapshot lifecycle: rebuild, status
// and the plan audit trail.
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
	planRepo        *repository.PlanRepository
}

func NewSnapshotHandler(snapshotService *service.SnapshotService, planRepo *repository.PlanRepository) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService, planRepo: planRepo}
}

// Rebuild godoc
// POST /api/v1/admin/snapshot/rebuild
func (h *SnapshotHandler) Rebuild(c *gin.Context) {
	snap, err := h.snapshotService.Rebuild(c.Request.Context())
	if err != nil {
		var ce *apperrors.ConfigError
		if errors.As(err, &ce) {
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrSnapshotRejected,
				map[string]string{"reason": ce.Reason})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"version":  snap.Version,
		"built_at": snap.BuiltAt,
	})
}

// Status godoc
// GET /api/v1/admin/snapshot/status
func (h *SnapshotHandler) Status(c *gin.Context) {
	summary, err := h.snapshotService.Summary(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"snapshot": summary})
}

// PlanAudits godoc
// GET /api/v1/admin/plan-audits?limit=N
func (h *SnapshotHandler) PlanAudits(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	audits, err := h.planRepo.GetRecentAudits(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if audits == nil {
		audits = []repository.PlanAudit{}
	}
	response.Success(c, http.StatusOK, gin.H{"audits": audits})
}
