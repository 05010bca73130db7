package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/response"
	"github.com/campusflow/compass-backend/internal/service"
)

// CatalogHandler serves read-only views over the current snapshot. Every
// request reads one pinned snapshot, so a concurrent rebuild never shows a
// half-updated catalog.
type CatalogHandler struct {
	snapshotService *service.SnapshotService
}

func NewCatalogHandler(snapshotService *service.SnapshotService) *CatalogHandler {
	return &CatalogHandler{snapshotService: snapshotService}
}

// GetCourses godoc
// GET /api/v1/catalog/courses
func (h *CatalogHandler) GetCourses(c *gin.Context) {
	snap, err := h.snapshotService.Current()
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
		return
	}

	ids := snap.Catalog.IDs()
	courses := make([]model.Course, 0, len(ids))
	for _, id := range ids {
		if course, ok := snap.Catalog.Course(id); ok {
			courses = append(courses, course)
		}
	}
	response.Success(c, http.StatusOK, gin.H{
		"snapshot_version": snap.Version,
		"courses":          courses,
	})
}

// GetCourse godoc
// GET /api/v1/catalog/courses/:code
// Accepts canonical ids and aliases alike.
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	snap, err := h.snapshotService.Current()
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
		return
	}

	id, ok := snap.Catalog.Resolve(c.Param("code"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	course, _ := snap.Catalog.Course(id)

	payload := gin.H{
		"snapshot_version": snap.Version,
		"course":           course,
	}
	if prereqs := snap.Graph.DirectPrereqs(id); len(prereqs) > 0 {
		payload["prereqs"] = prereqs
	}
	if deps := snap.Graph.Dependents(id); len(deps) > 0 {
		payload["unlocks"] = deps
	}
	response.Success(c, http.StatusOK, payload)
}

// GetTracks godoc
// GET /api/v1/catalog/tracks
func (h *CatalogHandler) GetTracks(c *gin.Context) {
	snap, err := h.snapshotService.Current()
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
		return
	}

	tracks := make([]model.Track, 0, len(snap.Tracks))
	for _, t := range snap.Tracks {
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })

	response.Success(c, http.StatusOK, gin.H{
		"snapshot_version": snap.Version,
		"tracks":           tracks,
	})
}

// GetTrack godoc
// GET /api/v1/catalog/tracks/:id
func (h *CatalogHandler) GetTrack(c *gin.Context) {
	snap, err := h.snapshotService.Current()
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
		return
	}

	track, ok := snap.Tracks[c.Param("id")]
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"snapshot_version": snap.Version,
		"track":            track,
	})
}

// GetCurriculum godoc
// GET /api/v1/catalog/curriculum
func (h *CatalogHandler) GetCurriculum(c *gin.Context) {
	snap, err := h.snapshotService.Current()
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"snapshot_version": snap.Version,
		"curriculum":       snap.Curriculum,
		"policy":           snap.Policy,
	})
}
