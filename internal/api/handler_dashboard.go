package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eprescription-dashboard/internal/daterange"
	"eprescription-dashboard/internal/metrics"
	"eprescription-dashboard/internal/model"
)

// Pagination describes which slice of the roster a response carries.
// From and To are 1-based and inclusive; both are 0 on an empty page.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// DashboardResponse is the body of GET /api/dashboard.
type DashboardResponse struct {
	Range      daterange.Resolved        `json:"range"`
	Bounds     daterange.Bounds          `json:"bounds"`
	Snapshot   model.SnapshotInfo        `json:"snapshot"`
	Summary    metrics.Summary           `json:"summary"`
	Doctors    []metrics.DoctorDashboard `json:"doctors"`
	Pagination Pagination                `json:"pagination"`
}

// GetDashboard handles the GET /api/dashboard request. The summary always
// covers the whole roster; doctors holds only the requested page.
func (h *Handler) GetDashboard(c *gin.Context) {
	now := h.now()
	resolved, err := h.policy.Resolve(c.Query("start"), c.Query("end"), now)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, ok := intQuery(c, "page", 1, 1, 0)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}
	pageSize, ok := intQuery(c, "page_size", h.pageSize, 1, maxPageSize)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size"})
		return
	}

	doctors, err := h.aggregator.Dashboard(c.Request.Context(), resolved.Range)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate dashboard"})
		return
	}

	pg, items := paginate(doctors, page, pageSize)
	c.JSON(http.StatusOK, DashboardResponse{
		Range:      resolved,
		Bounds:     h.policy.Bounds(now),
		Snapshot:   h.store.Snapshot(),
		Summary:    metrics.Summarize(doctors),
		Doctors:    items,
		Pagination: pg,
	})
}

func paginate(doctors []metrics.DoctorDashboard, page, pageSize int) (Pagination, []metrics.DoctorDashboard) {
	total := len(doctors)
	pg := Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return pg, []metrics.DoctorDashboard{}
	}
	end := min(start+pageSize, total)
	pg.From, pg.To = start+1, end
	return pg, doctors[start:end]
}

// intQuery reads an optional integer query parameter bounded below by lo
// and, when hi > 0, above by hi.
func intQuery(c *gin.Context, key string, def, lo, hi int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi > 0 && v > hi) {
		return 0, false
	}
	return v, true
}
