package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eprescription-dashboard/internal/model"
	"eprescription-dashboard/internal/parse"
)

// ShipmentTypeResponse represents one entry of the shipment catalogue.
type ShipmentTypeResponse struct {
	parse.ShipmentType
	IsAutoAssignable bool `json:"isAutoAssignable"`
}

// GetDoctors handles the GET /api/doctors request.
func (h *Handler) GetDoctors(c *gin.Context) {
	doctors, err := h.store.Doctors(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve doctors"})
		return
	}
	c.JSON(http.StatusOK, doctors)
}

// GetShipmentTypes handles the GET /api/shipment-types request.
func (h *Handler) GetShipmentTypes(c *gin.Context) {
	out := make([]ShipmentTypeResponse, 0, len(model.ShipmentTypes))
	for _, label := range model.ShipmentTypes {
		st, err := parse.ParseShipmentType(label)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, ShipmentTypeResponse{ShipmentType: st, IsAutoAssignable: h.autoAssign(label)})
	}
	c.JSON(http.StatusOK, out)
}

// GetRange handles the GET /api/range request: it echoes how a requested
// range would be normalised, together with the picker bounds.
func (h *Handler) GetRange(c *gin.Context) {
	now := h.now()
	resolved, err := h.policy.Resolve(c.Query("start"), c.Query("end"), now)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"range":  resolved,
		"bounds": h.policy.Bounds(now),
	})
}

// IncludesToday reports whether the request's range reaches the current day.
// Today's figures move as sessions and orders progress, so such responses
// must not be cached. Requests that fail to resolve report true as well.
func (h *Handler) IncludesToday(c *gin.Context) bool {
	now := h.now()
	resolved, err := h.policy.Resolve(c.Query("start"), c.Query("end"), now)
	if err != nil {
		return true
	}
	return resolved.EndDay >= h.policy.Bounds(now).Today
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
