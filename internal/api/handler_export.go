package api

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"eprescription-dashboard/internal/export"
)

// GetExport handles the GET /api/dashboard/export request.
func (h *Handler) GetExport(c *gin.Context) {
	name := c.Query("profile")
	if name == "" {
		name = h.exportProfile
	}
	profile, err := export.Lookup(name)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved, err := h.policy.Resolve(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doctors, err := h.aggregator.Dashboard(c.Request.Context(), resolved.Range)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate dashboard"})
		return
	}

	var buf bytes.Buffer
	if err := profile.Write(&buf, doctors); err != nil {
		log.Printf("Error rendering %s export: %v", profile.Name, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to render export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
