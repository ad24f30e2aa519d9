package api

import (
	"time"

	"eprescription-dashboard/internal/daterange"
	"eprescription-dashboard/internal/export"
	"eprescription-dashboard/internal/metrics"
	"eprescription-dashboard/internal/store"
)

const maxPageSize = 100

// Options tunes request handling.
type Options struct {
	Policy        daterange.Policy
	PageSize      int
	ExportProfile string
	AutoAssign    metrics.AutoAssigner
	Now           func() time.Time
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store         store.Store
	aggregator    *metrics.Aggregator
	policy        daterange.Policy
	pageSize      int
	exportProfile string
	autoAssign    metrics.AutoAssigner
	now           func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, agg *metrics.Aggregator, opts Options) *Handler {
	h := &Handler{
		store:         s,
		aggregator:    agg,
		policy:        opts.Policy,
		pageSize:      opts.PageSize,
		exportProfile: opts.ExportProfile,
		autoAssign:    opts.AutoAssign,
		now:           opts.Now,
	}
	if h.pageSize <= 0 || h.pageSize > maxPageSize {
		h.pageSize = 10
	}
	if h.exportProfile == "" {
		h.exportProfile = export.DefaultProfile
	}
	if h.autoAssign == nil {
		h.autoAssign = metrics.StaticAutoAssigner()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}
