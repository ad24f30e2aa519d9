package model

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the complete generated dataset. It is built once and must not
// be mutated afterwards; stores hand out copies of its records.
type Snapshot struct {
	ID          uuid.UUID
	GeneratedAt time.Time
	Location    *time.Location
	Doctors     []Doctor
	Sessions    []Session
	Orders      []Order
}

// SnapshotInfo identifies a snapshot without exposing its records.
type SnapshotInfo struct {
	ID          uuid.UUID `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Doctors     int       `json:"doctors"`
	Sessions    int       `json:"sessions"`
	Orders      int       `json:"orders"`
}

// Info summarises the snapshot.
func (s *Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:          s.ID,
		GeneratedAt: s.GeneratedAt,
		Doctors:     len(s.Doctors),
		Sessions:    len(s.Sessions),
		Orders:      len(s.Orders),
	}
}
