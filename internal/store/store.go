package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"eprescription-dashboard/internal/model"
)

// Store defines the read-only queries the dashboard runs against a snapshot.
// Range bounds are inclusive on both ends.
type Store interface {
	Snapshot() model.SnapshotInfo
	Doctors(ctx context.Context) ([]model.Doctor, error)
	SessionsBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]model.Session, error)
	OrdersBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]model.Order, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db   *gorm.DB
	info model.SnapshotInfo
}

// NewGormStore creates a new GORM-backed store over a database that has
// already been seeded with the snapshot described by info.
func NewGormStore(db *gorm.DB, info model.SnapshotInfo) Store {
	return &gormStore{db: db, info: info}
}

func (s *gormStore) Snapshot() model.SnapshotInfo {
	return s.info
}

// Doctors returns the roster in ID order, which is roster order.
func (s *gormStore) Doctors(ctx context.Context) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := s.db.WithContext(ctx).Order("id").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch doctors: %w", err)
	}
	return doctors, nil
}

// SessionsBetween returns the doctor's sessions whose login time lies in [start, end].
func (s *gormStore) SessionsBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND login_time BETWEEN ? AND ?", doctorID, start, end).
		Order("login_time").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions for doctor %d: %w", doctorID, err)
	}
	return sessions, nil
}

// OrdersBetween returns the doctor's orders whose timestamp lies in [start, end].
func (s *gormStore) OrdersBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND occurred_at BETWEEN ? AND ?", doctorID, start, end).
		Order("occurred_at").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders for doctor %d: %w", doctorID, err)
	}
	return orders, nil
}
