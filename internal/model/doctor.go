package model

// DoctorStatus is the real-time availability of a doctor.
type DoctorStatus string

const (
	DoctorAvailable   DoctorStatus = "Available"
	DoctorUnavailable DoctorStatus = "Unavailable"
)

// DoctorStatuses lists every status in draw order.
var DoctorStatuses = []DoctorStatus{DoctorAvailable, DoctorUnavailable}

// Doctor is a member of the roster. CurrentStatus reflects the latest
// simulated state and never depends on a queried date range.
type Doctor struct {
	ID            int64        `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"size:128;not null" json:"name"`
	CurrentStatus DoctorStatus `gorm:"size:16;not null" json:"status"`
}
