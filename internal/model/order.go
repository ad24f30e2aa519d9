package model

import "time"

// OrderStatus is the outcome of an order.
type OrderStatus string

const (
	StatusCompleted OrderStatus = "Completed"
	StatusPending   OrderStatus = "Pending"
	StatusUnclaimed OrderStatus = "Unclaimed"
)

// AssignType describes how an order reached a doctor.
type AssignType string

const (
	AssignAuto       AssignType = "Auto"
	AssignManual     AssignType = "Manual"
	AssignReassigned AssignType = "Reassigned"
)

// Order is a single simulated prescription-handling unit.
type Order struct {
	ID                     string      `gorm:"primaryKey;size:32" json:"id"`
	DoctorID               int64       `gorm:"not null;index:idx_orders_doctor_occurred,priority:1" json:"doctorId"`
	OccurredAt             time.Time   `gorm:"not null;index:idx_orders_doctor_occurred,priority:2" json:"occurredAt"`
	DurationMinutes        int         `gorm:"not null" json:"durationMinutes"`
	ShipmentType           string      `gorm:"size:64;not null" json:"shipmentType"`
	Status                 OrderStatus `gorm:"size:16;not null" json:"status"`
	AssignType             AssignType  `gorm:"size:16;not null" json:"assignType"`
	AssignDelayMinutes     int         `gorm:"not null" json:"assignDelayMinutes"`
	StartDelayMinutes      int         `gorm:"not null" json:"startDelayMinutes"`
	ResponseTimeoutMinutes int         `gorm:"not null" json:"responseTimeoutMinutes"`
}

// PrescribedAt is when the prescription was issued: request time plus the
// assignment wait, the start wait and the handling duration.
func (o Order) PrescribedAt() time.Time {
	return o.OccurredAt.Add(time.Duration(o.AssignDelayMinutes+o.StartDelayMinutes+o.DurationMinutes) * time.Minute)
}

// ReqToPrescMinutes is the time from request to prescription.
func (o Order) ReqToPrescMinutes() int {
	return o.AssignDelayMinutes + o.StartDelayMinutes + o.DurationMinutes
}

// AssignToPrescMinutes is the time from assignment to prescription.
func (o Order) AssignToPrescMinutes() int {
	return o.StartDelayMinutes + o.DurationMinutes
}

// StartToPrescMinutes is the time the doctor actively spent on the order.
func (o Order) StartToPrescMinutes() int {
	return o.DurationMinutes
}
