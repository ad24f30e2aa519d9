package model

import "time"

// Session is one doctor's working window on one calendar day.
type Session struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	DoctorID   int64     `gorm:"not null;index:idx_sessions_doctor_login,priority:1" json:"doctorId"`
	LoginTime  time.Time `gorm:"not null;index:idx_sessions_doctor_login,priority:2" json:"loginTime"`
	LogoffTime time.Time `gorm:"not null" json:"logoffTime"`
}

// Duration returns the length of the session.
func (s Session) Duration() time.Duration {
	return s.LogoffTime.Sub(s.LoginTime)
}

// Contains reports whether t lies within [login, logoff].
func (s Session) Contains(t time.Time) bool {
	return !t.Before(s.LoginTime) && !t.After(s.LogoffTime)
}
