package metrics

import (
	"math"

	"eprescription-dashboard/internal/model"
)

// Summary is the KPI header computed across every doctor of a dashboard.
type Summary struct {
	TotalDoctors       int      `json:"totalDoctors"`
	ActiveDoctors      int      `json:"activeDoctors"`
	InactiveDoctors    int      `json:"inactiveDoctors"`
	TotalAssigned      int      `json:"totalAssigned"`
	Completed          int      `json:"completed"`
	Pending            int      `json:"pending"`
	Unclaimed          int      `json:"unclaimed"`
	Verified           int      `json:"verified"`
	Rejected           int      `json:"rejected"`
	AvgOrdersPerActive float64  `json:"avgOrdersPerActive"`
	UnclaimedRate      float64  `json:"unclaimedRate"`
	AvgTimes           AvgTimes `json:"avgTimes"`
}

// Summarize folds per-doctor dashboards into the KPI header. Average timings
// are weighted by each doctor's completed (or reassigned) count and rounded
// to whole minutes.
func Summarize(doctors []DoctorDashboard) Summary {
	s := Summary{TotalDoctors: len(doctors)}

	var (
		reqW, assignW, startW, nrW float64
		reassigned                 int
	)
	for _, d := range doctors {
		if d.Status == model.DoctorAvailable {
			s.ActiveDoctors++
		}
		m := d.Metrics
		s.TotalAssigned += m.TotalAssigned
		s.Completed += m.Completed
		s.Pending += m.Pending
		s.Unclaimed += m.Unclaimed
		s.Verified += m.ManualAssigned
		s.Rejected += m.Reassigned

		if m.Completed > 0 {
			c := float64(m.Completed)
			reqW += d.AvgTimes.ReqToPresc * c
			assignW += d.AvgTimes.AssignToPresc * c
			startW += d.AvgTimes.StartToPresc * c
		}
		if m.Reassigned > 0 {
			nrW += d.AvgTimes.NonResponded * float64(m.Reassigned)
			reassigned += m.Reassigned
		}
	}
	s.InactiveDoctors = s.TotalDoctors - s.ActiveDoctors

	if s.ActiveDoctors > 0 {
		s.AvgOrdersPerActive = round1(float64(s.Completed) / float64(s.ActiveDoctors))
	}
	if s.TotalAssigned > 0 {
		s.UnclaimedRate = round1(float64(s.Unclaimed) / float64(s.TotalAssigned) * 100)
	}
	if s.Completed > 0 {
		c := float64(s.Completed)
		s.AvgTimes.ReqToPresc = math.Round(reqW / c)
		s.AvgTimes.AssignToPresc = math.Round(assignW / c)
		s.AvgTimes.StartToPresc = math.Round(startW / c)
	}
	if reassigned > 0 {
		s.AvgTimes.NonResponded = math.Round(nrW / float64(reassigned))
	}
	return s
}
