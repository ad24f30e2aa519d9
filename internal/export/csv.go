package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"eprescription-dashboard/internal/metrics"
)

const (
	// FileName is the attachment name of every export.
	FileName = "doctor_metrics.csv"
	// ContentType is the MIME type sent with an export.
	ContentType = "text/csv;charset=utf-8;"

	// DefaultProfile is the canonical column layout.
	DefaultProfile = "v1"
)

// Profile is a versioned CSV column layout. Each doctor produces one main
// row (shipment type "All") followed by one row per shipment type.
type Profile struct {
	Name   string
	Header []string
	main   func(d metrics.DoctorDashboard) []string
	sub    func(d metrics.DoctorDashboard, s metrics.ShipmentMetrics) []string
}

var profiles = map[string]Profile{
	"v1": {
		Name: "v1",
		Header: []string{
			"Doctor Name", "Shipment Type", "Current Status", "Total Assigned",
			"Auto Assigned", "Manual Assigned", "Reassigned", "Completed",
			"Completed (Not Avlbl)", "Pending", "Unclaimed", "Auto Assignable",
			"Available Hrs", "Idle Time", "Orders / Hr",
		},
		main: func(d metrics.DoctorDashboard) []string {
			m := d.Metrics
			return []string{
				d.Name, "All", string(d.Status), itoa(m.TotalAssigned),
				itoa(m.AutoAssigned), itoa(m.ManualAssigned), itoa(m.Reassigned), itoa(m.Completed),
				itoa(m.CompletedUnavailable), itoa(m.Pending), itoa(m.Unclaimed), "",
				ftoa(d.TimeData.AvailableHours), d.TimeData.IdleTime, ftoa(d.TimeData.AvgOrdersPerHour),
			}
		},
		sub: func(d metrics.DoctorDashboard, s metrics.ShipmentMetrics) []string {
			return []string{
				d.Name, s.Type, "", itoa(s.Total),
				itoa(s.Auto), itoa(s.Manual), itoa(s.Reassigned), itoa(s.Completed),
				"", itoa(s.Pending), itoa(s.Unclaimed), yesNo(s.IsAutoAssignable),
				"", "", "",
			}
		},
	},
	// The header repeats its first five columns while rows carry eleven
	// cells. Consumers of older exports depend on that shape.
	"legacy-a": {
		Name: "legacy-a",
		Header: []string{
			"Doctor Name", "Shipment Type", "Current Status", "Total Assigned", "Auto Assigned",
			"Doctor Name", "Shipment Type", "Current Status", "Total Assigned", "Auto Assigned",
			"Reassigned", "Completed (Total / Not Avlbl)", "Pending",
			"Unclaimed", "Available Hrs / day", "Avg Time / Order (in mins)",
		},
		main: func(d metrics.DoctorDashboard) []string {
			m := d.Metrics
			return []string{
				d.Name, "All", string(d.Status), itoa(m.TotalAssigned), itoa(m.AutoAssigned),
				itoa(m.Reassigned), completedCell(m), itoa(m.Pending), itoa(m.Unclaimed),
				ftoa(d.TimeData.AvailableHours), ftoa(d.TimeData.AvgOrdersPerHour),
			}
		},
		sub: func(d metrics.DoctorDashboard, s metrics.ShipmentMetrics) []string {
			return []string{
				d.Name, s.Type, "", itoa(s.Total), itoa(s.Auto),
				itoa(s.Reassigned), itoa(s.Completed), itoa(s.Pending), itoa(s.Unclaimed),
				"", "",
			}
		},
	},
	"legacy-b": {
		Name: "legacy-b",
		Header: []string{
			"Doctor Name", "Shipment Type", "Current Status", "Total Assigned", "Auto Assigned",
			"Manual Assigned", "Reassigned", "Completed (Total / Not Avlbl)", "Pending",
			"Unclaimed", "Available Hrs / day", "Idle Time", "Avg Time / Order (in mins)",
		},
		main: func(d metrics.DoctorDashboard) []string {
			m := d.Metrics
			return []string{
				d.Name, "All", string(d.Status), itoa(m.TotalAssigned), itoa(m.AutoAssigned),
				itoa(m.ManualAssigned), itoa(m.Reassigned), completedCell(m), itoa(m.Pending),
				itoa(m.Unclaimed), ftoa(d.TimeData.AvailableHours), d.TimeData.IdleTime, ftoa(d.TimeData.AvgOrdersPerHour),
			}
		},
		sub: func(d metrics.DoctorDashboard, s metrics.ShipmentMetrics) []string {
			return []string{
				d.Name, s.Type, "", itoa(s.Total), itoa(s.Auto),
				itoa(s.Manual), itoa(s.Reassigned), itoa(s.Completed), itoa(s.Pending),
				itoa(s.Unclaimed), "", "", "",
			}
		},
	},
	"legacy-c": {
		Name: "legacy-c",
		Header: []string{
			"Doctor Name", "Shipment Type", "Current Status", "Total Assigned", "Auto Assigned",
			"Manual Assigned", "Reassigned", "Completed (Total / Not Avlbl)", "Pending",
			"Unclaimed", "Unclaimed %", "Available Hrs / day", "Avg Time / Order (in mins)",
			"Req to Presc (mins)", "Assign to Presc (mins)", "Start to Presc (mins)",
		},
		main: func(d metrics.DoctorDashboard) []string {
			m := d.Metrics
			return []string{
				d.Name, "All", string(d.Status), itoa(m.TotalAssigned), itoa(m.AutoAssigned),
				itoa(m.ManualAssigned), itoa(m.Reassigned), completedCell(m), itoa(m.Pending),
				itoa(m.Unclaimed), percent(m.Unclaimed, m.TotalAssigned),
				ftoa(d.TimeData.AvailableHours), ftoa(d.TimeData.AvgOrdersPerHour),
				minutes(d.AvgTimes.ReqToPresc), minutes(d.AvgTimes.AssignToPresc), minutes(d.AvgTimes.StartToPresc),
			}
		},
		sub: func(d metrics.DoctorDashboard, s metrics.ShipmentMetrics) []string {
			return []string{
				d.Name, s.Type, "", itoa(s.Total), itoa(s.Auto),
				itoa(s.Manual), itoa(s.Reassigned), itoa(s.Completed), itoa(s.Pending),
				itoa(s.Unclaimed), percent(s.Unclaimed, s.Total),
				"", "", "", "", "",
			}
		},
	},
}

// Lookup returns the named profile; an empty name selects DefaultProfile.
func Lookup(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown export profile %q", name)
	}
	return p, nil
}

// Profiles lists the available profile names in sorted order.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Write renders doctors as CSV using the named profile.
func Write(w io.Writer, profile string, doctors []metrics.DoctorDashboard) error {
	p, err := Lookup(profile)
	if err != nil {
		return err
	}
	return p.Write(w, doctors)
}

// Write renders doctors as CSV.
func (p Profile) Write(w io.Writer, doctors []metrics.DoctorDashboard) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(p.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, d := range doctors {
		if err := cw.Write(p.main(d)); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", d.Name, err)
		}
		for _, s := range d.ShipmentMetrics {
			if err := cw.Write(p.sub(d, s)); err != nil {
				return fmt.Errorf("failed to write %s row for %s: %w", s.Type, d.Name, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func completedCell(m metrics.Counts) string {
	return fmt.Sprintf("%d (%d)", m.Completed, m.CompletedUnavailable)
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(part)/float64(total)*100, 'f', 1, 64) + "%"
}

func minutes(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
