package metrics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"eprescription-dashboard/internal/daterange"
	"eprescription-dashboard/internal/model"
	"eprescription-dashboard/internal/store"
)

// Counts tallies a set of orders by assignment type and by status. Both
// partitions cover the same orders, so each sums to TotalAssigned.
type Counts struct {
	TotalAssigned        int `json:"totalAssigned"`
	AutoAssigned         int `json:"autoAssigned"`
	ManualAssigned       int `json:"manualAssigned"`
	Reassigned           int `json:"reassigned"`
	Completed            int `json:"completed"`
	CompletedUnavailable int `json:"completedUnavailable"`
	Pending              int `json:"pending"`
	Unclaimed            int `json:"unclaimed"`
}

// TimeData is the session-derived block of a doctor's row.
type TimeData struct {
	AvailableMinutes float64 `json:"availableMinutes"`
	AvailableHours   float64 `json:"availableHours"`
	IdleMinutes      float64 `json:"idleMinutes"`
	IdleTime         string  `json:"idleTime"`
	AvgOrdersPerHour float64 `json:"avgOrdersPerHour"`
	LoginTime        string  `json:"loginTime"`
	LogoffTime       string  `json:"logoffTime"`
}

// AvgTimes holds average per-order timings in minutes.
type AvgTimes struct {
	ReqToPresc    float64 `json:"reqToPresc"`
	AssignToPresc float64 `json:"assignToPresc"`
	StartToPresc  float64 `json:"startToPresc"`
	NonResponded  float64 `json:"nonResponded"`
}

// ShipmentMetrics is one row of a doctor's shipment breakdown.
type ShipmentMetrics struct {
	Type             string `json:"type"`
	Total            int    `json:"total"`
	Auto             int    `json:"auto"`
	Manual           int    `json:"manual"`
	Reassigned       int    `json:"reassigned"`
	Completed        int    `json:"completed"`
	Pending          int    `json:"pending"`
	Unclaimed        int    `json:"unclaimed"`
	IsAutoAssignable bool   `json:"isAutoAssignable"`
}

// DoctorDashboard is the aggregated view of one doctor over a date range.
type DoctorDashboard struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Status          model.DoctorStatus `json:"status"`
	Metrics         Counts             `json:"metrics"`
	TimeData        TimeData           `json:"timeData"`
	AvgTimes        AvgTimes           `json:"avgTimes"`
	ShipmentMetrics []ShipmentMetrics  `json:"shipmentMetrics"`
}

// Aggregator recomputes per-doctor dashboards from a store on every call.
type Aggregator struct {
	store      store.Store
	autoAssign AutoAssigner
	workers    int
	location   *time.Location
	now        func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets how many doctors are aggregated concurrently. Values
// below 1 mean 1.
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = max(n, 1) }
}

// WithAutoAssigner overrides the static auto-assignable rule.
func WithAutoAssigner(f AutoAssigner) Option {
	return func(a *Aggregator) {
		if f != nil {
			a.autoAssign = f
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the timezone used to parse date strings.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.location = loc }
}

// NewAggregator creates an aggregator over s.
func NewAggregator(s store.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:      s,
		autoAssign: StaticAutoAssigner(),
		workers:    1,
		location:   time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ForDates aggregates over two YYYY-MM-DD strings. Unparseable dates give an
// empty range and therefore a zero-filled row per doctor, not an error.
func (a *Aggregator) ForDates(ctx context.Context, startStr, endStr string) ([]DoctorDashboard, error) {
	return a.Dashboard(ctx, daterange.Lenient(startStr, endStr, a.location))
}

// Dashboard returns one aggregate per doctor, in roster order. Doctors are
// aggregated on up to workers goroutines; the first store error cancels the
// rest and is returned.
func (a *Aggregator) Dashboard(ctx context.Context, r daterange.Range) ([]DoctorDashboard, error) {
	doctors, err := a.store.Doctors(ctx)
	if err != nil {
		return nil, err
	}

	now := a.now()
	results := make([]DoctorDashboard, len(doctors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, doctor := range doctors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var (
				sessions []model.Session
				orders   []model.Order
				err      error
			)
			if r.Valid() {
				if sessions, err = a.store.SessionsBetween(gctx, doctor.ID, r.Start, r.End); err != nil {
					return err
				}
				if orders, err = a.store.OrdersBetween(gctx, doctor.ID, r.Start, r.End); err != nil {
					return err
				}
			}
			results[i] = Aggregate(doctor, sessions, orders, r, now, a.autoAssign)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to aggregate dashboard: %w", err)
	}
	return results, nil
}

// Aggregate computes a doctor's dashboard from flat session and order lists.
// Records of other doctors or outside r are ignored; sessions are selected
// by login time and orders by timestamp, independently of each other.
func Aggregate(doctor model.Doctor, sessions []model.Session, orders []model.Order, r daterange.Range, now time.Time, autoAssign AutoAssigner) DoctorDashboard {
	if autoAssign == nil {
		autoAssign = StaticAutoAssigner()
	}

	var inSessions []model.Session
	for _, s := range sessions {
		if s.DoctorID == doctor.ID && r.Contains(s.LoginTime) {
			inSessions = append(inSessions, s)
		}
	}
	sort.Slice(inSessions, func(i, j int) bool {
		return inSessions[i].LoginTime.Before(inSessions[j].LoginTime)
	})

	dash := DoctorDashboard{
		ID:              doctor.ID,
		Name:            doctor.Name,
		Status:          doctor.CurrentStatus,
		ShipmentMetrics: newShipmentMetrics(autoAssign),
	}

	var (
		orderMinutes                      int
		reqSum, assignSum, startSum, nrSum int
	)
	for _, o := range orders {
		if o.DoctorID != doctor.ID || !r.Contains(o.OccurredAt) {
			continue
		}
		m := &dash.Metrics
		m.TotalAssigned++
		orderMinutes += o.DurationMinutes

		switch o.AssignType {
		case model.AssignAuto:
			m.AutoAssigned++
		case model.AssignManual:
			m.ManualAssigned++
		case model.AssignReassigned:
			m.Reassigned++
			nrSum += o.ResponseTimeoutMinutes
		}

		switch o.Status {
		case model.StatusCompleted:
			m.Completed++
			reqSum += o.ReqToPrescMinutes()
			assignSum += o.AssignToPrescMinutes()
			startSum += o.StartToPrescMinutes()
			if !withinAny(inSessions, o.PrescribedAt()) {
				m.CompletedUnavailable++
			}
		case model.StatusPending:
			m.Pending++
		case model.StatusUnclaimed:
			m.Unclaimed++
		}

		if idx := model.ShipmentIndex(o.ShipmentType); idx >= 0 {
			dash.ShipmentMetrics[idx].add(o)
		}
	}

	if c := dash.Metrics.Completed; c > 0 {
		dash.AvgTimes.ReqToPresc = float64(reqSum) / float64(c)
		dash.AvgTimes.AssignToPresc = float64(assignSum) / float64(c)
		dash.AvgTimes.StartToPresc = float64(startSum) / float64(c)
	}
	if n := dash.Metrics.Reassigned; n > 0 {
		dash.AvgTimes.NonResponded = float64(nrSum) / float64(n)
	}

	dash.TimeData = timeData(inSessions, r, now, orderMinutes, dash.Metrics.Completed)
	return dash
}

func timeData(sessions []model.Session, r daterange.Range, now time.Time, orderMinutes, completed int) TimeData {
	var totalMinutes float64
	for _, s := range sessions {
		end := s.LogoffTime
		if end.After(r.End) {
			end = r.End
		}
		start := s.LoginTime
		if start.Before(r.Start) {
			start = r.Start
		}
		if d := end.Sub(start).Minutes(); d > 0 {
			totalMinutes += d
		}
	}

	idle := totalMinutes - float64(orderMinutes)
	if idle < 0 {
		idle = 0
	}

	td := TimeData{
		AvailableMinutes: totalMinutes,
		AvailableHours:   round1(totalMinutes / 60),
		IdleMinutes:      idle,
		IdleTime:         fmt.Sprintf("%dh %dm", int(idle/60), int(math.Mod(idle, 60))),
		LoginTime:        "-",
		LogoffTime:       "-",
	}
	if td.AvailableHours > 0 {
		td.AvgOrdersPerHour = round1(float64(completed) / td.AvailableHours)
	}

	if !r.Valid() {
		return td
	}
	loc := r.Start.Location()
	today := daterange.Midnight(now, loc)
	if !r.Start.Equal(today) {
		return td
	}
	for _, s := range sessions {
		if daterange.Midnight(s.LoginTime, loc).Equal(today) {
			td.LoginTime = s.LoginTime.In(loc).Format("15:04")
			if !s.LogoffTime.After(now) {
				td.LogoffTime = s.LogoffTime.In(loc).Format("15:04")
			}
			break
		}
	}
	return td
}

func newShipmentMetrics(autoAssign AutoAssigner) []ShipmentMetrics {
	out := make([]ShipmentMetrics, len(model.ShipmentTypes))
	for i, label := range model.ShipmentTypes {
		out[i] = ShipmentMetrics{Type: label, IsAutoAssignable: autoAssign(label)}
	}
	return out
}

func (m *ShipmentMetrics) add(o model.Order) {
	m.Total++
	switch o.AssignType {
	case model.AssignAuto:
		m.Auto++
	case model.AssignManual:
		m.Manual++
	case model.AssignReassigned:
		m.Reassigned++
	}
	switch o.Status {
	case model.StatusCompleted:
		m.Completed++
	case model.StatusPending:
		m.Pending++
	case model.StatusUnclaimed:
		m.Unclaimed++
	}
}

// withinAny reports whether t falls inside one of the login-sorted sessions.
func withinAny(sessions []model.Session, t time.Time) bool {
	i := sort.Search(len(sessions), func(i int) bool { return sessions[i].LoginTime.After(t) })
	for j := i - 1; j >= 0; j-- {
		if sessions[j].Contains(t) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
