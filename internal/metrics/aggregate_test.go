package metrics

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eprescription-dashboard/internal/daterange"
	"eprescription-dashboard/internal/generator"
	"eprescription-dashboard/internal/model"
	"eprescription-dashboard/internal/store"
)

var testDay = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return testDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func order(id string, doctorID int64, occurred time.Time, dur int, shipment string, status model.OrderStatus, assign model.AssignType, assignDelay, startDelay, timeout int) model.Order {
	return model.Order{
		ID:                     id,
		DoctorID:               doctorID,
		OccurredAt:             occurred,
		DurationMinutes:        dur,
		ShipmentType:           shipment,
		Status:                 status,
		AssignType:             assign,
		AssignDelayMinutes:     assignDelay,
		StartDelayMinutes:      startDelay,
		ResponseTimeoutMinutes: timeout,
	}
}

// twoDoctorSnapshot holds ten in-range orders: eight completed, one pending,
// one unclaimed. Dr. One is the only Available doctor.
func twoDoctorSnapshot() *model.Snapshot {
	const (
		phd = "Priority Stock HUB - Home Delivery"
		psp = "Priority Stock HUB - Store Pick"
		shd = "Stock Hub - Home Delivery"
		ssp = "Stock Hub - Store Pick"
		whd = "Warehouse - Home Delivery"
		wsp = "Warehouse - Store Pick"
	)
	return &model.Snapshot{
		Doctors: []model.Doctor{
			{ID: 1, Name: "Dr. One", CurrentStatus: model.DoctorAvailable},
			{ID: 2, Name: "Dr. Two", CurrentStatus: model.DoctorUnavailable},
		},
		Sessions: []model.Session{
			{ID: 1, DoctorID: 1, LoginTime: at(9, 0), LogoffTime: at(15, 0)},
			{ID: 2, DoctorID: 2, LoginTime: at(10, 0), LogoffTime: at(14, 0)},
			{ID: 3, DoctorID: 1, LoginTime: at(24+9, 0), LogoffTime: at(24+17, 0)},
		},
		Orders: []model.Order{
			order("1-0-0", 1, at(9, 10), 20, phd, model.StatusCompleted, model.AssignAuto, 2, 3, 0),
			order("1-0-1", 1, at(10, 0), 30, ssp, model.StatusCompleted, model.AssignManual, 4, 6, 0),
			order("1-0-2", 1, at(11, 0), 10, whd, model.StatusPending, model.AssignReassigned, 0, 0, 20),
			order("1-0-3", 1, at(14, 50), 15, wsp, model.StatusCompleted, model.AssignAuto, 5, 5, 0),
			order("1-0-4", 1, at(12, 0), 25, psp, model.StatusCompleted, model.AssignAuto, 0, 0, 0),
			order("1-0-5", 1, at(13, 0), 20, shd, model.StatusCompleted, model.AssignReassigned, 1, 1, 10),
			order("1-1-0", 1, at(24+10, 0), 30, shd, model.StatusCompleted, model.AssignAuto, 0, 0, 0),
			order("2-0-0", 2, at(10, 30), 30, whd, model.StatusCompleted, model.AssignAuto, 0, 0, 0),
			order("2-0-1", 2, at(11, 30), 40, shd, model.StatusCompleted, model.AssignManual, 2, 3, 0),
			order("2-0-2", 2, at(12, 30), 20, wsp, model.StatusCompleted, model.AssignAuto, 0, 0, 0),
			order("2-0-3", 2, at(13, 0), 10, ssp, model.StatusUnclaimed, model.AssignAuto, 0, 0, 0),
		},
	}
}

func oneDay() daterange.Range {
	return daterange.DayRange(testDay, testDay)
}

func TestAggregate_Counts(t *testing.T) {
	snap := twoDoctorSnapshot()
	now := at(24*30, 0)

	d := Aggregate(snap.Doctors[0], snap.Sessions, snap.Orders, oneDay(), now, nil)

	assert.Equal(t, Counts{
		TotalAssigned:        6,
		AutoAssigned:         3,
		ManualAssigned:       1,
		Reassigned:           2,
		Completed:            5,
		CompletedUnavailable: 1,
		Pending:              1,
		Unclaimed:            0,
	}, d.Metrics)
	assert.Equal(t, "Dr. One", d.Name)
	assert.Equal(t, model.DoctorAvailable, d.Status)
}

func TestAggregate_TimeData(t *testing.T) {
	snap := twoDoctorSnapshot()
	now := at(24*30, 0)

	one := Aggregate(snap.Doctors[0], snap.Sessions, snap.Orders, oneDay(), now, nil)
	assert.Equal(t, 360.0, one.TimeData.AvailableMinutes)
	assert.Equal(t, 6.0, one.TimeData.AvailableHours)
	assert.Equal(t, 240.0, one.TimeData.IdleMinutes)
	assert.Equal(t, "4h 0m", one.TimeData.IdleTime)
	assert.Equal(t, 0.8, one.TimeData.AvgOrdersPerHour)
	assert.Equal(t, "-", one.TimeData.LoginTime)
	assert.Equal(t, "-", one.TimeData.LogoffTime)

	two := Aggregate(snap.Doctors[1], snap.Sessions, snap.Orders, oneDay(), now, nil)
	assert.Equal(t, 4.0, two.TimeData.AvailableHours)
	assert.Equal(t, "2h 20m", two.TimeData.IdleTime)
	assert.Equal(t, 0.8, two.TimeData.AvgOrdersPerHour)
}

func TestAggregate_IdleFloorsAtZero(t *testing.T) {
	doc := model.Doctor{ID: 1, Name: "Dr. Busy", CurrentStatus: model.DoctorAvailable}
	sessions := []model.Session{{ID: 1, DoctorID: 1, LoginTime: at(9, 0), LogoffTime: at(10, 0)}}
	orders := []model.Order{
		order("a", 1, at(9, 0), 50, "Warehouse - Home Delivery", model.StatusCompleted, model.AssignAuto, 0, 0, 0),
		order("b", 1, at(9, 30), 50, "Warehouse - Home Delivery", model.StatusCompleted, model.AssignAuto, 0, 0, 0),
	}

	d := Aggregate(doc, sessions, orders, oneDay(), at(24*30, 0), nil)
	assert.Equal(t, 0.0, d.TimeData.IdleMinutes)
	assert.Equal(t, "0h 0m", d.TimeData.IdleTime)
	assert.Equal(t, 2.0, d.TimeData.AvgOrdersPerHour)
}

func TestAggregate_AvgTimes(t *testing.T) {
	snap := twoDoctorSnapshot()
	d := Aggregate(snap.Doctors[0], snap.Sessions, snap.Orders, oneDay(), at(24*30, 0), nil)

	assert.InDelta(t, 27.4, d.AvgTimes.ReqToPresc, 1e-9)
	assert.InDelta(t, 25.0, d.AvgTimes.AssignToPresc, 1e-9)
	assert.InDelta(t, 22.0, d.AvgTimes.StartToPresc, 1e-9)
	assert.InDelta(t, 15.0, d.AvgTimes.NonResponded, 1e-9)
}

func TestAggregate_TodayLoginLogoff(t *testing.T) {
	snap := twoDoctorSnapshot()

	testCases := []struct {
		name       string
		now        time.Time
		r          daterange.Range
		wantLogin  string
		wantLogoff string
	}{
		{"session still running", at(12, 0), oneDay(), "09:00", "-"},
		{"session over", at(16, 0), oneDay(), "09:00", "15:00"},
		{"range starts before today", at(24+18, 0), daterange.DayRange(testDay, testDay.AddDate(0, 0, 1)), "-", "-"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := Aggregate(snap.Doctors[0], snap.Sessions, snap.Orders, tc.r, tc.now, nil)
			assert.Equal(t, tc.wantLogin, d.TimeData.LoginTime)
			assert.Equal(t, tc.wantLogoff, d.TimeData.LogoffTime)
		})
	}
}

func TestAggregate_ShipmentBreakdown(t *testing.T) {
	snap := twoDoctorSnapshot()
	d := Aggregate(snap.Doctors[0], snap.Sessions, snap.Orders, oneDay(), at(24*30, 0), nil)

	require.Len(t, d.ShipmentMetrics, len(model.ShipmentTypes))
	var sum ShipmentMetrics
	for i, sm := range d.ShipmentMetrics {
		assert.Equal(t, model.ShipmentTypes[i], sm.Type)
		assert.Equal(t, sm.Total, sm.Auto+sm.Manual+sm.Reassigned)
		assert.Equal(t, sm.Total, sm.Completed+sm.Pending+sm.Unclaimed)
		sum.Total += sm.Total
		sum.Auto += sm.Auto
		sum.Manual += sm.Manual
		sum.Reassigned += sm.Reassigned
		sum.Completed += sm.Completed
		sum.Pending += sm.Pending
		sum.Unclaimed += sm.Unclaimed
	}
	m := d.Metrics
	assert.Equal(t, m.TotalAssigned, sum.Total)
	assert.Equal(t, m.AutoAssigned, sum.Auto)
	assert.Equal(t, m.ManualAssigned, sum.Manual)
	assert.Equal(t, m.Reassigned, sum.Reassigned)
	assert.Equal(t, m.Completed, sum.Completed)
	assert.Equal(t, m.Pending, sum.Pending)
	assert.Equal(t, m.Unclaimed, sum.Unclaimed)

	assert.True(t, d.ShipmentMetrics[0].IsAutoAssignable)
	assert.True(t, d.ShipmentMetrics[1].IsAutoAssignable)
	for _, sm := range d.ShipmentMetrics[2:] {
		assert.False(t, sm.IsAutoAssignable, sm.Type)
	}
}

func TestAggregate_EmptyRangeIsZeroFilled(t *testing.T) {
	snap := twoDoctorSnapshot()
	d := Aggregate(snap.Doctors[0], snap.Sessions, snap.Orders, daterange.Range{}, at(12, 0), nil)

	assert.Equal(t, Counts{}, d.Metrics)
	assert.Equal(t, AvgTimes{}, d.AvgTimes)
	assert.Equal(t, 0.0, d.TimeData.AvailableHours)
	assert.Equal(t, "0h 0m", d.TimeData.IdleTime)
	assert.Equal(t, "-", d.TimeData.LoginTime)
	require.Len(t, d.ShipmentMetrics, len(model.ShipmentTypes))
	for _, sm := range d.ShipmentMetrics {
		assert.Zero(t, sm.Total)
	}
}

func TestAggregator_Dashboard(t *testing.T) {
	snap := twoDoctorSnapshot()
	agg := NewAggregator(store.NewMemoryStore(snap),
		WithWorkers(4),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return at(24*30, 0) }),
	)

	got, err := agg.Dashboard(context.Background(), oneDay())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, 6, got[0].Metrics.TotalAssigned)
	assert.Equal(t, 4, got[1].Metrics.TotalAssigned)

	again, err := agg.ForDates(context.Background(), "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestAggregator_WiderRangePicksUpNextDay(t *testing.T) {
	agg := NewAggregator(store.NewMemoryStore(twoDoctorSnapshot()), WithLocation(time.UTC))

	got, err := agg.ForDates(context.Background(), "2024-03-10", "2024-03-11")
	require.NoError(t, err)
	assert.Equal(t, 7, got[0].Metrics.TotalAssigned)
	assert.Equal(t, 14.0, got[0].TimeData.AvailableHours)
}

func TestAggregator_InvalidDatesZeroFilled(t *testing.T) {
	agg := NewAggregator(faultyStore{Store: store.NewMemoryStore(twoDoctorSnapshot())}, WithLocation(time.UTC))

	got, err := agg.ForDates(context.Background(), "not-a-date", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, Counts{}, d.Metrics)
		assert.Len(t, d.ShipmentMetrics, len(model.ShipmentTypes))
	}
}

func TestAggregator_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	agg := NewAggregator(faultyStore{Store: store.NewMemoryStore(twoDoctorSnapshot()), err: boom}, WithWorkers(2))

	_, err := agg.Dashboard(context.Background(), oneDay())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestAggregator_Idempotent(t *testing.T) {
	snap := generator.Generate(at(12, 0), generator.Options{
		Doctors:     []string{"Dr. A", "Dr. B", "Dr. C"},
		DaysHistory: 10,
		Location:    time.UTC,
		Rand:        generator.NewRand(7),
	})
	agg := NewAggregator(store.NewMemoryStore(snap), WithWorkers(3), WithLocation(time.UTC))
	r := daterange.DayRange(testDay.AddDate(0, 0, -5), testDay)

	first, err := agg.Dashboard(context.Background(), r)
	require.NoError(t, err)
	second, err := agg.Dashboard(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, d := range first {
		m := d.Metrics
		assert.Equal(t, m.TotalAssigned, m.AutoAssigned+m.ManualAssigned+m.Reassigned)
		assert.Equal(t, m.TotalAssigned, m.Completed+m.Pending+m.Unclaimed)
		assert.LessOrEqual(t, m.CompletedUnavailable, m.Completed)
		assert.GreaterOrEqual(t, d.TimeData.IdleMinutes, 0.0)
	}
}

func TestAggregator_LegacyRandomPolicyVaries(t *testing.T) {
	snap := twoDoctorSnapshot()
	legacy := LegacyRandomAutoAssigner(rand.New(rand.NewPCG(1, 2)))

	seen := map[bool]bool{}
	for i := 0; i < 50; i++ {
		d := Aggregate(snap.Doctors[0], snap.Sessions, snap.Orders, oneDay(), at(12, 0), legacy)
		assert.True(t, d.ShipmentMetrics[0].IsAutoAssignable)
		assert.True(t, d.ShipmentMetrics[1].IsAutoAssignable)
		seen[d.ShipmentMetrics[4].IsAutoAssignable] = true
	}
	assert.Len(t, seen, 2)
}

// faultyStore fails every range query when err is set.
type faultyStore struct {
	store.Store
	err error
}

func (s faultyStore) SessionsBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]model.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if start.IsZero() || end.IsZero() {
		panic("range query issued for an empty range")
	}
	return s.Store.SessionsBetween(ctx, doctorID, start, end)
}

func (s faultyStore) OrdersBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]model.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if start.IsZero() || end.IsZero() {
		panic("range query issued for an empty range")
	}
	return s.Store.OrdersBetween(ctx, doctorID, start, end)
}

// trackingStore records per-doctor session queries and the peak number of
// queries running at once.
type trackingStore struct {
	store.Store
	mu       sync.Mutex
	calls    map[int64]int
	inFlight int
	peak     int
}

func (s *trackingStore) SessionsBetween(ctx context.Context, doctorID int64, start, end time.Time) ([]model.Session, error) {
	s.mu.Lock()
	s.calls[doctorID]++
	s.inFlight++
	s.peak = max(s.peak, s.inFlight)
	s.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return s.Store.SessionsBetween(ctx, doctorID, start, end)
}

func rosterSnapshot(n int) *model.Snapshot {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Dr. %02d", i+1)
	}
	return generator.Generate(at(12, 0), generator.Options{
		Doctors:     names,
		DaysHistory: 3,
		Location:    time.UTC,
		Rand:        generator.NewRand(11),
	})
}

func TestAggregator_BoundedFanOut(t *testing.T) {
	snap := rosterSnapshot(24)

	testCases := []struct {
		name     string
		workers  int
		wantPeak int
	}{
		{"zero workers fall back to one", 0, 1},
		{"single worker", 1, 1},
		{"four workers", 4, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := &trackingStore{Store: store.NewMemoryStore(snap), calls: map[int64]int{}}
			agg := NewAggregator(ts, WithWorkers(tc.workers), WithLocation(time.UTC))

			got, err := agg.Dashboard(context.Background(), daterange.DayRange(testDay.AddDate(0, 0, -2), testDay))
			require.NoError(t, err)
			require.Len(t, got, len(snap.Doctors))

			for i, d := range got {
				assert.Equal(t, snap.Doctors[i].ID, d.ID, "roster order")
				assert.Equal(t, 1, ts.calls[d.ID], "doctor %d queried once", d.ID)
			}
			assert.LessOrEqual(t, ts.peak, tc.wantPeak)
			if tc.wantPeak == 1 {
				assert.Equal(t, 1, ts.peak)
			}
		})
	}
}

func TestAggregator_CancelledContext(t *testing.T) {
	agg := NewAggregator(store.NewMemoryStore(rosterSnapshot(5)), WithWorkers(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Dashboard(ctx, oneDay())
	assert.ErrorIs(t, err, context.Canceled)
}
