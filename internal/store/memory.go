package store

import (
	"context"
	"slices"
	"sort"
	"time"

	"eprescription-dashboard/internal/model"
)

// memoryStore serves queries straight from an in-memory snapshot. Every
// slice it holds is private and never written after construction, so it is
// safe for concurrent use.
type memoryStore struct {
	info     model.SnapshotInfo
	doctors  []model.Doctor
	sessions map[int64][]model.Session // by doctor, sorted by login time
	orders   map[int64][]model.Order   // by doctor, sorted by timestamp
}

// NewMemoryStore indexes a snapshot for range queries.
func NewMemoryStore(snap *model.Snapshot) Store {
	s := &memoryStore{
		info:     snap.Info(),
		doctors:  slices.Clone(snap.Doctors),
		sessions: make(map[int64][]model.Session, len(snap.Doctors)),
		orders:   make(map[int64][]model.Order, len(snap.Doctors)),
	}

	for _, sess := range snap.Sessions {
		s.sessions[sess.DoctorID] = append(s.sessions[sess.DoctorID], sess)
	}
	for _, o := range snap.Orders {
		s.orders[o.DoctorID] = append(s.orders[o.DoctorID], o)
	}

	for id := range s.sessions {
		sort.SliceStable(s.sessions[id], func(i, j int) bool {
			return s.sessions[id][i].LoginTime.Before(s.sessions[id][j].LoginTime)
		})
	}
	for id := range s.orders {
		sort.SliceStable(s.orders[id], func(i, j int) bool {
			return s.orders[id][i].OccurredAt.Before(s.orders[id][j].OccurredAt)
		})
	}
	return s
}

func (s *memoryStore) Snapshot() model.SnapshotInfo {
	return s.info
}

func (s *memoryStore) Doctors(_ context.Context) ([]model.Doctor, error) {
	return slices.Clone(s.doctors), nil
}

func (s *memoryStore) SessionsBetween(_ context.Context, doctorID int64, start, end time.Time) ([]model.Session, error) {
	all := s.sessions[doctorID]
	lo, hi := window(len(all), start, end, func(i int) time.Time { return all[i].LoginTime })
	return slices.Clone(all[lo:hi]), nil
}

func (s *memoryStore) OrdersBetween(_ context.Context, doctorID int64, start, end time.Time) ([]model.Order, error) {
	all := s.orders[doctorID]
	lo, hi := window(len(all), start, end, func(i int) time.Time { return all[i].OccurredAt })
	return slices.Clone(all[lo:hi]), nil
}

// window returns the [lo, hi) index span of a time-sorted slice whose
// timestamps fall inside [start, end]. An inverted range yields an empty span.
func window(n int, start, end time.Time, at func(int) time.Time) (int, int) {
	if end.Before(start) {
		return 0, 0
	}
	lo := sort.Search(n, func(i int) bool { return !at(i).Before(start) })
	hi := sort.Search(n, func(i int) bool { return at(i).After(end) })
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
