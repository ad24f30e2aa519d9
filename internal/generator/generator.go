package generator

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"eprescription-dashboard/internal/model"
)

const (
	workProbability    = 0.9
	minOrdersPerDay    = 20
	maxOrdersPerDay    = 50
	minHandlingMinutes = 5
	maxHandlingMinutes = 30
)

// Options controls the shape of the generated dataset.
type Options struct {
	Doctors     []string
	DaysHistory int
	DaysFuture  int
	Location    *time.Location
	Rand        *rand.Rand
}

// NewRand returns a PRNG for the given seed. A zero seed is replaced by the
// current time so every process start gets a different dataset.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate builds the synthetic dataset for a window running from DaysFuture
// days after now back to DaysHistory days before it.
func Generate(now time.Time, opts Options) *model.Snapshot {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(0)
	}
	now = now.In(loc)

	snap := &model.Snapshot{
		ID:          uuid.New(),
		GeneratedAt: now,
		Location:    loc,
		Doctors:     make([]model.Doctor, 0, len(opts.Doctors)),
	}

	for i, name := range opts.Doctors {
		snap.Doctors = append(snap.Doctors, model.Doctor{
			ID:            int64(i + 1),
			Name:          name,
			CurrentStatus: model.DoctorStatuses[rng.IntN(len(model.DoctorStatuses))],
		})
	}

	var sessionID int64
	for i := -opts.DaysFuture; i < opts.DaysHistory; i++ {
		day := time.Date(now.Year(), now.Month(), now.Day()-i, 0, 0, 0, 0, loc)

		for _, doctor := range snap.Doctors {
			if rng.Float64() >= workProbability {
				continue
			}

			sessionID++
			session := newSession(rng, sessionID, doctor.ID, day)
			snap.Sessions = append(snap.Sessions, session)

			count := minOrdersPerDay + rng.IntN(maxOrdersPerDay-minOrdersPerDay+1)
			for j := 0; j < count; j++ {
				snap.Orders = append(snap.Orders, newOrder(rng, fmt.Sprintf("%d-%d-%d", doctor.ID, i, j), session))
			}
		}
	}

	log.Printf("Generated dataset %s: %d doctors, %d sessions, %d orders",
		snap.ID, len(snap.Doctors), len(snap.Sessions), len(snap.Orders))
	return snap
}

// newSession draws a login in [08:00, 10:00) and a length in [6h, 10h).
func newSession(rng *rand.Rand, id, doctorID int64, day time.Time) model.Session {
	login := day.Add(time.Duration(8+rng.IntN(2))*time.Hour + time.Duration(rng.IntN(60))*time.Minute)
	length := time.Duration(6*60+rng.IntN(4*60)) * time.Minute
	return model.Session{
		ID:         id,
		DoctorID:   doctorID,
		LoginTime:  login,
		LogoffTime: login.Add(length),
	}
}

func newOrder(rng *rand.Rand, id string, session model.Session) model.Order {
	offset := time.Duration(rng.IntN(int(session.Duration()/time.Minute))) * time.Minute

	return model.Order{
		ID:                     id,
		DoctorID:               session.DoctorID,
		OccurredAt:             session.LoginTime.Add(offset),
		DurationMinutes:        minHandlingMinutes + rng.IntN(maxHandlingMinutes-minHandlingMinutes+1),
		ShipmentType:           model.ShipmentTypes[rng.IntN(len(model.ShipmentTypes))],
		Status:                 drawStatus(rng.Float64()),
		AssignType:             drawAssignType(rng.Float64()),
		AssignDelayMinutes:     rng.IntN(11),
		StartDelayMinutes:      rng.IntN(16),
		ResponseTimeoutMinutes: 10 + rng.IntN(21),
	}
}

// drawStatus maps a uniform draw onto Completed/Pending/Unclaimed at 90/5/5.
func drawStatus(r float64) model.OrderStatus {
	switch {
	case r >= 0.95:
		return model.StatusUnclaimed
	case r >= 0.90:
		return model.StatusPending
	default:
		return model.StatusCompleted
	}
}

// drawAssignType maps a uniform draw onto Auto/Manual/Reassigned at 80/5/15.
func drawAssignType(r float64) model.AssignType {
	switch {
	case r >= 0.85:
		return model.AssignReassigned
	case r >= 0.80:
		return model.AssignManual
	default:
		return model.AssignAuto
	}
}
