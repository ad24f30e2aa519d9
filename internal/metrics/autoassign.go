package metrics

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"eprescription-dashboard/internal/model"
	"eprescription-dashboard/internal/parse"
)

// Auto-assignment policies for the per-shipment isAutoAssignable flag.
const (
	PolicyStatic       = "static"
	PolicyLegacyRandom = "legacy-random"
)

// AutoAssigner decides whether a shipment type is open to auto-assignment.
type AutoAssigner func(shipmentType string) bool

// StaticAutoAssigner flags priority lanes only. The answer depends on the
// shipment type alone, so repeated queries agree.
func StaticAutoAssigner() AutoAssigner {
	flags := make(map[string]bool, len(model.ShipmentTypes))
	for _, label := range model.ShipmentTypes {
		st, err := parse.ParseShipmentType(label)
		flags[label] = err == nil && st.Priority
	}
	return func(shipmentType string) bool {
		if v, ok := flags[shipmentType]; ok {
			return v
		}
		st, err := parse.ParseShipmentType(shipmentType)
		return err == nil && st.Priority
	}
}

// LegacyRandomAutoAssigner reproduces the historical dashboard: priority
// lanes are always auto-assignable and every other lane flips a coin on each
// call.
func LegacyRandomAutoAssigner(rng *rand.Rand) AutoAssigner {
	var mu sync.Mutex
	return func(shipmentType string) bool {
		if strings.Contains(shipmentType, "Priority") {
			return true
		}
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64() > 0.5
	}
}

// NewAutoAssigner builds the assigner for a configured policy name.
func NewAutoAssigner(policy string, rng *rand.Rand) (AutoAssigner, error) {
	switch policy {
	case "", PolicyStatic:
		return StaticAutoAssigner(), nil
	case PolicyLegacyRandom:
		if rng == nil {
			return nil, fmt.Errorf("policy %q needs a random source", policy)
		}
		return LegacyRandomAutoAssigner(rng), nil
	default:
		return nil, fmt.Errorf("unknown auto-assign policy %q", policy)
	}
}
