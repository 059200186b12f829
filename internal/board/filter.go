package board

import (
	"sort"
	"time"

	"mbtaboard.org/internal/registry"
)

const (
	// FilterGrace keeps recently departed or arrived trips visible for a
	// short while when only schedule adherence is available.
	FilterGrace = 10 * time.Minute

	// VehicleGrace is the tighter window used when the vehicle's own
	// stop sequence confirms the trip is past a stop. GPS-derived
	// sequence beats schedule adherence near the boundary.
	VehicleGrace = time.Minute

	// DefaultMaxTrips caps the board length.
	DefaultMaxTrips = 50
)

// FilterOptions controls post-processing of a reconciled trip map.
type FilterOptions struct {
	RemoveDeparted   bool
	RequireBothStops bool
	SortBy           Slot
	MaxTrips         int

	// Now overrides the clock, for tests. Zero means time.Now.
	Now time.Time
}

// FilterSort drops incomplete, wrong-direction and expired trips, applies
// the vehicle-position override, sorts ascending by the chosen slot's
// effective time and truncates to the maximum board length. Trips without
// a stop at the sort slot never board; trips whose stop exists but has no
// time sort last, a year in the future.
func FilterSort(trips map[string]*Trip, reg *registry.Registries, opts FilterOptions) []*Trip {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	maxTrips := opts.MaxTrips
	if maxTrips <= 0 {
		maxTrips = DefaultMaxTrips
	}

	kept := make([]*Trip, 0, len(trips))
	for _, trip := range trips {
		if keepTrip(trip, reg, opts, now) {
			kept = append(kept, trip)
		}
	}

	farFuture := now.AddDate(1, 0, 0)
	sortKey := func(t *Trip) time.Time {
		stop := t.Stop(opts.SortBy)
		if stop == nil || stop.Time().IsZero() {
			return farFuture
		}
		return stop.Time()
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return sortKey(kept[i]).Before(sortKey(kept[j]))
	})

	if len(kept) > maxTrips {
		kept = kept[:maxTrips]
	}
	return kept
}

func keepTrip(trip *Trip, reg *registry.Registries, opts FilterOptions, now time.Time) bool {
	departure := trip.Departure
	arrival := trip.Arrival

	// The trip map also holds trips whose slot application was skipped
	// (subway schedule entries, foreign stops). A trip with no stop at
	// the queried slot has nothing to show on this board.
	if trip.Stop(opts.SortBy) == nil {
		return false
	}

	if opts.RequireBothStops {
		if departure == nil || arrival == nil {
			return false
		}
		// Wrong direction or malformed: the departure must come first.
		if departure.StopSequence > arrival.StopSequence {
			return false
		}
	}

	if opts.RemoveDeparted && departure != nil && !departure.Time().IsZero() &&
		departure.Time().Before(now.Add(-FilterGrace)) {
		return false
	}
	// An already-arrived trip is useless regardless of the flag.
	if arrival != nil && !arrival.Time().IsZero() && arrival.Time().Before(now.Add(-FilterGrace)) {
		return false
	}

	// Vehicle position override: the vehicle's reported stop sequence is
	// ground truth for departed/arrived, with a tighter grace window.
	if vehicle, ok := trip.Vehicle(reg); ok && vehicle.CurrentStopSequence > 0 {
		vseq := vehicle.CurrentStopSequence
		if opts.RemoveDeparted && departure != nil &&
			vseq > departure.StopSequence &&
			departure.Time().Before(now.Add(-VehicleGrace)) {
			return false
		}
		if arrival != nil && !arrival.Time().IsZero() &&
			vseq >= arrival.StopSequence &&
			arrival.Time().Before(now.Add(-VehicleGrace)) {
			return false
		}
	}

	return true
}
