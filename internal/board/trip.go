// Package board builds the departures board: it reconciles schedule and
// prediction records into trip aggregates, enriches them with routes,
// vehicles and alerts, and filters and sorts them for display.
package board

import (
	"time"

	"mbtaboard.org/internal/models"
	"mbtaboard.org/internal/registry"
)

// Slot is the role a stop plays within a trip.
type Slot int

const (
	SlotDeparture Slot = iota
	SlotArrival
)

func (s Slot) String() string {
	if s == SlotArrival {
		return "arrival"
	}
	return "departure"
}

// State is a trip's position in its build lifecycle.
type State int

const (
	StatePending  State = iota // created, no stops yet
	StatePartial               // one slot filled
	StateComplete              // both slots filled with a valid sequence
)

// StopTime carries a scheduled time and its live revision. The first
// record to name the time sets Original; every later record revises
// Updated, so the last applied value wins per field.
type StopTime struct {
	Original time.Time
	Updated  time.Time
}

// Apply folds in a new value for this time.
func (t *StopTime) Apply(value time.Time) {
	if value.IsZero() {
		return
	}
	if t.Original.IsZero() {
		t.Original = value
		return
	}
	t.Updated = value
}

// Effective returns the live revision when present, else the original.
func (t StopTime) Effective() time.Time {
	if !t.Updated.IsZero() {
		return t.Updated
	}
	return t.Original
}

// Delay returns updated minus original. The second return value is false
// unless both exist.
func (t StopTime) Delay() (time.Duration, bool) {
	if t.Original.IsZero() || t.Updated.IsZero() {
		return 0, false
	}
	return t.Updated.Sub(t.Original), true
}

// TripStop is one of the two stop slots of a trip.
type TripStop struct {
	Slot         Slot
	StopID       string
	StopSequence int
	Arrival      StopTime
	Departure    StopTime
	Status       string // live status string from the latest prediction
	Uncertainty  int    // prediction uncertainty code for this slot's time
}

// Time returns the most relevant time for the stop: the live arrival or
// departure revision when present, else the original arrival or departure.
func (s *TripStop) Time() time.Time {
	switch {
	case !s.Arrival.Updated.IsZero():
		return s.Arrival.Updated
	case !s.Departure.Updated.IsZero():
		return s.Departure.Updated
	case !s.Arrival.Original.IsZero():
		return s.Arrival.Original
	default:
		return s.Departure.Original
	}
}

// Delay returns the stop's live delay, preferring the arrival time's.
func (s *TripStop) Delay() (time.Duration, bool) {
	if d, ok := s.Arrival.Delay(); ok {
		return d, ok
	}
	return s.Departure.Delay()
}

func (s *TripStop) apply(rec Record) {
	s.StopID = rec.StopID
	s.StopSequence = rec.StopSequence
	s.Arrival.Apply(rec.ArrivalTime)
	s.Departure.Apply(rec.DepartureTime)
	if rec.Source != SourcePrediction {
		return
	}
	if rec.Status != "" {
		s.Status = rec.Status
	}
	switch {
	case s.Slot == SlotArrival && rec.ArrivalUncertainty != 0:
		s.Uncertainty = rec.ArrivalUncertainty
	case s.Slot == SlotDeparture && rec.DepartureUncertainty != 0:
		s.Uncertainty = rec.DepartureUncertainty
	}
}

// Trip is the aggregate the board is made of: one real-world vehicle run
// between the departure and arrival stops the caller asked about. It
// holds entity IDs only; the entities live in the registries.
type Trip struct {
	TripID    string
	RouteID   string
	VehicleID string
	AlertIDs  []string

	Departure *TripStop
	Arrival   *TripStop
}

// NewTrip returns an empty trip aggregate for an upstream trip ID.
func NewTrip(tripID string) *Trip {
	return &Trip{TripID: tripID}
}

// Stop returns the trip's stop for the given slot, or nil.
func (t *Trip) Stop(slot Slot) *TripStop {
	if slot == SlotArrival {
		return t.Arrival
	}
	return t.Departure
}

// StopID returns the stop entity ID filling the given slot, or "".
func (t *Trip) StopID(slot Slot) string {
	if stop := t.Stop(slot); stop != nil {
		return stop.StopID
	}
	return ""
}

// ApplyRecord creates or updates the stop slot for a record. A slot is
// never duplicated: once both slots exist they are only updated in place.
func (t *Trip) ApplyRecord(slot Slot, rec Record) {
	stop := t.Stop(slot)
	if stop == nil {
		stop = &TripStop{Slot: slot}
		if slot == SlotArrival {
			t.Arrival = stop
		} else {
			t.Departure = stop
		}
	}
	stop.apply(rec)
}

// State reports the trip's lifecycle state. A trip with both slots but a
// departure sequence past its arrival sequence never reaches
// StateComplete: it is running the wrong direction for the query.
func (t *Trip) State() State {
	switch {
	case t.Departure == nil && t.Arrival == nil:
		return StatePending
	case t.Departure == nil || t.Arrival == nil:
		return StatePartial
	case t.Departure.StopSequence <= t.Arrival.StopSequence:
		return StateComplete
	default:
		return StatePartial
	}
}

// Route dereferences the trip's route.
func (t *Trip) Route(reg *registry.Registries) (models.Route, bool) {
	if t.RouteID == "" {
		return models.Route{}, false
	}
	return reg.Routes.Get(t.RouteID)
}

// Descriptor dereferences the trip's upstream descriptor.
func (t *Trip) Descriptor(reg *registry.Registries) (models.TripDescriptor, bool) {
	if t.TripID == "" {
		return models.TripDescriptor{}, false
	}
	return reg.Trips.Get(t.TripID)
}

// Vehicle dereferences the trip's live vehicle, if one is assigned.
func (t *Trip) Vehicle(reg *registry.Registries) (models.Vehicle, bool) {
	if t.VehicleID == "" {
		return models.Vehicle{}, false
	}
	return reg.Vehicles.Get(t.VehicleID)
}

// Alerts dereferences the trip's attached alerts, in ranked order.
func (t *Trip) Alerts(reg *registry.Registries) []models.Alert {
	alerts := make([]models.Alert, 0, len(t.AlertIDs))
	for _, id := range t.AlertIDs {
		if alert, ok := reg.Alerts.Get(id); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

// DepartureTime returns the effective departure time, or zero.
func (t *Trip) DepartureTime() time.Time {
	if t.Departure == nil {
		return time.Time{}
	}
	return t.Departure.Time()
}

// ArrivalTime returns the effective arrival time, or zero.
func (t *Trip) ArrivalTime() time.Time {
	if t.Arrival == nil {
		return time.Time{}
	}
	return t.Arrival.Time()
}
