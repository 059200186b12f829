package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mbtaboard.org/internal/mbta"
	"mbtaboard.org/internal/models"
	"mbtaboard.org/internal/registry"
)

// ErrUnknownStop means a requested stop name matched no MBTA stop.
var ErrUnknownStop = errors.New("board: no stop matches the given name")

// resolvedStops is the memoized output of a name resolution: the
// platform-level stop IDs per slot plus the stop entities themselves, so
// a fresh registry can be repopulated on a cache hit.
type resolvedStops struct {
	IDs   map[Slot][]string
	Stops []models.Stop
}

// StopResolver maps human stop names to the platform-level stop IDs that
// share that name. Stations expose several stop IDs (one per platform);
// schedule and prediction records reference the platform IDs, so the
// board needs the full set per side.
type StopResolver struct {
	client     *mbta.Client
	registries *registry.Registries
	logger     *slog.Logger

	names map[Slot]string
	ids   map[Slot][]string
	sides map[string]Slot

	// tried holds stop IDs the on-demand fallback already looked up, so
	// each unknown ID costs at most one fetch.
	tried map[string]struct{}
}

// NewStopResolver returns a resolver for a departure/arrival stop-name
// pair. Either name may be empty when the caller only queries one side.
func NewStopResolver(client *mbta.Client, reg *registry.Registries, logger *slog.Logger, departureName, arrivalName string) *StopResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &StopResolver{
		client:     client,
		registries: reg,
		logger:     logger.With(slog.String("component", "stop_resolver")),
		names: map[Slot]string{
			SlotDeparture: departureName,
			SlotArrival:   arrivalName,
		},
		ids:   map[Slot][]string{},
		sides: map[string]Slot{},
		tried: map[string]struct{}{},
	}
}

// Resolve populates the ID sets from the stops endpoint. The decoded
// resolution is memoized per service day in the result cache tier.
func (r *StopResolver) Resolve(ctx context.Context) error {
	memoKey := "stop-resolution/" + strings.ToLower(r.names[SlotDeparture]) + "|" + strings.ToLower(r.names[SlotArrival])

	if value, _, ok := r.client.Cache().GetResult(memoKey); ok {
		if resolved, ok := value.(resolvedStops); ok {
			r.install(resolved)
			return nil
		}
	}

	stops, _, err := r.client.FetchStops(ctx, map[string]string{
		"filter[location_type]": "0",
	})
	if err != nil {
		return fmt.Errorf("resolving stops: %w", err)
	}

	resolved := resolvedStops{IDs: map[Slot][]string{}}
	for _, stop := range stops {
		for _, slot := range []Slot{SlotDeparture, SlotArrival} {
			if r.names[slot] != "" && strings.EqualFold(r.names[slot], stop.Name) {
				resolved.IDs[slot] = append(resolved.IDs[slot], stop.ID)
				resolved.Stops = append(resolved.Stops, stop)
			}
		}
	}

	for _, slot := range []Slot{SlotDeparture, SlotArrival} {
		if r.names[slot] != "" && len(resolved.IDs[slot]) == 0 {
			return fmt.Errorf("%w: %q", ErrUnknownStop, r.names[slot])
		}
	}

	r.install(resolved)
	r.client.Cache().PutResult(memoKey, resolved, time.Now())
	return nil
}

func (r *StopResolver) install(resolved resolvedStops) {
	for _, stop := range resolved.Stops {
		r.registries.Stops.Put(stop.ID, stop)
	}
	for slot, ids := range resolved.IDs {
		r.ids[slot] = ids
		for _, id := range ids {
			r.sides[id] = slot
		}
	}
}

// Side classifies a stop ID as departure-side or arrival-side.
func (r *StopResolver) Side(stopID string) (Slot, bool) {
	slot, ok := r.sides[stopID]
	return slot, ok
}

// IDs returns the stop IDs resolved for one slot.
func (r *StopResolver) IDs(slot Slot) []string {
	return r.ids[slot]
}

// AllIDs returns the departure-side IDs followed by the arrival-side IDs.
func (r *StopResolver) AllIDs() []string {
	all := make([]string, 0, len(r.ids[SlotDeparture])+len(r.ids[SlotArrival]))
	all = append(all, r.ids[SlotDeparture]...)
	all = append(all, r.ids[SlotArrival]...)
	return all
}

// ClassifyByID is the on-demand fallback for a record whose stop ID was
// not part of the resolved sets: fetch the stop once, match its name
// against the requested names, and fold it into the right side. Returns
// false for stop IDs that belong to neither endpoint.
func (r *StopResolver) ClassifyByID(ctx context.Context, stopID string) (Slot, bool) {
	if slot, ok := r.sides[stopID]; ok {
		return slot, true
	}
	if _, tried := r.tried[stopID]; tried {
		return 0, false
	}
	r.tried[stopID] = struct{}{}

	stop, _, err := r.client.FetchStop(ctx, stopID)
	if err != nil {
		r.logger.Warn("could not resolve stop for classification",
			slog.String("stop_id", stopID),
			slog.String("error", err.Error()))
		return 0, false
	}

	for _, slot := range []Slot{SlotDeparture, SlotArrival} {
		if r.names[slot] != "" && strings.EqualFold(r.names[slot], stop.Name) {
			r.registries.Stops.Put(stop.ID, stop)
			r.ids[slot] = append(r.ids[slot], stop.ID)
			r.sides[stop.ID] = slot
			return slot, true
		}
	}
	return 0, false
}
