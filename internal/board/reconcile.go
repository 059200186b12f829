package board

import (
	"context"
	"log/slog"

	"mbtaboard.org/internal/mbta"
	"mbtaboard.org/internal/registry"
)

// Reconciler folds ordered batches of schedule and prediction records into
// a keyed map of trip aggregates. It is not safe for concurrent use on the
// same trip map; the owning handler serializes update cycles.
type Reconciler struct {
	client     *mbta.Client
	registries *registry.Registries
	resolver   *StopResolver
	logger     *slog.Logger
}

// NewReconciler returns a Reconciler bound to a resolver's stop-ID sets.
func NewReconciler(client *mbta.Client, reg *registry.Registries, resolver *StopResolver, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		client:     client,
		registries: reg,
		resolver:   resolver,
		logger:     logger.With(slog.String("component", "reconciler")),
	}
}

// Reconcile applies records to trips in input order and returns the same
// map. Within one update cycle the caller applies the full schedule batch
// before any prediction batch, so live revisions always land on top of
// the static plan.
func (r *Reconciler) Reconcile(ctx context.Context, trips map[string]*Trip, records []Record) map[string]*Trip {
	for _, rec := range records {
		if rec.TripID == "" {
			continue
		}

		// A terminal prediction removes the trip outright.
		if rec.IsTerminal() {
			if _, ok := trips[rec.TripID]; ok {
				delete(trips, rec.TripID)
				r.logger.Debug("trip removed by prediction",
					slog.String("trip_id", rec.TripID),
					slog.String("relationship", rec.ScheduleRelationship))
			}
			continue
		}

		trip, ok := trips[rec.TripID]
		if !ok {
			trip = NewTrip(rec.TripID)
		}

		r.attachRoute(ctx, trip, rec.RouteID)

		// Subway schedules trail reality around turnarounds; once the
		// trip's route is known to be light or heavy rail, only
		// predictions are applied. Some corner cases mix route types on
		// one trip ID, so the record is skipped rather than the batch.
		if rec.Source == SourceSchedule {
			if route, ok := trip.Route(r.registries); ok && route.Type.IsSubway() {
				trips[rec.TripID] = trip
				continue
			}
		}

		slot, ok := r.resolver.Side(rec.StopID)
		if !ok {
			// First sight of an unmapped stop ID: resolve and classify it
			// once. Records for stops on neither side stay ignored.
			slot, ok = r.resolver.ClassifyByID(ctx, rec.StopID)
		}
		if ok {
			trip.ApplyRecord(slot, rec)
		}

		trips[rec.TripID] = trip
	}
	return trips
}

// attachRoute resolves and attaches the record's route the first time a
// trip sees one. Resolution failure degrades the trip (no route detail)
// instead of failing the batch.
func (r *Reconciler) attachRoute(ctx context.Context, trip *Trip, routeID string) {
	if trip.RouteID != "" || routeID == "" {
		return
	}
	if _, ok := r.registries.Routes.Get(routeID); ok {
		trip.RouteID = routeID
		return
	}
	route, _, err := r.client.FetchRoute(ctx, routeID)
	if err != nil {
		r.logger.Warn("could not resolve route",
			slog.String("route_id", routeID),
			slog.String("trip_id", trip.TripID),
			slog.String("error", err.Error()))
		return
	}
	r.registries.Routes.Put(route.ID, route)
	trip.RouteID = route.ID
}
