package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mbtaboard.org/internal/logging"
	"mbtaboard.org/internal/mbta"
	"mbtaboard.org/internal/metrics"
	"mbtaboard.org/internal/registry"
	"mbtaboard.org/internal/utils"
)

const (
	// paramSortDeparture asks the API to return entries in departure
	// order, which keeps reconciliation input deterministic.
	paramSortDeparture = "departure_time"

	// paramRevenueOnly limits predictions to revenue service. Non-revenue
	// movements (dead-heads, test trains) never belong on a board.
	paramRevenueOnly = "REVENUE"
)

// HandlerConfig configures a board Handler.
type HandlerConfig struct {
	// DepartureName and ArrivalName are the human stop names the board is
	// built between. Either may be empty for single-ended boards.
	DepartureName string
	ArrivalName   string

	Filter FilterOptions
}

// Handler runs full board update cycles: resolve stops, fetch and
// reconcile scheduling data, enrich trips with descriptors, vehicles and
// alerts, then filter and sort for display. Cycles are serialized; the
// fetches within one cycle fan out concurrently.
type Handler struct {
	client     *mbta.Client
	registries *registry.Registries
	resolver   *StopResolver
	reconciler *Reconciler
	logger     *slog.Logger
	collector  *metrics.Collector
	filter     FilterOptions

	mu sync.Mutex

	// scheduleTrips is the schedule-only snapshot for the current payload
	// timestamp. Predictions are reapplied to a copy of it every cycle, so
	// an unchanged schedule payload is never reprocessed.
	scheduleTrips map[string]*Trip
	scheduleStamp time.Time

	// lastGood is the most recent successfully built board, returned when
	// a refresh fails outright.
	lastGood []*Trip
}

// NewHandler returns a Handler for the given stop-name pair.
func NewHandler(client *mbta.Client, reg *registry.Registries, logger *slog.Logger, collector *metrics.Collector, cfg HandlerConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "board_handler"),
		slog.String("departure", cfg.DepartureName),
		slog.String("arrival", cfg.ArrivalName),
	)
	resolver := NewStopResolver(client, reg, logger, cfg.DepartureName, cfg.ArrivalName)
	return &Handler{
		client:     client,
		registries: reg,
		resolver:   resolver,
		reconciler: NewReconciler(client, reg, resolver, logger),
		logger:     logger,
		collector:  collector,
		filter:     cfg.Filter,
	}
}

// Registries exposes the entity registries backing this handler's trips.
func (h *Handler) Registries() *registry.Registries {
	return h.registries
}

// Refresh runs one full update cycle and returns the board. On failure it
// returns the last successfully built board alongside the error, so a
// transient upstream outage degrades to stale data instead of a blank
// screen.
func (h *Handler) Refresh(ctx context.Context) ([]*Trip, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	started := time.Now()
	board, err := h.refresh(ctx)
	elapsed := time.Since(started)

	if err != nil {
		h.countRefresh("error", elapsed)
		h.logger.Error("board refresh failed",
			slog.String("error", err.Error()),
			slog.Int("stale_trips", len(h.lastGood)))
		return h.lastGood, err
	}

	h.countRefresh("ok", elapsed)
	if h.collector != nil {
		h.collector.TripsReturned.Set(float64(len(board)))
	}
	logging.LogOperation(h.logger, "board refreshed",
		slog.Int("trips", len(board)),
		slog.Duration("duration", elapsed))
	h.lastGood = board
	return board, nil
}

func (h *Handler) refresh(ctx context.Context) ([]*Trip, error) {
	if err := h.resolver.Resolve(ctx); err != nil {
		return nil, err
	}

	trips, err := h.updateScheduling(ctx)
	if err != nil {
		return nil, err
	}
	h.updateDetails(ctx, trips)

	return FilterSort(trips, h.registries, h.filter), nil
}

// updateScheduling fetches the schedule and prediction batches
// concurrently, then reconciles them in order: the full schedule batch
// first, predictions on top. When the schedule payload timestamp has not
// moved since the last cycle the schedule pass is skipped and the cached
// snapshot is reused.
func (h *Handler) updateScheduling(ctx context.Context) (map[string]*Trip, error) {
	stopIDs := utils.JoinIDs(h.resolver.AllIDs())

	var (
		wg sync.WaitGroup

		schedules  []Record
		schedStamp time.Time
		schedErr   error

		predictions []Record
		predErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		batch, stamp, err := h.client.FetchSchedules(ctx, map[string]string{
			"filter[stop]": stopIDs,
			"sort":         paramSortDeparture,
		})
		schedules, schedStamp, schedErr = RecordsFromSchedules(batch), stamp, err
	}()
	go func() {
		defer wg.Done()
		batch, _, err := h.client.FetchPredictions(ctx, map[string]string{
			"filter[stop]":    stopIDs,
			"filter[revenue]": paramRevenueOnly,
			"sort":            paramSortDeparture,
		})
		predictions, predErr = RecordsFromPredictions(batch), err
	}()
	wg.Wait()

	if schedErr != nil {
		return nil, fmt.Errorf("fetching schedules: %w", schedErr)
	}

	if h.scheduleTrips == nil || !schedStamp.Equal(h.scheduleStamp) {
		snapshot := h.reconciler.Reconcile(ctx, make(map[string]*Trip), schedules)
		h.scheduleTrips = snapshot
		h.scheduleStamp = schedStamp
		h.logger.Debug("schedule snapshot rebuilt",
			slog.Int("records", len(schedules)),
			slog.Int("trips", len(snapshot)),
			slog.Time("payload_timestamp", schedStamp))
	}

	trips := cloneTrips(h.scheduleTrips)

	if predErr != nil {
		// Predictions degrade: the board falls back to schedule times.
		h.logger.Warn("fetching predictions failed, using schedule only",
			slog.String("error", predErr.Error()))
		return trips, nil
	}
	return h.reconciler.Reconcile(ctx, trips, predictions), nil
}

// updateDetails enriches reconciled trips with descriptors, live vehicle
// positions and relevant alerts. Every enrichment degrades per trip; a
// board with a missing vehicle beats no board.
func (h *Handler) updateDetails(ctx context.Context, trips map[string]*Trip) {
	if len(trips) == 0 {
		return
	}

	tripIDs := make([]string, 0, len(trips))
	for id := range trips {
		tripIDs = append(tripIDs, id)
	}
	tripFilter := utils.JoinIDs(tripIDs)

	var (
		wg sync.WaitGroup

		vehicleByTrip map[string]string
		alertIDsFor   func(*Trip) []string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vehicles, _, err := h.client.FetchVehicles(ctx, map[string]string{
			"filter[trip]": tripFilter,
		})
		if err != nil {
			h.logger.Warn("fetching vehicles failed",
				slog.String("error", err.Error()))
			return
		}
		byTrip := make(map[string]string, len(vehicles))
		for _, vehicle := range vehicles {
			h.registries.Vehicles.Put(vehicle.ID, vehicle)
			if vehicle.TripID != "" {
				byTrip[vehicle.TripID] = vehicle.ID
			}
		}
		vehicleByTrip = byTrip
	}()
	go func() {
		defer wg.Done()
		alerts, _, err := h.client.FetchAlerts(ctx, map[string]string{
			"filter[stop]": utils.JoinIDs(h.resolver.AllIDs()),
			"filter[trip]": tripFilter,
		})
		if err != nil {
			h.logger.Warn("fetching alerts failed",
				slog.String("error", err.Error()))
			return
		}
		alertIDsFor = func(trip *Trip) []string {
			relevant := RelevantAlerts(alerts, trip, h.registries)
			ids := make([]string, 0, len(relevant))
			for _, alert := range relevant {
				h.registries.Alerts.Put(alert.ID, alert)
				ids = append(ids, alert.ID)
			}
			return ids
		}
	}()
	wg.Wait()

	for _, trip := range trips {
		h.attachDescriptor(ctx, trip)
		if vehicleByTrip != nil {
			if vehicleID, ok := vehicleByTrip[trip.TripID]; ok {
				trip.VehicleID = vehicleID
			}
		}
		if alertIDsFor != nil {
			trip.AlertIDs = alertIDsFor(trip)
		}
	}
}

// attachDescriptor makes sure the trip's upstream descriptor is in the
// registry, fetching it once per service day when missing.
func (h *Handler) attachDescriptor(ctx context.Context, trip *Trip) {
	if _, ok := h.registries.Trips.Get(trip.TripID); ok {
		return
	}
	descriptor, _, err := h.client.FetchTrip(ctx, trip.TripID)
	if err != nil {
		h.logger.Warn("could not resolve trip descriptor",
			slog.String("trip_id", trip.TripID),
			slog.String("error", err.Error()))
		return
	}
	h.registries.Trips.Put(descriptor.ID, descriptor)
}

func (h *Handler) countRefresh(result string, elapsed time.Duration) {
	if h.collector == nil {
		return
	}
	h.collector.BoardRefreshes.WithLabelValues(result).Inc()
	h.collector.RefreshDuration.Observe(elapsed.Seconds())
}

// cloneTrips deep-copies a trip map so prediction passes never mutate the
// schedule-only snapshot they start from.
func cloneTrips(trips map[string]*Trip) map[string]*Trip {
	out := make(map[string]*Trip, len(trips))
	for id, trip := range trips {
		copied := *trip
		if trip.Departure != nil {
			departure := *trip.Departure
			copied.Departure = &departure
		}
		if trip.Arrival != nil {
			arrival := *trip.Arrival
			copied.Arrival = &arrival
		}
		copied.AlertIDs = append([]string(nil), trip.AlertIDs...)
		out[id] = &copied
	}
	return out
}
