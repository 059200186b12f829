package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mbtaboard.org/internal/mbta"
	"mbtaboard.org/internal/registry"
	"mbtaboard.org/internal/utils"
)

// TrainSearchDays is how many service days a named-train search scans,
// starting today. Commuter rail numbers repeat daily, so the first day
// the train runs between the requested stops wins.
const TrainSearchDays = 7

// DateLayout is the service-date format the API's date filter expects.
const DateLayout = "2006-01-02"

// ErrTrainNotFound means no trip with the requested train name serves the
// requested stops within the search window.
var ErrTrainNotFound = errors.New("board: no matching train within the search window")

// TrainHandler looks up a single named train (a commuter rail train
// number) between a departure and an arrival stop.
type TrainHandler struct {
	client     *mbta.Client
	registries *registry.Registries
	resolver   *StopResolver
	reconciler *Reconciler
	logger     *slog.Logger

	// now is swapped out by tests.
	now func() time.Time
}

// NewTrainHandler returns a TrainHandler for the given stop-name pair.
func NewTrainHandler(client *mbta.Client, reg *registry.Registries, logger *slog.Logger, departureName, arrivalName string) *TrainHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "train_handler"))
	resolver := NewStopResolver(client, reg, logger, departureName, arrivalName)
	return &TrainHandler{
		client:     client,
		registries: reg,
		resolver:   resolver,
		reconciler: NewReconciler(client, reg, resolver, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// Registries exposes the entity registries backing this handler's trips.
func (h *TrainHandler) Registries() *registry.Registries {
	return h.registries
}

// Find scans the next TrainSearchDays service days for the named train
// and returns its trip between the handler's stops plus the service date
// it runs on. Live predictions are only applied for today; future days
// have none.
func (h *TrainHandler) Find(ctx context.Context, trainName string) (*Trip, time.Time, error) {
	if err := h.resolver.Resolve(ctx); err != nil {
		return nil, time.Time{}, err
	}
	stopIDs := utils.JoinIDs(h.resolver.AllIDs())

	today := h.now()
	for day := 0; day < TrainSearchDays; day++ {
		serviceDay := today.AddDate(0, 0, day)
		date := serviceDay.Format(DateLayout)

		trip, err := h.findOnDate(ctx, trainName, date, stopIDs, day == 0)
		if err != nil {
			h.logger.Warn("train search day failed",
				slog.String("train", trainName),
				slog.String("date", date),
				slog.String("error", err.Error()))
			continue
		}
		if trip != nil {
			return trip, serviceDay, nil
		}
	}
	return nil, time.Time{}, ErrTrainNotFound
}

func (h *TrainHandler) findOnDate(ctx context.Context, trainName, date, stopIDs string, today bool) (*Trip, error) {
	descriptors, _, err := h.client.FetchTrips(ctx, map[string]string{
		"filter[name]": trainName,
		"filter[date]": date,
	})
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, nil
	}

	tripIDs := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		h.registries.Trips.Put(descriptor.ID, descriptor)
		tripIDs = append(tripIDs, descriptor.ID)
	}
	tripFilter := utils.JoinIDs(tripIDs)

	schedules, _, err := h.client.FetchSchedules(ctx, map[string]string{
		"filter[trip]": tripFilter,
		"filter[stop]": stopIDs,
		"filter[date]": date,
		"sort":         paramSortDeparture,
	})
	if err != nil {
		return nil, err
	}

	trips := h.reconciler.Reconcile(ctx, make(map[string]*Trip), RecordsFromSchedules(schedules))

	if today {
		predictions, _, err := h.client.FetchPredictions(ctx, map[string]string{
			"filter[trip]":    tripFilter,
			"filter[stop]":    stopIDs,
			"filter[revenue]": paramRevenueOnly,
			"sort":            paramSortDeparture,
		})
		if err != nil {
			h.logger.Warn("fetching train predictions failed, using schedule only",
				slog.String("train", trainName),
				slog.String("error", err.Error()))
		} else {
			trips = h.reconciler.Reconcile(ctx, trips, RecordsFromPredictions(predictions))
		}
	}

	board := FilterSort(trips, h.registries, FilterOptions{
		RequireBothStops: true,
		SortBy:           SlotDeparture,
	})
	if len(board) == 0 {
		return nil, nil
	}
	return board[0], nil
}
