package board

import (
	"log/slog"

	"mbtaboard.org/internal/mbta"
	"mbtaboard.org/internal/metrics"
	"mbtaboard.org/internal/registry"
)

// NewDeparturesHandler returns a Handler showing everything leaving one
// stop. Trips only need the departure slot filled, and already-departed
// trips drop off.
func NewDeparturesHandler(client *mbta.Client, reg *registry.Registries, logger *slog.Logger, collector *metrics.Collector, stopName string) *Handler {
	return NewHandler(client, reg, logger, collector, HandlerConfig{
		DepartureName: stopName,
		Filter: FilterOptions{
			RemoveDeparted: true,
			SortBy:         SlotDeparture,
		},
	})
}

// NewArrivalsHandler returns a Handler showing everything arriving at one
// stop. Already-arrived trips drop off unconditionally, so no extra
// filtering is needed beyond the arrival sort.
func NewArrivalsHandler(client *mbta.Client, reg *registry.Registries, logger *slog.Logger, collector *metrics.Collector, stopName string) *Handler {
	return NewHandler(client, reg, logger, collector, HandlerConfig{
		ArrivalName: stopName,
		Filter: FilterOptions{
			SortBy: SlotArrival,
		},
	})
}

// NewJourneyHandler returns a Handler for the classic two-ended board:
// trips serving the departure stop before the arrival stop, sorted by
// departure.
func NewJourneyHandler(client *mbta.Client, reg *registry.Registries, logger *slog.Logger, collector *metrics.Collector, departureName, arrivalName string) *Handler {
	return NewHandler(client, reg, logger, collector, HandlerConfig{
		DepartureName: departureName,
		ArrivalName:   arrivalName,
		Filter: FilterOptions{
			RemoveDeparted:   true,
			RequireBothStops: true,
			SortBy:           SlotDeparture,
		},
	})
}
