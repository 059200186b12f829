package board

import (
	"sort"

	"mbtaboard.org/internal/models"
	"mbtaboard.org/internal/registry"
	"mbtaboard.org/internal/utils"
)

// minAlertSeverity is the severity an alert must exceed to be attached.
// Severity 1 alerts are informational noise on a departures board.
const minAlertSeverity = 1

// AlertIsRelevant decides whether an alert applies to a trip. It does when
// any informed entity matches the trip at the route, trip, or stop level
// and the alert is active at the trip's departure or arrival time.
func AlertIsRelevant(alert models.Alert, trip *Trip, reg *registry.Registries) bool {
	departureID := trip.StopID(SlotDeparture)
	arrivalID := trip.StopID(SlotArrival)
	departureTime := trip.DepartureTime()
	arrivalTime := trip.ArrivalTime()

	activeForTrip := (!departureTime.IsZero() && alert.ActiveAt(departureTime)) ||
		(!arrivalTime.IsZero() && alert.ActiveAt(arrivalTime))
	if !activeForTrip {
		return false
	}

	descriptor, haveDescriptor := trip.Descriptor(reg)

	for _, entity := range alert.InformedEntities {
		routeLevel := trip.RouteID != "" &&
			entity.RouteID == trip.RouteID &&
			entity.StopID == "" &&
			entity.TripID == "" &&
			(entity.DirectionID == nil ||
				(haveDescriptor && *entity.DirectionID == descriptor.DirectionID))

		tripLevel := entity.TripID != "" && entity.TripID == trip.TripID

		boardingStop := entity.StopID != "" && entity.StopID == departureID &&
			utils.ContainsFold(entity.Activities, models.AlertActivityBoard)

		exitingStop := entity.StopID != "" && entity.StopID == arrivalID &&
			utils.ContainsFold(entity.Activities, models.AlertActivityExit)

		if routeLevel || tripLevel || boardingStop || exitingStop {
			return true
		}
	}
	return false
}

// RelevantAlerts filters alerts down to those applying to the trip,
// deduplicated by ID and ranked by severity, descending.
func RelevantAlerts(alerts []models.Alert, trip *Trip, reg *registry.Registries) []models.Alert {
	seen := make(map[string]struct{}, len(alerts))
	relevant := make([]models.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if _, dup := seen[alert.ID]; dup {
			continue
		}
		if alert.Severity > minAlertSeverity && AlertIsRelevant(alert, trip, reg) {
			seen[alert.ID] = struct{}{}
			relevant = append(relevant, alert)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Severity > relevant[j].Severity
	})
	return relevant
}
