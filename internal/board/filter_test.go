package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtaboard.org/internal/models"
	"mbtaboard.org/internal/registry"
)

func journeyTrip(id string, depSeq, arrSeq int, dep, arr time.Time) *Trip {
	trip := NewTrip(id)
	trip.ApplyRecord(SlotDeparture, Record{
		Source: SourceSchedule, TripID: id, StopID: "dep-1", StopSequence: depSeq, DepartureTime: dep,
	})
	trip.ApplyRecord(SlotArrival, Record{
		Source: SourceSchedule, TripID: id, StopID: "arr-1", StopSequence: arrSeq, ArrivalTime: arr,
	})
	return trip
}

func TestFilterSortRequiresBothStops(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()

	partial := NewTrip("partial")
	partial.ApplyRecord(SlotDeparture, Record{StopID: "dep-1", StopSequence: 1, DepartureTime: at(10, 30)})

	trips := map[string]*Trip{
		"ok":      journeyTrip("ok", 1, 5, at(10, 30), at(11, 0)),
		"partial": partial,
	}

	board := FilterSort(trips, reg, FilterOptions{RequireBothStops: true, SortBy: SlotDeparture, Now: now})
	require.Len(t, board, 1)
	assert.Equal(t, "ok", board[0].TripID)
}

func TestFilterSortDropsTripsWithoutTheQueriedStop(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()

	// A subway schedule entry leaves its trip in the map with no stops at
	// all; a trip known only from the far end has no departure to show.
	pending := NewTrip("pending")
	arrivalOnly := NewTrip("arrival-only")
	arrivalOnly.ApplyRecord(SlotArrival, Record{
		Source: SourceSchedule, TripID: "arrival-only", StopID: "arr-1", StopSequence: 5, ArrivalTime: at(10, 40),
	})

	trips := map[string]*Trip{
		"pending":      pending,
		"arrival-only": arrivalOnly,
		"ok":           journeyTrip("ok", 1, 5, at(10, 30), at(11, 0)),
	}

	board := FilterSort(trips, reg, FilterOptions{RemoveDeparted: true, SortBy: SlotDeparture, Now: now})
	require.Len(t, board, 1)
	assert.Equal(t, "ok", board[0].TripID)

	// The same trips viewed as an arrivals board keep the far-end trip.
	board = FilterSort(trips, reg, FilterOptions{SortBy: SlotArrival, Now: now})
	require.Len(t, board, 2)
}

func TestFilterSortExcludesWrongDirection(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()

	// Departure sequence 5 after arrival sequence 3: the trip passes the
	// arrival stop before the departure stop.
	trips := map[string]*Trip{
		"wrong": journeyTrip("wrong", 5, 3, at(10, 30), at(11, 0)),
	}

	board := FilterSort(trips, reg, FilterOptions{RequireBothStops: true, SortBy: SlotDeparture, Now: now})
	assert.Empty(t, board)
}

func TestFilterSortDepartedGraceWindow(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()

	trips := map[string]*Trip{
		"recent": journeyTrip("recent", 1, 5, at(9, 55), at(10, 40)),  // 5 min gone, inside grace
		"gone":   journeyTrip("gone", 1, 5, at(9, 45), at(10, 40)),    // 15 min gone
		"future": journeyTrip("future", 1, 5, at(10, 15), at(10, 50)), // not yet departed
	}

	board := FilterSort(trips, reg, FilterOptions{RemoveDeparted: true, RequireBothStops: true, SortBy: SlotDeparture, Now: now})
	require.Len(t, board, 2)
	assert.Equal(t, "recent", board[0].TripID)
	assert.Equal(t, "future", board[1].TripID)
}

func TestFilterSortArrivedTripsAlwaysDrop(t *testing.T) {
	now := at(12, 0)
	reg := registry.New()

	trips := map[string]*Trip{
		"arrived": journeyTrip("arrived", 1, 5, at(11, 0), at(11, 30)),
	}

	// RemoveDeparted off: arrival in the past still removes the trip.
	board := FilterSort(trips, reg, FilterOptions{RequireBothStops: true, SortBy: SlotArrival, Now: now})
	assert.Empty(t, board)
}

func TestFilterSortVehicleOverrideTightensGrace(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()
	reg.Vehicles.Put("v1", models.Vehicle{
		ID:                  "v1",
		CurrentStatus:       models.VehicleStatusStoppedAt,
		CurrentStopSequence: 2,
		TripID:              "t1",
	})

	// Departed 2 minutes ago: inside the 10 minute schedule grace, but the
	// vehicle is already past the departure stop and 2 min beats the
	// 1 minute vehicle grace.
	trip := journeyTrip("t1", 1, 5, at(9, 58), at(10, 40))
	trip.VehicleID = "v1"

	board := FilterSort(map[string]*Trip{"t1": trip}, reg, FilterOptions{
		RemoveDeparted: true, RequireBothStops: true, SortBy: SlotDeparture, Now: now,
	})
	assert.Empty(t, board)
}

func TestFilterSortVehicleAtArrivalStopDropsTrip(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()
	reg.Vehicles.Put("v1", models.Vehicle{
		ID:                  "v1",
		CurrentStatus:       models.VehicleStatusStoppedAt,
		CurrentStopSequence: 5,
		TripID:              "t1",
	})

	// Arrived 2 minutes ago: inside the 10 minute schedule grace, but the
	// vehicle already sits at the arrival stop's sequence, so the tighter
	// grace applies. Equality counts as arrived on the arrival side.
	trip := journeyTrip("t1", 1, 5, at(9, 30), at(9, 58))
	trip.VehicleID = "v1"

	board := FilterSort(map[string]*Trip{"t1": trip}, reg, FilterOptions{
		RequireBothStops: true, SortBy: SlotArrival, Now: now,
	})
	assert.Empty(t, board)
}

func TestFilterSortVehicleBeforeStopKeepsTrip(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()
	reg.Vehicles.Put("v1", models.Vehicle{
		ID:                  "v1",
		CurrentStatus:       models.VehicleStatusInTransitTo,
		CurrentStopSequence: 1,
		TripID:              "t1",
	})

	// Vehicle still at or before the departure stop: the 10 minute grace
	// applies even though the scheduled departure is 2 minutes gone.
	trip := journeyTrip("t1", 1, 5, at(9, 58), at(10, 40))
	trip.VehicleID = "v1"

	board := FilterSort(map[string]*Trip{"t1": trip}, reg, FilterOptions{
		RemoveDeparted: true, RequireBothStops: true, SortBy: SlotDeparture, Now: now,
	})
	assert.Len(t, board, 1)
}

func TestFilterSortOrdersByEffectiveTimeWithMissingLast(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()

	noTime := NewTrip("no-time")
	noTime.ApplyRecord(SlotDeparture, Record{StopID: "dep-1", StopSequence: 1})

	trips := map[string]*Trip{
		"later":   journeyTrip("later", 1, 5, at(11, 0), at(11, 30)),
		"sooner":  journeyTrip("sooner", 1, 5, at(10, 15), at(10, 45)),
		"no-time": noTime,
	}

	board := FilterSort(trips, reg, FilterOptions{SortBy: SlotDeparture, Now: now})
	require.Len(t, board, 3)
	assert.Equal(t, "sooner", board[0].TripID)
	assert.Equal(t, "later", board[1].TripID)
	assert.Equal(t, "no-time", board[2].TripID)
}

func TestFilterSortTruncatesToMaxTrips(t *testing.T) {
	now := at(10, 0)
	reg := registry.New()

	trips := make(map[string]*Trip)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("t%d", i)
		trips[id] = journeyTrip(id, 1, 5, at(10, 10+i), at(11, 10+i))
	}

	board := FilterSort(trips, reg, FilterOptions{SortBy: SlotDeparture, MaxTrips: 3, Now: now})
	require.Len(t, board, 3)
	assert.Equal(t, "t0", board[0].TripID)
	assert.Equal(t, "t2", board[2].TripID)
}
