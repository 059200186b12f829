package board

import (
	"fmt"
	"time"

	"mbtaboard.org/internal/models"
	"mbtaboard.org/internal/registry"
	"mbtaboard.org/internal/utils"
)

// VehicleFreshness is how recent a vehicle report must be to drive the
// boarding indicator. Beyond it the position is treated as unknown.
const VehicleFreshness = 90 * time.Second

// Countdown statuses per the MBTA v3 API predictions best practices.
const (
	CountdownBoarding = "BRD"
	CountdownArriving = "ARR"
	CountdownOneMin   = "1 min"
	CountdownOverCap  = "20+ min"
)

// countdownCap is the number of minutes beyond which the countdown stops
// counting.
const countdownCap = 20

// Countdown returns the rider-facing countdown for one of the trip's stop
// slots. The live prediction status string wins when present; otherwise
// the value follows the MBTA countdown display rules, with a fresh
// vehicle stopped at the platform promoting the display to boarding. An
// empty string means the event is in the past or unknown.
func Countdown(trip *Trip, slot Slot, reg *registry.Registries, now time.Time) string {
	stop := trip.Stop(slot)
	if stop == nil {
		return ""
	}
	if stop.Status != "" {
		return stop.Status
	}

	at := stop.Time()
	if at.IsZero() {
		return ""
	}
	seconds := int(at.Sub(now).Seconds())
	if seconds < 0 {
		return ""
	}

	if seconds <= 90 && vehicleAtPlatform(trip, stop, reg, now) {
		return CountdownBoarding
	}
	switch {
	case seconds <= 30:
		return CountdownArriving
	case seconds <= 60:
		return CountdownOneMin
	}

	minutes := (seconds + 30) / 60
	if minutes > countdownCap {
		return CountdownOverCap
	}
	return fmt.Sprintf("%d min", minutes)
}

// LongCountdown is the countdown variant for events that may be days out,
// such as a named train found later in the week.
func LongCountdown(trip *Trip, slot Slot, now time.Time) string {
	stop := trip.Stop(slot)
	if stop == nil || stop.Time().IsZero() {
		return ""
	}
	return utils.FormatCountdown(int(stop.Time().Sub(now).Seconds()))
}

// vehicleAtPlatform reports whether a fresh vehicle report places the
// trip's vehicle stopped at this very stop.
func vehicleAtPlatform(trip *Trip, stop *TripStop, reg *registry.Registries, now time.Time) bool {
	vehicle, ok := trip.Vehicle(reg)
	if !ok {
		return false
	}
	if vehicle.UpdatedAt.IsZero() || now.Sub(vehicle.UpdatedAt) > VehicleFreshness {
		return false
	}
	return vehicle.CurrentStatus == models.VehicleStatusStoppedAt &&
		vehicle.CurrentStopSequence == stop.StopSequence
}

// Destination returns the rider-facing destination for a trip: the route's
// direction destination when known, else the trip headsign.
func Destination(trip *Trip, reg *registry.Registries) string {
	descriptor, haveDescriptor := trip.Descriptor(reg)
	if route, ok := trip.Route(reg); ok && haveDescriptor {
		if descriptor.DirectionID >= 0 && descriptor.DirectionID < len(route.DirectionDestinations) {
			if dest := route.DirectionDestinations[descriptor.DirectionID]; dest != "" {
				return dest
			}
		}
	}
	if haveDescriptor {
		return descriptor.Headsign
	}
	return ""
}

// DirectionName returns the route's name for the trip's direction, such
// as "Inbound" or "Outbound".
func DirectionName(trip *Trip, reg *registry.Registries) string {
	descriptor, haveDescriptor := trip.Descriptor(reg)
	route, haveRoute := trip.Route(reg)
	if !haveDescriptor || !haveRoute {
		return ""
	}
	if descriptor.DirectionID < 0 || descriptor.DirectionID >= len(route.DirectionNames) {
		return ""
	}
	return route.DirectionNames[descriptor.DirectionID]
}

// RouteName returns the rider-facing route name for a trip, or "".
func RouteName(trip *Trip, reg *registry.Registries) string {
	if route, ok := trip.Route(reg); ok {
		return route.DisplayName()
	}
	return ""
}

// TrainName returns the trip's train number, if the mode has one.
func TrainName(trip *Trip, reg *registry.Registries) string {
	if descriptor, ok := trip.Descriptor(reg); ok {
		return descriptor.Name
	}
	return ""
}

// Platform returns the platform name of the stop filling a slot, or "".
func Platform(trip *Trip, slot Slot, reg *registry.Registries) string {
	stopID := trip.StopID(slot)
	if stopID == "" {
		return ""
	}
	if stop, ok := reg.Stops.Get(stopID); ok {
		return stop.PlatformName
	}
	return ""
}

// DelayMinutes returns the live delay of a slot in whole minutes, or 0
// when no live revision exists. Early running yields a negative value.
func DelayMinutes(trip *Trip, slot Slot) int {
	stop := trip.Stop(slot)
	if stop == nil {
		return 0
	}
	delay, ok := stop.Delay()
	if !ok {
		return 0
	}
	return int(delay.Round(time.Minute) / time.Minute)
}
