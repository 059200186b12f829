package models

import (
	"encoding/json"
	"time"

	"mbtaboard.org/internal/utils"
)

// Vehicle current_status values from the MBTA v3 API.
const (
	VehicleStatusIncomingAt  = "INCOMING_AT"
	VehicleStatusStoppedAt   = "STOPPED_AT"
	VehicleStatusInTransitTo = "IN_TRANSIT_TO"
)

// Vehicle holds a live vehicle position report.
type Vehicle struct {
	ID                  string
	Label               string
	CurrentStatus       string
	CurrentStopSequence int
	DirectionID         int
	Latitude            float64
	Longitude           float64
	Speed               float64
	Bearing             float64
	OccupancyStatus     string
	UpdatedAt           time.Time
	TripID              string
	StopID              string
	RouteID             string
}

// DecodeVehicle builds a Vehicle from a JSON:API resource object.
func DecodeVehicle(res Resource) (Vehicle, error) {
	var attrs struct {
		Label               string  `json:"label"`
		CurrentStatus       string  `json:"current_status"`
		CurrentStopSequence int     `json:"current_stop_sequence"`
		DirectionID         int     `json:"direction_id"`
		Latitude            float64 `json:"latitude"`
		Longitude           float64 `json:"longitude"`
		Speed               float64 `json:"speed"`
		Bearing             float64 `json:"bearing"`
		OccupancyStatus     string  `json:"occupancy_status"`
		UpdatedAt           string  `json:"updated_at"`
	}
	if len(res.Attributes) > 0 {
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return Vehicle{}, err
		}
	}
	updatedAt, _ := utils.ParseTime(attrs.UpdatedAt)
	return Vehicle{
		ID:                  res.ID,
		Label:               attrs.Label,
		CurrentStatus:       attrs.CurrentStatus,
		CurrentStopSequence: attrs.CurrentStopSequence,
		DirectionID:         attrs.DirectionID,
		Latitude:            attrs.Latitude,
		Longitude:           attrs.Longitude,
		Speed:               attrs.Speed,
		Bearing:             attrs.Bearing,
		OccupancyStatus:     attrs.OccupancyStatus,
		UpdatedAt:           updatedAt,
		TripID:              res.RelatedID("trip"),
		StopID:              res.RelatedID("stop"),
		RouteID:             res.RelatedID("route"),
	}, nil
}
