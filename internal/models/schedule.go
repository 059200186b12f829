package models

import (
	"encoding/json"
	"time"

	"mbtaboard.org/internal/utils"
)

// Schedule holds a static, planned arrival/departure entry for one stop on
// one trip.
type Schedule struct {
	ID            string
	ArrivalTime   time.Time
	DepartureTime time.Time
	DirectionID   int
	DropOffType   int
	PickupType    int
	StopHeadsign  string
	StopSequence  int
	Timepoint     bool
	TripID        string
	StopID        string
	RouteID       string
}

// DecodeSchedule builds a Schedule from a JSON:API resource object.
func DecodeSchedule(res Resource) (Schedule, error) {
	var attrs struct {
		ArrivalTime   string `json:"arrival_time"`
		DepartureTime string `json:"departure_time"`
		DirectionID   int    `json:"direction_id"`
		DropOffType   int    `json:"drop_off_type"`
		PickupType    int    `json:"pickup_type"`
		StopHeadsign  string `json:"stop_headsign"`
		StopSequence  int    `json:"stop_sequence"`
		Timepoint     bool   `json:"timepoint"`
	}
	if len(res.Attributes) > 0 {
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return Schedule{}, err
		}
	}
	schedule := Schedule{
		ID:           res.ID,
		DirectionID:  attrs.DirectionID,
		DropOffType:  attrs.DropOffType,
		PickupType:   attrs.PickupType,
		StopHeadsign: attrs.StopHeadsign,
		StopSequence: attrs.StopSequence,
		Timepoint:    attrs.Timepoint,
		TripID:       res.RelatedID("trip"),
		StopID:       res.RelatedID("stop"),
		RouteID:      res.RelatedID("route"),
	}
	schedule.ArrivalTime, _ = utils.ParseTime(attrs.ArrivalTime)
	schedule.DepartureTime, _ = utils.ParseTime(attrs.DepartureTime)
	return schedule, nil
}
