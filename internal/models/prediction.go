package models

import (
	"encoding/json"
	"time"

	"mbtaboard.org/internal/utils"
)

// Schedule relationship values a prediction may carry. The terminal ones
// mean the trip will not serve the predicted stop at all.
const (
	ScheduleRelationshipAdded       = "ADDED"
	ScheduleRelationshipCancelled   = "CANCELLED"
	ScheduleRelationshipNoData      = "NO_DATA"
	ScheduleRelationshipSkipped     = "SKIPPED"
	ScheduleRelationshipUnscheduled = "UNSCHEDULED"
)

// Prediction holds a live, possibly revised arrival/departure entry for
// one stop on one trip.
type Prediction struct {
	ID                   string
	ArrivalTime          time.Time
	DepartureTime        time.Time
	ArrivalUncertainty   int
	DepartureUncertainty int
	DirectionID          int
	LastTrip             bool
	Revenue              string // "REVENUE" or "NON_REVENUE"
	ScheduleRelationship string
	Status               string
	StopSequence         int
	UpdateType           string
	TripID               string
	StopID               string
	RouteID              string
	VehicleID            string
}

// IsTerminal reports whether the prediction marks the trip as not serving
// this stop (cancelled, skipped, or data lost).
func (p Prediction) IsTerminal() bool {
	switch p.ScheduleRelationship {
	case ScheduleRelationshipCancelled, ScheduleRelationshipSkipped, ScheduleRelationshipNoData:
		return true
	}
	return false
}

// UncertaintyDescription explains a prediction uncertainty code per the
// MBTA v3 API documentation.
func UncertaintyDescription(code int) string {
	switch code {
	case 60:
		return "Trip that has already started"
	case 120:
		return "Trip not started and a vehicle is awaiting departure at the origin"
	case 300:
		return "Vehicle has not yet been assigned to the trip"
	case 301:
		return "Vehicle appears to be stalled or significantly delayed"
	case 360:
		return "Trip not started and a vehicle is completing a previous trip"
	default:
		return "None"
	}
}

// DecodePrediction builds a Prediction from a JSON:API resource object.
func DecodePrediction(res Resource) (Prediction, error) {
	var attrs struct {
		ArrivalTime          string `json:"arrival_time"`
		DepartureTime        string `json:"departure_time"`
		ArrivalUncertainty   int    `json:"arrival_uncertainty"`
		DepartureUncertainty int    `json:"departure_uncertainty"`
		DirectionID          int    `json:"direction_id"`
		LastTrip             bool   `json:"last_trip"`
		Revenue              string `json:"revenue"`
		ScheduleRelationship string `json:"schedule_relationship"`
		Status               string `json:"status"`
		StopSequence         int    `json:"stop_sequence"`
		UpdateType           string `json:"update_type"`
	}
	if len(res.Attributes) > 0 {
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return Prediction{}, err
		}
	}
	prediction := Prediction{
		ID:                   res.ID,
		ArrivalUncertainty:   attrs.ArrivalUncertainty,
		DepartureUncertainty: attrs.DepartureUncertainty,
		DirectionID:          attrs.DirectionID,
		LastTrip:             attrs.LastTrip,
		Revenue:              attrs.Revenue,
		ScheduleRelationship: attrs.ScheduleRelationship,
		Status:               attrs.Status,
		StopSequence:         attrs.StopSequence,
		UpdateType:           attrs.UpdateType,
		TripID:               res.RelatedID("trip"),
		StopID:               res.RelatedID("stop"),
		RouteID:              res.RelatedID("route"),
		VehicleID:            res.RelatedID("vehicle"),
	}
	prediction.ArrivalTime, _ = utils.ParseTime(attrs.ArrivalTime)
	prediction.DepartureTime, _ = utils.ParseTime(attrs.DepartureTime)
	return prediction, nil
}
