package board

import (
	"time"

	"mbtaboard.org/internal/models"
)

// Source identifies where a scheduling record came from.
type Source int

const (
	// SourceSchedule marks a static, planned entry.
	SourceSchedule Source = iota
	// SourcePrediction marks a live, possibly revised entry.
	SourcePrediction
)

// Record is the flattened scheduling entry the reconciliation engine
// consumes: one arrival/departure at one stop of one trip, from either the
// schedule or the prediction feed.
type Record struct {
	Source               Source
	TripID               string
	RouteID              string
	StopID               string
	StopSequence         int
	ArrivalTime          time.Time
	DepartureTime        time.Time
	ArrivalUncertainty   int
	DepartureUncertainty int
	Status               string
	ScheduleRelationship string
}

// IsTerminal reports whether the record marks its trip as cancelled,
// skipped, or data-lost. Only predictions carry terminal relationships.
func (r Record) IsTerminal() bool {
	if r.Source != SourcePrediction {
		return false
	}
	switch r.ScheduleRelationship {
	case models.ScheduleRelationshipCancelled,
		models.ScheduleRelationshipSkipped,
		models.ScheduleRelationshipNoData:
		return true
	}
	return false
}

// RecordFromSchedule flattens a schedule entry.
func RecordFromSchedule(s models.Schedule) Record {
	return Record{
		Source:        SourceSchedule,
		TripID:        s.TripID,
		RouteID:       s.RouteID,
		StopID:        s.StopID,
		StopSequence:  s.StopSequence,
		ArrivalTime:   s.ArrivalTime,
		DepartureTime: s.DepartureTime,
	}
}

// RecordFromPrediction flattens a prediction entry.
func RecordFromPrediction(p models.Prediction) Record {
	return Record{
		Source:               SourcePrediction,
		TripID:               p.TripID,
		RouteID:              p.RouteID,
		StopID:               p.StopID,
		StopSequence:         p.StopSequence,
		ArrivalTime:          p.ArrivalTime,
		DepartureTime:        p.DepartureTime,
		ArrivalUncertainty:   p.ArrivalUncertainty,
		DepartureUncertainty: p.DepartureUncertainty,
		Status:               p.Status,
		ScheduleRelationship: p.ScheduleRelationship,
	}
}

// RecordsFromSchedules flattens a schedule batch, preserving order.
func RecordsFromSchedules(schedules []models.Schedule) []Record {
	records := make([]Record, 0, len(schedules))
	for _, s := range schedules {
		records = append(records, RecordFromSchedule(s))
	}
	return records
}

// RecordsFromPredictions flattens a prediction batch, preserving order.
func RecordsFromPredictions(predictions []models.Prediction) []Record {
	records := make([]Record, 0, len(predictions))
	for _, p := range predictions {
		records = append(records, RecordFromPrediction(p))
	}
	return records
}
