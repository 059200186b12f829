package models

import (
	"encoding/json"
	"time"

	"mbtaboard.org/internal/utils"
)

// Passenger activities an alert's informed entity may be scoped to.
const (
	AlertActivityBoard = "BOARD"
	AlertActivityExit  = "EXIT"
	AlertActivityRide  = "RIDE"
)

// ActivePeriod is a window during which an alert is in effect. A zero End
// means the period is open-ended.
type ActivePeriod struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the period. An open-ended period
// extends to the unbounded future.
func (p ActivePeriod) Contains(t time.Time) bool {
	if t.Before(p.Start) {
		return false
	}
	return p.End.IsZero() || !t.After(p.End)
}

// InformedEntity is an alert's scoping descriptor: which routes, trips,
// stops, directions and passenger activities the alert applies to.
type InformedEntity struct {
	Activities  []string
	DirectionID *int
	RouteID     string
	RouteType   *int
	StopID      string
	TripID      string
}

// Alert holds an MBTA service alert.
type Alert struct {
	ID               string
	ActivePeriods    []ActivePeriod
	Cause            string
	Effect           string
	Header           string
	ShortHeader      string
	Description      string
	Lifecycle        string
	Severity         int
	Timeframe        string
	URL              string
	InformedEntities []InformedEntity
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActiveAt reports whether any of the alert's active periods contains t.
func (a Alert) ActiveAt(t time.Time) bool {
	for _, p := range a.ActivePeriods {
		if p.Contains(t) {
			return true
		}
	}
	return false
}

// DecodeAlert builds an Alert from a JSON:API resource object.
func DecodeAlert(res Resource) (Alert, error) {
	var attrs struct {
		ActivePeriod []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"active_period"`
		Cause          string `json:"cause"`
		Effect         string `json:"effect"`
		Header         string `json:"header"`
		ShortHeader    string `json:"short_header"`
		Description    string `json:"description"`
		Lifecycle      string `json:"lifecycle"`
		Severity       int    `json:"severity"`
		Timeframe      string `json:"timeframe"`
		URL            string `json:"url"`
		CreatedAt      string `json:"created_at"`
		UpdatedAt      string `json:"updated_at"`
		InformedEntity []struct {
			Activities  []string `json:"activities"`
			DirectionID *int     `json:"direction_id"`
			Route       string   `json:"route"`
			RouteType   *int     `json:"route_type"`
			Stop        string   `json:"stop"`
			Trip        string   `json:"trip"`
		} `json:"informed_entity"`
	}
	if len(res.Attributes) > 0 {
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			return Alert{}, err
		}
	}

	alert := Alert{
		ID:          res.ID,
		Cause:       attrs.Cause,
		Effect:      attrs.Effect,
		Header:      attrs.Header,
		ShortHeader: attrs.ShortHeader,
		Description: attrs.Description,
		Lifecycle:   attrs.Lifecycle,
		Severity:    attrs.Severity,
		Timeframe:   attrs.Timeframe,
		URL:         attrs.URL,
	}
	alert.CreatedAt, _ = utils.ParseTime(attrs.CreatedAt)
	alert.UpdatedAt, _ = utils.ParseTime(attrs.UpdatedAt)

	for _, p := range attrs.ActivePeriod {
		period := ActivePeriod{}
		period.Start, _ = utils.ParseTime(p.Start)
		period.End, _ = utils.ParseTime(p.End)
		alert.ActivePeriods = append(alert.ActivePeriods, period)
	}
	for _, e := range attrs.InformedEntity {
		alert.InformedEntities = append(alert.InformedEntities, InformedEntity{
			Activities:  e.Activities,
			DirectionID: e.DirectionID,
			RouteID:     e.Route,
			RouteType:   e.RouteType,
			StopID:      e.Stop,
			TripID:      e.Trip,
		})
	}
	return alert, nil
}
