package restapi

import (
	"encoding/json"
	"net/http"
	"time"

	"mbtaboard.org/internal/board"
	"mbtaboard.org/internal/models"
	"mbtaboard.org/internal/registry"
)

// BoardResponse is the envelope every board endpoint returns.
type BoardResponse struct {
	Code        int        `json:"code"`
	CurrentTime int64      `json:"currentTime"`
	Trips       []TripView `json:"trips"`

	// ServiceDate is set by the train endpoint: the day the train runs.
	ServiceDate string `json:"serviceDate,omitempty"`
}

// TripView is the rider-facing rendering of one trip.
type TripView struct {
	TripID      string `json:"tripId"`
	Route       string `json:"route,omitempty"`
	RouteType   string `json:"routeType,omitempty"`
	TrainName   string `json:"trainName,omitempty"`
	Destination string `json:"destination,omitempty"`
	Direction   string `json:"direction,omitempty"`

	Departure *StopView `json:"departure,omitempty"`
	Arrival   *StopView `json:"arrival,omitempty"`

	Alerts []AlertView `json:"alerts,omitempty"`
}

// StopView renders one end of a trip.
type StopView struct {
	StopID        string `json:"stopId"`
	Platform      string `json:"platform,omitempty"`
	Time          string `json:"time,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
	DelayMinutes  int    `json:"delayMinutes,omitempty"`
	Countdown     string `json:"countdown,omitempty"`
	Status        string `json:"status,omitempty"`
	Uncertainty   string `json:"uncertainty,omitempty"`
}

// AlertView renders one attached alert.
type AlertView struct {
	ID       string `json:"id"`
	Header   string `json:"header,omitempty"`
	Effect   string `json:"effect,omitempty"`
	Severity int    `json:"severity"`
}

// NewTripView renders a trip against its registries.
func NewTripView(trip *board.Trip, reg *registry.Registries, now time.Time) TripView {
	view := TripView{
		TripID:      trip.TripID,
		Route:       board.RouteName(trip, reg),
		TrainName:   board.TrainName(trip, reg),
		Destination: board.Destination(trip, reg),
		Direction:   board.DirectionName(trip, reg),
		Departure:   newStopView(trip, board.SlotDeparture, reg, now),
		Arrival:     newStopView(trip, board.SlotArrival, reg, now),
	}
	if route, ok := trip.Route(reg); ok {
		view.RouteType = route.Type.Description()
	}
	for _, alert := range trip.Alerts(reg) {
		view.Alerts = append(view.Alerts, AlertView{
			ID:       alert.ID,
			Header:   alert.Header,
			Effect:   alert.Effect,
			Severity: alert.Severity,
		})
	}
	return view
}

func newStopView(trip *board.Trip, slot board.Slot, reg *registry.Registries, now time.Time) *StopView {
	stop := trip.Stop(slot)
	if stop == nil {
		return nil
	}
	view := &StopView{
		StopID:       stop.StopID,
		Platform:     board.Platform(trip, slot, reg),
		DelayMinutes: board.DelayMinutes(trip, slot),
		Countdown:    board.Countdown(trip, slot, reg, now),
		Status:       stop.Status,
	}
	if stop.Uncertainty != 0 {
		view.Uncertainty = models.UncertaintyDescription(stop.Uncertainty)
	}
	if at := stop.Time(); !at.IsZero() {
		view.Time = at.Format(time.RFC3339)
	}
	original := stop.Departure.Original
	if slot == board.SlotArrival {
		original = stop.Arrival.Original
	}
	if !original.IsZero() {
		view.ScheduledTime = original.Format(time.RFC3339)
	}
	return view
}

// NewBoardResponse renders a filtered board.
func NewBoardResponse(trips []*board.Trip, reg *registry.Registries, now time.Time) BoardResponse {
	views := make([]TripView, 0, len(trips))
	for _, trip := range trips {
		views = append(views, NewTripView(trip, reg, now))
	}
	return BoardResponse{
		Code:        http.StatusOK,
		CurrentTime: now.UnixMilli(),
		Trips:       views,
	}
}

// NewTrainResponse renders a single found train. The countdowns use the
// long form, since the next run of a named train may be days out.
func NewTrainResponse(trip *board.Trip, reg *registry.Registries, serviceDay time.Time, now time.Time) BoardResponse {
	response := NewBoardResponse([]*board.Trip{trip}, reg, now)
	response.ServiceDate = serviceDay.Format(board.DateLayout)

	view := &response.Trips[0]
	if view.Departure != nil {
		view.Departure.Countdown = board.LongCountdown(trip, board.SlotDeparture, now)
	}
	if view.Arrival != nil {
		view.Arrival.Countdown = board.LongCountdown(trip, board.SlotArrival, now)
	}
	return response
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response any) {
	setJSONResponseType(&w)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}
