package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	var body map[string]string
	resp := getJSON(t, server, "/healthz", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestBoardRequiresValidAPIKey(t *testing.T) {
	server := newTestServer(t)

	var body errorResponse
	resp := getJSON(t, server, "/api/v1/board/North%20Station/Lowell?key=wrong", &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "permission denied", body.Text)

	resp = getJSON(t, server, "/api/v1/board/North%20Station/Lowell", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpointNeedsNoKey(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJourneyBoardEndToEnd(t *testing.T) {
	server := newTestServer(t)

	var body BoardResponse
	resp := getJSON(t, server, "/api/v1/board/North%20Station/Lowell?key=TEST", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Trips, 1)

	trip := body.Trips[0]
	assert.Equal(t, "t1", trip.TripID)
	assert.Equal(t, "Lowell Line", trip.Route)
	assert.Equal(t, "Commuter Rail", trip.RouteType)
	assert.Equal(t, "505", trip.TrainName)
	assert.Equal(t, "Lowell", trip.Destination)
	assert.Equal(t, "Outbound", trip.Direction)

	require.NotNil(t, trip.Departure)
	assert.Equal(t, "NS-1", trip.Departure.StopID)
	assert.Equal(t, 5, trip.Departure.DelayMinutes, "prediction moved departure from +15 to +20")
	assert.Equal(t, "Trip that has already started", trip.Departure.Uncertainty)
	assert.NotEmpty(t, trip.Departure.Time)
	assert.NotEmpty(t, trip.Departure.ScheduledTime)
	assert.NotEqual(t, trip.Departure.ScheduledTime, trip.Departure.Time)

	require.NotNil(t, trip.Arrival)
	assert.Equal(t, "LW-1", trip.Arrival.StopID)
}

func TestDeparturesBoard(t *testing.T) {
	server := newTestServer(t)

	var body BoardResponse
	resp := getJSON(t, server, "/api/v1/departures/North%20Station?key=TEST", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Trips, 1)
	require.NotNil(t, body.Trips[0].Departure)
}

func TestUnknownStopIs404(t *testing.T) {
	server := newTestServer(t)

	var body errorResponse
	resp := getJSON(t, server, "/api/v1/board/Narnia/Lowell?key=TEST", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, body.Code)
}

func TestTrainEndpoint(t *testing.T) {
	server := newTestServer(t)

	var body BoardResponse
	resp := getJSON(t, server, "/api/v1/train/505?from=North%20Station&to=Lowell&key=TEST", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Trips, 1)
	assert.Equal(t, "505", body.Trips[0].TrainName)
	assert.NotEmpty(t, body.ServiceDate)

	// The single-train view uses the long countdown form.
	require.NotNil(t, body.Trips[0].Departure)
	assert.Regexp(t, `^(19|20) min$`, body.Trips[0].Departure.Countdown)
}

func TestTrainEndpointValidatesQuery(t *testing.T) {
	server := newTestServer(t)

	var body errorResponse
	resp := getJSON(t, server, "/api/v1/train/505?key=TEST", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
