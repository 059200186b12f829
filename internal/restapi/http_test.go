package restapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mbtaboard.org/internal/app"
	"mbtaboard.org/internal/appconf"
	"mbtaboard.org/internal/logging"
)

// upstreamStub serves a minimal MBTA v3 API with one commuter rail trip
// between North Station and Lowell.
type upstreamStub struct {
	now time.Time
}

func (f *upstreamStub) stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (f *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/stops":
		fmt.Fprint(w, `{"data":[
			{"id":"NS-1","type":"stop","attributes":{"name":"North Station","location_type":0}},
			{"id":"LW-1","type":"stop","attributes":{"name":"Lowell","location_type":0}}
		]}`)

	case "/stops/LW-1":
		fmt.Fprint(w, `{"data":{"id":"LW-1","type":"stop","attributes":{"name":"Lowell","location_type":0}}}`)

	case "/schedules":
		fmt.Fprintf(w, `{"data":[
			{"id":"sch-1","type":"schedule","attributes":{"departure_time":%q,"stop_sequence":1},
			 "relationships":{"trip":{"data":{"id":"t1","type":"trip"}},"stop":{"data":{"id":"NS-1","type":"stop"}},"route":{"data":{"id":"CR-Lowell","type":"route"}}}},
			{"id":"sch-2","type":"schedule","attributes":{"arrival_time":%q,"stop_sequence":5},
			 "relationships":{"trip":{"data":{"id":"t1","type":"trip"}},"stop":{"data":{"id":"LW-1","type":"stop"}},"route":{"data":{"id":"CR-Lowell","type":"route"}}}}
		]}`, f.stamp(f.now.Add(15*time.Minute)), f.stamp(f.now.Add(45*time.Minute)))

	case "/predictions":
		fmt.Fprintf(w, `{"data":[
			{"id":"pred-1","type":"prediction","attributes":{"departure_time":%q,"stop_sequence":1,"departure_uncertainty":60},
			 "relationships":{"trip":{"data":{"id":"t1","type":"trip"}},"stop":{"data":{"id":"NS-1","type":"stop"}},"route":{"data":{"id":"CR-Lowell","type":"route"}}}}
		]}`, f.stamp(f.now.Add(20*time.Minute)))

	case "/vehicles":
		fmt.Fprint(w, `{"data":[]}`)

	case "/alerts":
		fmt.Fprint(w, `{"data":[]}`)

	case "/trips":
		fmt.Fprint(w, `{"data":[{"id":"t1","type":"trip","attributes":{"name":"505","headsign":"Lowell","direction_id":0},
			"relationships":{"route":{"data":{"id":"CR-Lowell","type":"route"}}}}]}`)

	case "/trips/t1":
		fmt.Fprint(w, `{"data":{"id":"t1","type":"trip","attributes":{"name":"505","headsign":"Lowell","direction_id":0},
			"relationships":{"route":{"data":{"id":"CR-Lowell","type":"route"}}}}}`)

	case "/routes/CR-Lowell":
		fmt.Fprint(w, `{"data":{"id":"CR-Lowell","type":"route","attributes":{"long_name":"Lowell Line","type":2,
			"direction_destinations":["Lowell","North Station"],"direction_names":["Outbound","Inbound"]}}}`)

	default:
		http.NotFound(w, r)
	}
}

// newTestServer stands up the full API in front of the upstream stub.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(&upstreamStub{now: time.Now().UTC().Truncate(time.Second)})
	t.Cleanup(upstream.Close)

	cfg := appconf.AppConfig{
		Server: appconf.ServerConfig{
			Port:    4000,
			Env:     "development",
			APIKeys: []string{"TEST"},
		},
		Upstream: appconf.UpstreamConfig{BaseURL: upstream.URL},
	}
	logger := logging.NewStructuredLogger(io.Discard, slog.LevelError)
	api := NewRestAPI(app.New(cfg, logger))

	server := httptest.NewServer(api.Routes())
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, server *httptest.Server, path string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}
