package restapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentTimeEndpoint(t *testing.T) {
	server := newTestServer(t)

	var body currentTimeResponse
	resp := getJSON(t, server, "/api/v1/current-time.json?key=TEST", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, body.Code)
	assert.Equal(t, body.CurrentTime, body.Entry.Time)

	parsed, err := time.Parse(time.RFC3339, body.Entry.ReadableTime)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, 5*time.Second)
	assert.InDelta(t, time.Now().UnixMilli(), body.Entry.Time, 5000)
}

func TestCurrentTimeEndpointRequiresAPIKey(t *testing.T) {
	server := newTestServer(t)

	var body errorResponse
	resp := getJSON(t, server, "/api/v1/current-time.json?key=wrong", &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "permission denied", body.Text)
}
