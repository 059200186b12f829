package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, body string) Resource {
	t.Helper()
	doc, err := ParseDocument([]byte(body))
	require.NoError(t, err)
	res, err := doc.One()
	require.NoError(t, err)
	return res
}

func TestDecodePredictionWithTerminalRelationship(t *testing.T) {
	res := parseOne(t, `{"data":{"id":"p1","type":"prediction","attributes":{
		"schedule_relationship":"CANCELLED","stop_sequence":3,"revenue":"REVENUE",
		"departure_time":"2026-08-23T10:00:00-04:00"
	},"relationships":{
		"trip":{"data":{"id":"t1","type":"trip"}},
		"stop":{"data":{"id":"NS-1","type":"stop"}}
	}}}`)

	p, err := DecodePrediction(res)
	require.NoError(t, err)
	assert.True(t, p.IsTerminal())
	assert.Equal(t, "t1", p.TripID)
	assert.Equal(t, "NS-1", p.StopID)
	assert.Equal(t, 3, p.StopSequence)
	assert.Equal(t, "REVENUE", p.Revenue)
	assert.False(t, p.DepartureTime.IsZero())
	assert.True(t, p.ArrivalTime.IsZero())
}

func TestDecodeAlertPeriodsAndEntities(t *testing.T) {
	res := parseOne(t, `{"data":{"id":"a1","type":"alert","attributes":{
		"header":"Shuttle buses replace service","effect":"SHUTTLE","severity":7,
		"active_period":[{"start":"2026-08-23T04:00:00-04:00","end":null}],
		"informed_entity":[
			{"route":"Red","route_type":1,"direction_id":0},
			{"stop":"NS-1","activities":["BOARD","RIDE"]}
		]
	}}}`)

	a, err := DecodeAlert(res)
	require.NoError(t, err)
	assert.Equal(t, 7, a.Severity)
	require.Len(t, a.ActivePeriods, 1)
	assert.True(t, a.ActivePeriods[0].End.IsZero(), "null end means open-ended")
	assert.True(t, a.ActiveAt(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, a.ActiveAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	require.Len(t, a.InformedEntities, 2)
	assert.Equal(t, "Red", a.InformedEntities[0].RouteID)
	require.NotNil(t, a.InformedEntities[0].DirectionID)
	assert.Equal(t, 0, *a.InformedEntities[0].DirectionID)
	assert.Equal(t, "NS-1", a.InformedEntities[1].StopID)
	assert.Nil(t, a.InformedEntities[1].DirectionID)
}

func TestDecodeRouteDisplayName(t *testing.T) {
	res := parseOne(t, `{"data":{"id":"77","type":"route","attributes":{
		"short_name":"77","long_name":"Arlington Heights - Harvard","type":3
	}}}`)

	bus, err := DecodeRoute(res)
	require.NoError(t, err)
	assert.Equal(t, "77", bus.DisplayName())
	assert.False(t, bus.Type.IsSubway())

	res = parseOne(t, `{"data":{"id":"Red","type":"route","attributes":{
		"long_name":"Red Line","type":1
	}}}`)
	subway, err := DecodeRoute(res)
	require.NoError(t, err)
	assert.Equal(t, "Red Line", subway.DisplayName())
	assert.True(t, subway.Type.IsSubway())
}
