package board

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtaboard.org/internal/mbta"
	"mbtaboard.org/internal/registry"
)

type fakeStops struct {
	listServes int
	byIDServes map[string]int
}

func (f *fakeStops) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/stops":
		f.listServes++
		fmt.Fprint(w, `{"data":[
			{"id":"NS-1","type":"stop","attributes":{"name":"North Station","location_type":0}},
			{"id":"NS-2","type":"stop","attributes":{"name":"North Station","location_type":0}},
			{"id":"LW-1","type":"stop","attributes":{"name":"Lowell","location_type":0}}
		]}`)
	case "/stops/BNT-0":
		f.byIDServes["BNT-0"]++
		fmt.Fprint(w, `{"data":{"id":"BNT-0","type":"stop","attributes":{"name":"North Station","location_type":0}}}`)
	case "/stops/XX-1":
		f.byIDServes["XX-1"]++
		fmt.Fprint(w, `{"data":{"id":"XX-1","type":"stop","attributes":{"name":"Back Bay","location_type":0}}}`)
	default:
		http.NotFound(w, r)
	}
}

func newResolverFixture(t *testing.T) (*fakeStops, *StopResolver, *registry.Registries, *mbta.Client) {
	t.Helper()
	fake := &fakeStops{byIDServes: make(map[string]int)}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	logger := testLogger()
	cache := mbta.NewResponseCache(mbta.CacheConfig{}, logger, nil)
	client := mbta.NewClient(mbta.ClientConfig{BaseURL: server.URL}, cache, logger, nil)
	reg := registry.New()
	return fake, NewStopResolver(client, reg, logger, "North Station", "Lowell"), reg, client
}

func TestResolveCollectsAllPlatformIDs(t *testing.T) {
	_, resolver, reg, _ := newResolverFixture(t)

	require.NoError(t, resolver.Resolve(context.Background()))

	assert.ElementsMatch(t, []string{"NS-1", "NS-2"}, resolver.IDs(SlotDeparture))
	assert.Equal(t, []string{"LW-1"}, resolver.IDs(SlotArrival))
	assert.Len(t, resolver.AllIDs(), 3)

	slot, ok := resolver.Side("NS-2")
	require.True(t, ok)
	assert.Equal(t, SlotDeparture, slot)

	_, ok = reg.Stops.Get("NS-1")
	assert.True(t, ok, "resolved stops land in the registry")
}

func TestResolveMatchesNamesCaseInsensitively(t *testing.T) {
	fake := &fakeStops{byIDServes: make(map[string]int)}
	server := httptest.NewServer(fake)
	defer server.Close()

	logger := testLogger()
	cache := mbta.NewResponseCache(mbta.CacheConfig{}, logger, nil)
	client := mbta.NewClient(mbta.ClientConfig{BaseURL: server.URL}, cache, logger, nil)
	resolver := NewStopResolver(client, registry.New(), logger, "north station", "LOWELL")

	require.NoError(t, resolver.Resolve(context.Background()))
	assert.Len(t, resolver.IDs(SlotDeparture), 2)
}

func TestResolveUnknownStopName(t *testing.T) {
	fake := &fakeStops{byIDServes: make(map[string]int)}
	server := httptest.NewServer(fake)
	defer server.Close()

	logger := testLogger()
	cache := mbta.NewResponseCache(mbta.CacheConfig{}, logger, nil)
	client := mbta.NewClient(mbta.ClientConfig{BaseURL: server.URL}, cache, logger, nil)
	resolver := NewStopResolver(client, registry.New(), logger, "Narnia", "Lowell")

	err := resolver.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrUnknownStop)
}

func TestResolveMemoizedAcrossResolvers(t *testing.T) {
	fake, resolver, _, client := newResolverFixture(t)

	require.NoError(t, resolver.Resolve(context.Background()))
	assert.Equal(t, 1, fake.listServes)

	// A second resolver for the same names shares the client's result
	// tier, so no second stops fetch happens within the service day.
	again := NewStopResolver(client, registry.New(), testLogger(), "North Station", "Lowell")
	require.NoError(t, again.Resolve(context.Background()))
	assert.Equal(t, 1, fake.listServes)
	assert.Len(t, again.AllIDs(), 3)
}

func TestClassifyByIDFoldsInLatePlatforms(t *testing.T) {
	fake, resolver, _, _ := newResolverFixture(t)
	require.NoError(t, resolver.Resolve(context.Background()))

	slot, ok := resolver.ClassifyByID(context.Background(), "BNT-0")
	require.True(t, ok)
	assert.Equal(t, SlotDeparture, slot)
	assert.Equal(t, 1, fake.byIDServes["BNT-0"])

	// Known from here on, no further fetches.
	_, ok = resolver.ClassifyByID(context.Background(), "BNT-0")
	assert.True(t, ok)
	assert.Equal(t, 1, fake.byIDServes["BNT-0"])
}

func TestClassifyByIDRejectsForeignStops(t *testing.T) {
	fake, resolver, _, _ := newResolverFixture(t)
	require.NoError(t, resolver.Resolve(context.Background()))

	_, ok := resolver.ClassifyByID(context.Background(), "XX-1")
	assert.False(t, ok, "Back Bay belongs to neither endpoint")
	assert.Equal(t, 1, fake.byIDServes["XX-1"])

	// Negative results are remembered too.
	_, ok = resolver.ClassifyByID(context.Background(), "XX-1")
	assert.False(t, ok)
	assert.Equal(t, 1, fake.byIDServes["XX-1"])
}
