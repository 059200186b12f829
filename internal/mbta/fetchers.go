package mbta

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mbtaboard.org/internal/models"
)

// Endpoint paths of the MBTA v3 API.
const (
	EndpointStops       = "stops"
	EndpointRoutes      = "routes"
	EndpointTrips       = "trips"
	EndpointSchedules   = "schedules"
	EndpointPredictions = "predictions"
	EndpointVehicles    = "vehicles"
	EndpointAlerts      = "alerts"
)

// FetchStops fetches the stops matching params.
func (c *Client) FetchStops(ctx context.Context, params map[string]string) ([]models.Stop, time.Time, error) {
	return fetchList(ctx, c, EndpointStops, params, models.DecodeStop)
}

// FetchStop fetches a single stop by ID, memoized in the result cache
// tier.
func (c *Client) FetchStop(ctx context.Context, id string) (models.Stop, time.Time, error) {
	return fetchOneMemoized(ctx, c, EndpointStops, id, models.DecodeStop)
}

// FetchRoutes fetches the routes matching params.
func (c *Client) FetchRoutes(ctx context.Context, params map[string]string) ([]models.Route, time.Time, error) {
	return fetchList(ctx, c, EndpointRoutes, params, models.DecodeRoute)
}

// FetchRoute fetches a single route by ID. Routes are stable within a
// service day, so the decoded result is memoized in the result cache tier.
func (c *Client) FetchRoute(ctx context.Context, id string) (models.Route, time.Time, error) {
	return fetchOneMemoized(ctx, c, EndpointRoutes, id, models.DecodeRoute)
}

// FetchTrips fetches the trip descriptors matching params.
func (c *Client) FetchTrips(ctx context.Context, params map[string]string) ([]models.TripDescriptor, time.Time, error) {
	return fetchList(ctx, c, EndpointTrips, params, models.DecodeTripDescriptor)
}

// FetchTrip fetches a single trip descriptor by ID, memoized like
// FetchRoute.
func (c *Client) FetchTrip(ctx context.Context, id string) (models.TripDescriptor, time.Time, error) {
	return fetchOneMemoized(ctx, c, EndpointTrips, id, models.DecodeTripDescriptor)
}

// FetchSchedules fetches the static schedule entries matching params.
func (c *Client) FetchSchedules(ctx context.Context, params map[string]string) ([]models.Schedule, time.Time, error) {
	return fetchList(ctx, c, EndpointSchedules, params, models.DecodeSchedule)
}

// FetchPredictions fetches the live prediction entries matching params.
func (c *Client) FetchPredictions(ctx context.Context, params map[string]string) ([]models.Prediction, time.Time, error) {
	return fetchList(ctx, c, EndpointPredictions, params, models.DecodePrediction)
}

// FetchVehicles fetches the vehicle positions matching params.
func (c *Client) FetchVehicles(ctx context.Context, params map[string]string) ([]models.Vehicle, time.Time, error) {
	return fetchList(ctx, c, EndpointVehicles, params, models.DecodeVehicle)
}

// FetchAlerts fetches the service alerts matching params.
func (c *Client) FetchAlerts(ctx context.Context, params map[string]string) ([]models.Alert, time.Time, error) {
	return fetchList(ctx, c, EndpointAlerts, params, models.DecodeAlert)
}

// fetchList fetches an endpoint returning a resource array and decodes
// each element. A record that fails to decode is logged and skipped;
// partial information is strictly more useful than none.
func fetchList[T any](ctx context.Context, c *Client, endpoint string, params map[string]string, decode func(models.Resource) (T, error)) ([]T, time.Time, error) {
	doc, timestamp, err := c.Fetch(ctx, http.MethodGet, endpoint, params)
	if err != nil {
		return nil, time.Time{}, err
	}
	resources, err := doc.Many()
	if err != nil {
		return nil, time.Time{}, err
	}

	out := make([]T, 0, len(resources))
	for _, res := range resources {
		decoded, err := decode(res)
		if err != nil {
			c.logger.Warn("skipping undecodable record",
				slog.String("endpoint", endpoint),
				slog.String("id", res.ID),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, decoded)
	}
	return out, timestamp, nil
}

// fetchOneMemoized fetches a single resource by ID through the result
// cache tier: an explicit cache-aside keyed by endpoint and ID.
func fetchOneMemoized[T any](ctx context.Context, c *Client, endpoint, id string, decode func(models.Resource) (T, error)) (T, time.Time, error) {
	var zero T
	memoKey := endpoint + "/" + id

	if value, timestamp, ok := c.cache.GetResult(memoKey); ok {
		if decoded, ok := value.(T); ok {
			return decoded, timestamp, nil
		}
	}

	doc, timestamp, err := c.Fetch(ctx, http.MethodGet, memoKey, nil)
	if err != nil {
		return zero, time.Time{}, err
	}
	res, err := doc.One()
	if err != nil {
		return zero, time.Time{}, err
	}
	decoded, err := decode(res)
	if err != nil {
		return zero, time.Time{}, err
	}

	c.cache.PutResult(memoKey, decoded, timestamp)
	return decoded, timestamp, nil
}
