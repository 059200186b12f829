// Package mbta is the client for the MBTA v3 API: a rate-limited,
// conditional-HTTP-aware transport plus the dual-tier response cache and
// typed fetchers for every endpoint the board consumes.
package mbta

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/semaphore"

	"mbtaboard.org/internal/logging"
	"mbtaboard.org/internal/metrics"
	"mbtaboard.org/internal/models"
)

const (
	// DefaultBaseURL is the MBTA v3 API origin.
	DefaultBaseURL = "https://api-v3.mbta.com"

	// DefaultMaxConcurrentRequests bounds outbound requests process-wide.
	// The MBTA grants a fixed per-minute budget per key; keeping the
	// in-flight count low spreads it out.
	DefaultMaxConcurrentRequests = 4

	// DefaultTimeout is the per-request timeout of the underlying
	// transport.
	DefaultTimeout = 30 * time.Second
)

// ClientConfig configures a Client.
type ClientConfig struct {
	APIKey                string
	BaseURL               string
	Timeout               time.Duration
	MaxConcurrentRequests int64
}

// Client talks to the MBTA v3 API. All fetches flow through the shared
// semaphore and the response cache; a "not modified" answer from the
// server is transparently satisfied from the origin cache tier.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *ResponseCache
	sem        *semaphore.Weighted
	logger     *slog.Logger
	collector  *metrics.Collector
}

// NewClient returns a Client. The cache is required; logger and collector
// may be nil.
func NewClient(cfg ClientConfig, cache *ResponseCache, logger *slog.Logger, collector *metrics.Collector) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		cache:      cache,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrentRequests),
		logger:     logger.With(slog.String("component", "mbta_client")),
		collector:  collector,
	}
}

// Cache exposes the client's response cache, shared with callers that
// memoize decoded results.
func (c *Client) Cache() *ResponseCache {
	return c.cache
}

// Fetch performs one request against the API and returns the decoded
// JSON:API envelope plus the timestamp of the payload it is based on. The
// timestamp is older than now when the server answered "not modified" and
// the payload came from the origin cache.
func (c *Client) Fetch(ctx context.Context, method, path string, params map[string]string) (models.Document, time.Time, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return models.Document{}, time.Time{}, err
	}
	defer c.sem.Release(1)
	if c.collector != nil {
		c.collector.InflightRequests.Inc()
		defer c.collector.InflightRequests.Dec()
	}

	cached, haveCached := c.cache.Get(path, params)

	req, err := c.newRequest(ctx, method, path, params, cached.LastModified)
	if err != nil {
		return models.Document{}, time.Time{}, err
	}

	c.logger.Debug("upstream request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Bool("conditional", cached.LastModified != ""))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countOutcome("error")
		return models.Document{}, time.Time{}, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusUnauthorized:
		c.countOutcome("error")
		return models.Document{}, time.Time{}, fmt.Errorf("%w (HTTP %d)", ErrAuthentication, resp.StatusCode)

	case http.StatusTooManyRequests:
		c.countOutcome("error")
		return models.Document{}, time.Time{}, ErrRateLimited

	case http.StatusNotModified:
		if !haveCached {
			c.countOutcome("error")
			return models.Document{}, time.Time{}, fmt.Errorf("%w: %s", ErrNotModifiedWithoutCache, path)
		}
		c.cache.RecordOriginHit()
		c.countOutcome("not_modified")
		doc, err := models.ParseDocument(cached.Payload)
		if err != nil {
			return models.Document{}, time.Time{}, fmt.Errorf("cached payload for %s: %w", path, err)
		}
		return doc, cached.Timestamp, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.countOutcome("error")
		return models.Document{}, time.Time{}, fmt.Errorf("requesting %s: unexpected status %s", path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countOutcome("error")
		return models.Document{}, time.Time{}, fmt.Errorf("reading %s response: %w", path, err)
	}

	doc, err := models.ParseDocument(body)
	if err != nil {
		c.countOutcome("error")
		return models.Document{}, time.Time{}, fmt.Errorf("response for %s: %w", path, err)
	}

	timestamp := time.Now()
	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		timestamp = c.cache.Put(path, params, body, lastModified)
	}
	c.cache.RecordOriginMiss()
	c.countOutcome("fresh")
	return doc, timestamp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, params map[string]string, lastModified string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for name, value := range params {
		query.Set(name, value)
	}
	req.URL.RawQuery = query.Encode()

	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	return req, nil
}

func (c *Client) countOutcome(outcome string) {
	if c.collector != nil {
		c.collector.UpstreamRequests.WithLabelValues(outcome).Inc()
	}
}
