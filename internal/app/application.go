// Package app wires the application's shared dependencies together.
package app

import (
	"log/slog"
	"net/http"

	"mbtaboard.org/internal/appconf"
	"mbtaboard.org/internal/mbta"
	"mbtaboard.org/internal/metrics"
)

// Application holds the dependencies for our HTTP handlers, helpers, and
// middleware: the configuration, the logger, the upstream client with its
// shared response cache, and the metrics collector.
type Application struct {
	Config    appconf.AppConfig
	Logger    *slog.Logger
	Client    *mbta.Client
	Cache     *mbta.ResponseCache
	Collector *metrics.Collector
}

// New builds an Application from configuration.
func New(cfg appconf.AppConfig, logger *slog.Logger) *Application {
	collector := metrics.NewCollector()
	cache := mbta.NewResponseCache(mbta.CacheConfig{
		MaxEntries:    cfg.Cache.MaxEntries,
		CutoverHour:   cfg.Cache.CutoverHour,
		StatsInterval: cfg.Cache.StatsInterval,
	}, logger, collector)
	client := mbta.NewClient(mbta.ClientConfig{
		APIKey:                cfg.Upstream.APIKey,
		BaseURL:               cfg.Upstream.BaseURL,
		Timeout:               cfg.Upstream.Timeout(),
		MaxConcurrentRequests: int64(cfg.Upstream.MaxConcurrentRequests),
	}, cache, logger, collector)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Cache:     cache,
		Collector: collector,
	}
}

// RequestHasInvalidAPIKey reports whether the request lacks a valid API
// key. An empty configured key list leaves the server open.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(r.URL.Query().Get("key"))
}

// IsInvalidAPIKey reports whether key is not one of the configured keys.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if len(app.Config.Server.APIKeys) == 0 {
		return false
	}
	if key == "" {
		return true
	}
	for _, validKey := range app.Config.Server.APIKeys {
		if key == validKey {
			return false
		}
	}
	return true
}
