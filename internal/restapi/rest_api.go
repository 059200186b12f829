// Package restapi exposes the departures board over HTTP.
package restapi

import (
	"strings"
	"sync"

	"mbtaboard.org/internal/app"
	"mbtaboard.org/internal/board"
	"mbtaboard.org/internal/registry"
)

// RestAPI holds the HTTP surface and its per-board handlers. Board
// handlers are created lazily per stop combination and kept for the
// process lifetime, so their schedule snapshots and last-good boards
// survive across requests.
type RestAPI struct {
	*app.Application

	mu     sync.Mutex
	boards map[string]*board.Handler
	trains map[string]*board.TrainHandler
}

// NewRestAPI creates a new RestAPI instance.
func NewRestAPI(application *app.Application) *RestAPI {
	return &RestAPI{
		Application: application,
		boards:      make(map[string]*board.Handler),
		trains:      make(map[string]*board.TrainHandler),
	}
}

// boardFor returns the long-lived board handler for a stop combination,
// creating it on first use. The kind discriminates journey, departures
// and arrivals boards that happen to share stop names.
func (api *RestAPI) boardFor(kind, departureName, arrivalName string, build func(*registry.Registries) *board.Handler) *board.Handler {
	key := boardKey(kind, departureName, arrivalName)

	api.mu.Lock()
	defer api.mu.Unlock()
	if handler, ok := api.boards[key]; ok {
		return handler
	}
	handler := build(registry.New())
	api.boards[key] = handler
	return handler
}

// trainFor returns the long-lived train handler for a stop pair.
func (api *RestAPI) trainFor(departureName, arrivalName string) *board.TrainHandler {
	key := boardKey("train", departureName, arrivalName)

	api.mu.Lock()
	defer api.mu.Unlock()
	if handler, ok := api.trains[key]; ok {
		return handler
	}
	handler := board.NewTrainHandler(api.Client, registry.New(), api.Logger, departureName, arrivalName)
	api.trains[key] = handler
	return handler
}

func boardKey(kind, departureName, arrivalName string) string {
	return kind + "|" + strings.ToLower(departureName) + "|" + strings.ToLower(arrivalName)
}
