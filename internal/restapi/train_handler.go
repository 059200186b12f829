package restapi

import (
	"net/http"
	"time"

	"mbtaboard.org/internal/utils"
)

// trainHandler finds a single named train between two stops, scanning up
// to a week ahead for the next day it runs.
func (api *RestAPI) trainHandler(w http.ResponseWriter, r *http.Request) {
	name := utils.ExtractIDFromParams(r, "name")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if name == "" {
		api.badRequestResponse(w, r, "a train name is required")
		return
	}
	if from == "" || to == "" {
		api.badRequestResponse(w, r, "both from and to stops are required")
		return
	}

	handler := api.trainFor(from, to)
	trip, serviceDay, err := handler.Find(r.Context(), name)
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, NewTrainResponse(trip, handler.Registries(), serviceDay, time.Now()))
}
