package restapi

import (
	"net/http"
	"time"

	"mbtaboard.org/internal/board"
	"mbtaboard.org/internal/logging"
	"mbtaboard.org/internal/registry"
	"mbtaboard.org/internal/utils"
)

func (api *RestAPI) journeyBoardHandler(w http.ResponseWriter, r *http.Request) {
	from := utils.ExtractIDFromParams(r, "from")
	to := utils.ExtractIDFromParams(r, "to")
	if from == "" || to == "" {
		api.badRequestResponse(w, r, "both a departure and an arrival stop are required")
		return
	}

	handler := api.boardFor("journey", from, to, func(reg *registry.Registries) *board.Handler {
		return board.NewJourneyHandler(api.Client, reg, api.Logger, api.Collector, from, to)
	})
	api.renderBoard(w, r, handler)
}

func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	stop := utils.ExtractIDFromParams(r, "stop")
	if stop == "" {
		api.badRequestResponse(w, r, "a stop name is required")
		return
	}

	handler := api.boardFor("departures", stop, "", func(reg *registry.Registries) *board.Handler {
		return board.NewDeparturesHandler(api.Client, reg, api.Logger, api.Collector, stop)
	})
	api.renderBoard(w, r, handler)
}

func (api *RestAPI) arrivalsHandler(w http.ResponseWriter, r *http.Request) {
	stop := utils.ExtractIDFromParams(r, "stop")
	if stop == "" {
		api.badRequestResponse(w, r, "a stop name is required")
		return
	}

	handler := api.boardFor("arrivals", "", stop, func(reg *registry.Registries) *board.Handler {
		return board.NewArrivalsHandler(api.Client, reg, api.Logger, api.Collector, stop)
	})
	api.renderBoard(w, r, handler)
}

// renderBoard refreshes a board and writes it out. A failed refresh with
// a retained last-good board is served stale rather than erroring.
func (api *RestAPI) renderBoard(w http.ResponseWriter, r *http.Request, handler *board.Handler) {
	trips, err := handler.Refresh(r.Context())
	if err != nil {
		if len(trips) == 0 {
			api.upstreamErrorResponse(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Warn("serving stale board",
			"error", err, "trips", len(trips))
	}
	api.sendResponse(w, r, NewBoardResponse(trips, handler.Registries(), time.Now()))
}
