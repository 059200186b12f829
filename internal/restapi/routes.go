package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// Routes builds the HTTP routing table. Board endpoints sit behind the
// API key check; metrics and health do not.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()

	router.Handler(http.MethodGet, "/api/v1/board/:from/:to", validateAPIKey(api, api.journeyBoardHandler))
	router.Handler(http.MethodGet, "/api/v1/departures/:stop", validateAPIKey(api, api.departuresHandler))
	router.Handler(http.MethodGet, "/api/v1/arrivals/:stop", validateAPIKey(api, api.arrivalsHandler))
	router.Handler(http.MethodGet, "/api/v1/train/:name", validateAPIKey(api, api.trainHandler))
	router.Handler(http.MethodGet, "/api/v1/current-time.json", validateAPIKey(api, api.currentTimeHandler))

	router.Handler(http.MethodGet, "/metrics", api.Collector.Handler())
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	return NewRequestLoggingMiddleware(api.Logger)(router)
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	setJSONResponseType(&w)
	if _, err := w.Write([]byte(`{"status":"ok"}` + "\n")); err != nil {
		api.Logger.Error("failed to write health response", "error", err)
	}
}
