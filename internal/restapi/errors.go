package restapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mbtaboard.org/internal/board"
	"mbtaboard.org/internal/mbta"
)

type errorResponse struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
}

func (api *RestAPI) sendError(w http.ResponseWriter, code int, text string) {
	response := errorResponse{
		Code:        code,
		CurrentTime: time.Now().UnixMilli(),
		Text:        text,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.Logger.Error("failed to encode error response", "error", err)
	}
}

// invalidAPIKeyResponse sends a 401 Unauthorized response for requests
// missing a valid API key.
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendError(w, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.Logger.Error("internal server error",
		"method", r.Method, "path", r.URL.Path, "error", err)
	api.sendError(w, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, text string) {
	api.sendError(w, http.StatusBadRequest, text)
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request, text string) {
	api.sendError(w, http.StatusNotFound, text)
}

// upstreamErrorResponse maps upstream client failures onto HTTP statuses:
// an unknown stop is the caller's mistake, a rejected key or exhausted
// rate budget is an upstream condition worth distinguishing from a plain
// server error.
func (api *RestAPI) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, board.ErrUnknownStop):
		api.sendNotFound(w, r, err.Error())
	case errors.Is(err, board.ErrTrainNotFound):
		api.sendNotFound(w, r, err.Error())
	case errors.Is(err, mbta.ErrAuthentication):
		api.sendError(w, http.StatusBadGateway, "upstream rejected the API key")
	case errors.Is(err, mbta.ErrRateLimited):
		api.sendError(w, http.StatusServiceUnavailable, "upstream rate limit exhausted")
	default:
		api.serverErrorResponse(w, r, err)
	}
}
