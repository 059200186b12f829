package restapi

import (
	"net/http"
	"time"
)

// currentTimeEntry carries the server clock in both machine and human
// readable form.
type currentTimeEntry struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
}

type currentTimeResponse struct {
	Code        int              `json:"code"`
	CurrentTime int64            `json:"currentTime"`
	Entry       currentTimeEntry `json:"entry"`
}

// currentTimeHandler writes a JSON response with information about the
// current time.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	api.sendResponse(w, r, currentTimeResponse{
		Code:        http.StatusOK,
		CurrentTime: now.UnixMilli(),
		Entry: currentTimeEntry{
			ReadableTime: now.Format(time.RFC3339),
			Time:         now.UnixMilli(),
		},
	})
}
