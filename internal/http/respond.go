package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/corptools"
)

// envelope is the uniform response shape: success plus either data or
// error, never both.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// relayResult forwards a remote call outcome to the client, reusing the
// upstream status code and passing the upstream payload through verbatim.
func relayResult(w http.ResponseWriter, result corptools.Result) {
	status := result.Status
	if status == 0 {
		if result.Success {
			status = http.StatusOK
		} else {
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
