package http

import (
	"encoding/json"
	"net/http"

	"github.com/caretrack/caretrack/pkg/apperror"
)

// Envelope is the uniform response body for every API endpoint.
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, statusCode int, status bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, true, message, data)
}

// writeError maps the error through the application error catalog so
// handlers never decide status codes by string matching.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperror.MapError(err)
	writeJSON(w, appErr.Status, false, appErr.Message, nil)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, false, message, nil)
}

// actorFrom returns the acting user from the X-User header, or nil for
// anonymous callers. The actor is passed down the call chain explicitly.
func actorFrom(r *http.Request) *string {
	if v := r.Header.Get("X-User"); v != "" {
		return &v
	}
	return nil
}
