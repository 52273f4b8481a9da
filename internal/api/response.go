package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/omara/internal/errors"
)

// maxBodyBytes caps request bodies; cloth images arrive base64 encoded.
const maxBodyBytes = 10 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// writeError maps err to a status and body. Errors that are not domain
// errors are logged and reported as a bare internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *errors.Error
	if !errors.As(err, &e) {
		slog.Error("unhandled error", "error", err, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()))
		e = errors.Internal("internal error")
	}
	jsonResponse(w, e.HTTPStatus(), errorBody{
		Error:   e.Message,
		Code:    string(e.Code),
		Details: e.Details,
	})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errors.Validationf("request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errors.Validation("request body is empty")
		default:
			return errors.Validation("invalid request body")
		}
	}
	return nil
}
