package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/errors"
	"github.com/erazemk/omara/internal/imagestore"
)

// SystemHandler serves health checks and locally stored images.
type SystemHandler struct {
	DB     *db.DB
	Images imagestore.Getter
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /api/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}
	jsonResponse(w, code, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Image handles GET /api/images/*. Keys are content-unique, so responses
// are cached indefinitely.
func (h *SystemHandler) Image(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.Images.Get(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}
