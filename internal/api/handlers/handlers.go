// Package handlers implements the HTTP endpoints of the SMS analyzer API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/api/middleware"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// maxPageLimit caps every listing.
const maxPageLimit = 500

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the root and health endpoints.
type SystemHandler struct {
	storage        Pinger
	modelAvailable bool
	now            func() time.Time
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(storage Pinger, modelAvailable bool) *SystemHandler {
	return &SystemHandler{storage: storage, modelAvailable: modelAvailable, now: time.Now}
}

// Root handles GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message":    "Financial SMS Analyzer API",
		"status":     "running",
		"version":    Version,
		"llm_status": availability(h.modelAvailable),
	})
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	storageStatus := "connected"
	if h.storage == nil {
		storageStatus = "not configured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			log := logger.FromContext(r.Context())
			log.Warn().Err(err).Msg("Storage ping failed")
			storageStatus = "error: " + err.Error()
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"api":       "healthy",
		"storage":   storageStatus,
		"llm":       availability(h.modelAvailable),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

// parsePage reads skip and limit query parameters. Malformed values fall back to defaults.
func parsePage(r *http.Request, defaultLimit int) store.Page {
	query := r.URL.Query()
	page := store.Page{Skip: queryInt(query.Get("skip"), 0), Limit: queryInt(query.Get("limit"), defaultLimit)}
	return page.Normalize(defaultLimit, maxPageLimit)
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// writeStoreError maps storage errors onto HTTP responses.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound, failure string) {
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, notFound)
		return
	}
	log := logger.FromContext(r.Context())
	log.Error().Err(err).Msg(failure)
	middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
}
