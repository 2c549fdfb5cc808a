package handlers

import (
	"net/http"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/api/middleware"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// AnalyticsHandler handles aggregate endpoints.
type AnalyticsHandler struct {
	repo store.QueryRepository
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(repo store.QueryRepository) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo}
}

// Summary handles GET /api/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.GetAnalyticsSummary(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "", "Failed to build analytics summary")
		return
	}
	if summary.MessageTypeStats == nil {
		summary.MessageTypeStats = []store.TypeStats{}
	}
	if summary.RecentTransactions == nil {
		summary.RecentTransactions = []store.TransactionView{}
	}
	middleware.WriteJSON(w, http.StatusOK, summary)
}

// MessageTypeCounts handles GET /api/analytics/message-type-counts
func (h *AnalyticsHandler) MessageTypeCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.CountMessageTypes(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "", "Failed to count message types")
		return
	}
	if counts == nil {
		counts = map[string]int64{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"counts": counts})
}
