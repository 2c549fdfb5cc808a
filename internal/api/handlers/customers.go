package handlers

import (
	"net/http"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/api/middleware"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

const (
	defaultCustomersLimit    = 100
	defaultTransactionsLimit = 50
	defaultMessagesLimit     = 50
)

// CustomersHandler handles customer-related endpoints.
type CustomersHandler struct {
	repo store.QueryRepository
}

// NewCustomersHandler creates a new customers handler.
func NewCustomersHandler(repo store.QueryRepository) *CustomersHandler {
	return &CustomersHandler{repo: repo}
}

// ListCustomers handles GET /api/customers
func (h *CustomersHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, defaultCustomersLimit)

	customers, total, err := h.repo.ListCustomers(r.Context(), page)
	if err != nil {
		writeStoreError(w, r, err, "", "Failed to list customers")
		return
	}
	if customers == nil {
		customers = []store.CustomerView{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     total,
		"skip":      page.Skip,
		"limit":     page.Limit,
	})
}

// ListTransactions handles GET /api/customers/{id}/transactions
func (h *CustomersHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	page := parsePage(r, defaultTransactionsLimit)

	messageType := ""
	if raw := r.URL.Query().Get("message_type"); raw != "" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			middleware.WriteError(w, http.StatusBadRequest, "message_type must be a known message category")
			return
		}
		messageType = string(category)
	}

	transactions, total, err := h.repo.ListCustomerTransactions(r.Context(), customerID, messageType, page)
	if err != nil {
		writeStoreError(w, r, err, "Customer not found", "Failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []store.TransactionView{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"total":        total,
		"skip":         page.Skip,
		"limit":        page.Limit,
		"customer_id":  customerID,
	})
}

// GetSummary handles GET /api/customers/{id}/summary
func (h *CustomersHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.GetCustomerSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err, "Customer not found", "Failed to build customer summary")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, summary)
}

// ListMessages handles GET /api/customers/{id}/messages
func (h *CustomersHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	page := parsePage(r, defaultMessagesLimit)

	messages, total, err := h.repo.ListCustomerMessages(r.Context(), customerID, page)
	if err != nil {
		writeStoreError(w, r, err, "Customer not found", "Failed to list messages")
		return
	}
	if messages == nil {
		messages = []store.MessageView{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages":    messages,
		"total":       total,
		"skip":        page.Skip,
		"limit":       page.Limit,
		"customer_id": customerID,
	})
}
