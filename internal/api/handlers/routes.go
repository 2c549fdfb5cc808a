package handlers

import "net/http"

// Handlers groups every endpoint handler served by the API.
type Handlers struct {
	System    *SystemHandler
	Messages  *MessagesHandler
	Batches   *BatchHandler
	Customers *CustomersHandler
	Analytics *AnalyticsHandler
	Jobs      *JobsHandler
}

// PublicPaths are served without an API key.
var PublicPaths = []string{"/", "/health"}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.System.Root)
	mux.HandleFunc("GET /health", h.System.Health)

	mux.HandleFunc("POST /api/analyze-message", h.Messages.AnalyzeMessage)
	mux.HandleFunc("GET /api/messages", h.Messages.ListMessagesByType)

	mux.HandleFunc("POST /api/upload-json", h.Batches.UploadJSON)
	mux.HandleFunc("GET /api/processing-status", h.Batches.ProcessingStatus)
	mux.HandleFunc("POST /api/reset-processing-status", h.Batches.ResetProcessingStatus)

	mux.HandleFunc("GET /api/customers", h.Customers.ListCustomers)
	mux.HandleFunc("GET /api/customers/{id}/transactions", h.Customers.ListTransactions)
	mux.HandleFunc("GET /api/customers/{id}/summary", h.Customers.GetSummary)
	mux.HandleFunc("GET /api/customers/{id}/messages", h.Customers.ListMessages)

	mux.HandleFunc("GET /api/analytics/summary", h.Analytics.Summary)
	mux.HandleFunc("GET /api/analytics/message-type-counts", h.Analytics.MessageTypeCounts)

	mux.HandleFunc("GET /api/jobs", h.Jobs.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.Jobs.GetJob)
}
