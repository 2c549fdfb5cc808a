package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/api/middleware"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/ingest"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

const defaultTypedMessageLimit = 10

// MessagesHandler handles single-message analysis and by-category listings.
type MessagesHandler struct {
	processor ingest.MessageProcessor
	repo      store.QueryRepository
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(processor ingest.MessageProcessor, repo store.QueryRepository) *MessagesHandler {
	return &MessagesHandler{processor: processor, repo: repo}
}

type analyzeRequest struct {
	Message      string `json:"message"`
	Date         string `json:"date"`
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	Sender       string `json:"sender"`
	SMSID        string `json:"sms_id"`
}

// AnalyzeMessage handles POST /api/analyze-message. It accepts a JSON body or
// form fields and responds with the processing outcome.
func (h *MessagesHandler) AnalyzeMessage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	preq := pipeline.Request{
		Message:    req.Message,
		Date:       req.Date,
		Sender:     req.Sender,
		ExternalID: req.SMSID,
	}
	if req.CustomerID != "" {
		preq.Customer = &domain.Customer{ID: req.CustomerID, Name: req.CustomerName, Phone: req.PhoneNumber}
	}

	out := h.processor.ProcessMessage(r.Context(), preq)
	middleware.WriteJSON(w, outcomeStatusCode(out), out)
}

func decodeAnalyzeRequest(r *http.Request) (analyzeRequest, error) {
	var req analyzeRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return req, err
		}
	} else if err := r.ParseForm(); err != nil {
		return req, err
	}
	req = analyzeRequest{
		Message:      r.FormValue("message"),
		Date:         r.FormValue("date"),
		CustomerID:   r.FormValue("customer_id"),
		CustomerName: r.FormValue("customer_name"),
		PhoneNumber:  r.FormValue("phone_number"),
		Sender:       r.FormValue("sender"),
		SMSID:        r.FormValue("sms_id"),
	}
	return req, nil
}

// outcomeStatusCode maps an outcome onto an HTTP status. Duplicates are not errors.
func outcomeStatusCode(out domain.Outcome) int {
	if out.Status != domain.StatusFailed {
		return http.StatusOK
	}
	switch out.ErrorKind {
	case domain.FailureValidation:
		return http.StatusBadRequest
	case domain.FailureModelAnalysis, domain.FailureModelResult:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ListMessagesByType handles GET /api/messages?message_type=&limit=
func (h *MessagesHandler) ListMessagesByType(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category, ok := domain.ParseCategory(query.Get("message_type"))
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "message_type must be a known message category")
		return
	}
	page := store.Page{Limit: queryInt(query.Get("limit"), defaultTypedMessageLimit)}.Normalize(defaultTypedMessageLimit, maxPageLimit)

	messages, err := h.repo.ListMessagesByType(r.Context(), string(category), page.Limit)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("message_type", string(category)).Msg("Failed to list messages by type")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if messages == nil {
		messages = []store.TypedMessage{}
	}
	middleware.WriteJSON(w, http.StatusOK, messages)
}
