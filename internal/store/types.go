// Package store defines the storage contract shared by the BigQuery and SQLite
// backends, together with the read-side views served by the HTTP API.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// MessageRepository persists processed messages. Every implementation also
// satisfies pipeline.Store.
type MessageRepository interface {
	// FindDuplicate reports whether a raw message with externalID already exists for customerID.
	FindDuplicate(ctx context.Context, externalID, customerID string) (bool, error)

	// UpsertCustomer returns the stored customer with the given id, creating it when absent.
	UpsertCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)

	// InsertRawMessage stores one raw message and returns its generated id.
	InsertRawMessage(ctx context.Context, rec *domain.RawMessageRecord) (string, error)

	// InsertTransaction stores one structured transaction and returns its generated id.
	InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) (string, error)
}

// QueryRepository serves the read side of the API.
type QueryRepository interface {
	// ListCustomers returns a page of customers, newest first, and the total count.
	ListCustomers(ctx context.Context, page Page) ([]CustomerView, int64, error)

	// ListCustomerTransactions returns a page of transactions for a customer, newest first.
	// An empty messageType matches every category.
	ListCustomerTransactions(ctx context.Context, customerID, messageType string, page Page) ([]TransactionView, int64, error)

	// ListCustomerMessages returns a page of raw messages for a customer, newest first.
	ListCustomerMessages(ctx context.Context, customerID string, page Page) ([]MessageView, int64, error)

	// GetCustomerSummary aggregates a customer's transactions by category.
	// Returns ErrNotFound when the customer does not exist.
	GetCustomerSummary(ctx context.Context, customerID string) (*CustomerSummary, error)

	// GetAnalyticsSummary aggregates every stored transaction.
	GetAnalyticsSummary(ctx context.Context) (*AnalyticsSummary, error)

	// CountMessageTypes counts raw messages per category.
	CountMessageTypes(ctx context.Context) (map[string]int64, error)

	// ListMessagesByType returns up to limit messages of one category.
	ListMessagesByType(ctx context.Context, messageType string, limit int) ([]TypedMessage, error)

	// ListTransactionsByDateRange returns transactions whose date falls within [start, end].
	ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]TransactionView, error)
}

// Repository is a complete storage backend.
type Repository interface {
	MessageRepository
	QueryRepository

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Page selects a window of a listing.
type Page struct {
	Skip  int
	Limit int
}

// CustomerView is a stored customer.
type CustomerView struct {
	CustomerID  string    `json:"customer_id"`
	Name        string    `json:"customer_name"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MessageView is a stored raw message.
type MessageView struct {
	RawMessageID    string    `json:"raw_message_id"`
	CustomerID      string    `json:"customer_id"`
	MessageText     string    `json:"message_text"`
	MessageType     string    `json:"message_type"`
	ImportantPoints []string  `json:"important_points"`
	Sender          string    `json:"from,omitempty"`
	SMSID           string    `json:"sms_id,omitempty"`
	Processed       bool      `json:"processed"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionView is a stored transaction. Fields carries every extracted value,
// including the ones promoted to dedicated columns.
type TransactionView struct {
	TransactionID   string        `json:"transaction_id"`
	CustomerID      string        `json:"customer_id"`
	MessageType     string        `json:"message_type"`
	RawMessageID    string        `json:"raw_message_id"`
	SMSID           string        `json:"sms_id,omitempty"`
	TransactionDate string        `json:"transaction_date,omitempty"`
	Amount          *float64      `json:"amount,omitempty"`
	Fields          domain.Fields `json:"extracted_data"`
	CreatedAt       time.Time     `json:"created_at"`
}

// TypeStats aggregates transactions of one category.
type TypeStats struct {
	MessageType    string  `json:"message_type"`
	Count          int64   `json:"count"`
	TotalAmount    float64 `json:"total_amount"`
	UniqueLoans    int64   `json:"unique_loans"`
	UniqueFolios   int64   `json:"unique_folios"`
	UniquePolicies int64   `json:"unique_policies"`
	MaxOutstanding float64 `json:"max_outstanding"`
}

// CustomerSummary is the per-customer aggregate.
type CustomerSummary struct {
	Customer          CustomerView `json:"customer"`
	TotalTransactions int64        `json:"total_transactions"`
	MessageTypeStats  []TypeStats  `json:"message_type_stats"`
}

// AnalyticsSummary is the aggregate over all customers.
type AnalyticsSummary struct {
	TotalCustomers     int64             `json:"total_customers"`
	TotalTransactions  int64             `json:"total_transactions"`
	MessageTypeStats   []TypeStats       `json:"message_type_stats"`
	RecentTransactions []TransactionView `json:"recent_transactions"`
}

// TypedMessage is one entry of a by-category message listing. Promotional
// messages carry ImportantPoints, the others carry ExtractedData.
type TypedMessage struct {
	Message         string        `json:"message"`
	ImportantPoints []string      `json:"important_points,omitempty"`
	ExtractedData   domain.Fields `json:"extracted_data,omitempty"`
}

// RecentTransactionsLimit bounds AnalyticsSummary.RecentTransactions.
const RecentTransactionsLimit = 10

// Normalize clamps a page to sane bounds, substituting def for a non-positive limit.
func (p Page) Normalize(def, max int) Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	return p
}
