package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

const (
	customersTable    = "customers"
	rawMessagesTable  = "raw_messages"
	transactionsTable = "transactions"
)

// Dataset locates the SMS tables.
type Dataset struct {
	ProjectID string
	DatasetID string
}

// Table returns the fully qualified, backquoted name of a table in the dataset.
func (d Dataset) Table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.ProjectID, d.DatasetID, name)
}

// Repository is the BigQuery implementation of store.Repository.
// It holds a shared BigQuery client to avoid creating a new connection for each operation.
type Repository struct {
	client *bigquery.Client
	ds     Dataset
}

var _ store.Repository = (*Repository)(nil)

// NewRepository creates a Repository with its own client for the given project.
func NewRepository(ctx context.Context, ds Dataset) (*Repository, error) {
	if ds.ProjectID == "" || ds.DatasetID == "" {
		return nil, fmt.Errorf("NewRepository: project and dataset are required")
	}
	client, err := bigquery.NewClient(ctx, ds.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, ds: ds}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Ping checks that the dataset is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.client.DatasetInProject(r.ds.ProjectID, r.ds.DatasetID).Metadata(ctx); err != nil {
		return fmt.Errorf("Ping: dataset metadata: %w", err)
	}
	return nil
}

func (r *Repository) FindDuplicate(ctx context.Context, externalID, customerID string) (bool, error) {
	return FindDuplicateWithClient(ctx, r.client, r.ds, externalID, customerID)
}

func (r *Repository) UpsertCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	return UpsertCustomerWithClient(ctx, r.client, r.ds, customer)
}

func (r *Repository) InsertRawMessage(ctx context.Context, rec *domain.RawMessageRecord) (string, error) {
	return InsertRawMessageWithClient(ctx, r.client, r.ds, rec)
}

func (r *Repository) InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) (string, error) {
	return InsertTransactionWithClient(ctx, r.client, r.ds, rec)
}

func (r *Repository) ListCustomers(ctx context.Context, page store.Page) ([]store.CustomerView, int64, error) {
	return ListCustomersWithClient(ctx, r.client, r.ds, page)
}

func (r *Repository) ListCustomerTransactions(ctx context.Context, customerID, messageType string, page store.Page) ([]store.TransactionView, int64, error) {
	return ListCustomerTransactionsWithClient(ctx, r.client, r.ds, customerID, messageType, page)
}

func (r *Repository) ListCustomerMessages(ctx context.Context, customerID string, page store.Page) ([]store.MessageView, int64, error) {
	return ListCustomerMessagesWithClient(ctx, r.client, r.ds, customerID, page)
}

func (r *Repository) GetCustomerSummary(ctx context.Context, customerID string) (*store.CustomerSummary, error) {
	return GetCustomerSummaryWithClient(ctx, r.client, r.ds, customerID)
}

func (r *Repository) GetAnalyticsSummary(ctx context.Context) (*store.AnalyticsSummary, error) {
	return GetAnalyticsSummaryWithClient(ctx, r.client, r.ds)
}

func (r *Repository) CountMessageTypes(ctx context.Context) (map[string]int64, error) {
	return CountMessageTypesWithClient(ctx, r.client, r.ds)
}

func (r *Repository) ListMessagesByType(ctx context.Context, messageType string, limit int) ([]store.TypedMessage, error) {
	return ListMessagesByTypeWithClient(ctx, r.client, r.ds, messageType, limit)
}

func (r *Repository) ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]store.TransactionView, error) {
	return ListTransactionsByDateRangeWithClient(ctx, r.client, r.ds, start, end)
}
