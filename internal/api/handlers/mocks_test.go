package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

var errNotImplemented = errors.New("not implemented")

type mockQueryRepo struct {
	ListCustomersFunc               func(ctx context.Context, page store.Page) ([]store.CustomerView, int64, error)
	ListCustomerTransactionsFunc    func(ctx context.Context, customerID, messageType string, page store.Page) ([]store.TransactionView, int64, error)
	ListCustomerMessagesFunc        func(ctx context.Context, customerID string, page store.Page) ([]store.MessageView, int64, error)
	GetCustomerSummaryFunc          func(ctx context.Context, customerID string) (*store.CustomerSummary, error)
	GetAnalyticsSummaryFunc         func(ctx context.Context) (*store.AnalyticsSummary, error)
	CountMessageTypesFunc           func(ctx context.Context) (map[string]int64, error)
	ListMessagesByTypeFunc          func(ctx context.Context, messageType string, limit int) ([]store.TypedMessage, error)
	ListTransactionsByDateRangeFunc func(ctx context.Context, start, end time.Time) ([]store.TransactionView, error)
}

func (m *mockQueryRepo) ListCustomers(ctx context.Context, page store.Page) ([]store.CustomerView, int64, error) {
	if m.ListCustomersFunc != nil {
		return m.ListCustomersFunc(ctx, page)
	}
	return nil, 0, errNotImplemented
}

func (m *mockQueryRepo) ListCustomerTransactions(ctx context.Context, customerID, messageType string, page store.Page) ([]store.TransactionView, int64, error) {
	if m.ListCustomerTransactionsFunc != nil {
		return m.ListCustomerTransactionsFunc(ctx, customerID, messageType, page)
	}
	return nil, 0, errNotImplemented
}

func (m *mockQueryRepo) ListCustomerMessages(ctx context.Context, customerID string, page store.Page) ([]store.MessageView, int64, error) {
	if m.ListCustomerMessagesFunc != nil {
		return m.ListCustomerMessagesFunc(ctx, customerID, page)
	}
	return nil, 0, errNotImplemented
}

func (m *mockQueryRepo) GetCustomerSummary(ctx context.Context, customerID string) (*store.CustomerSummary, error) {
	if m.GetCustomerSummaryFunc != nil {
		return m.GetCustomerSummaryFunc(ctx, customerID)
	}
	return nil, errNotImplemented
}

func (m *mockQueryRepo) GetAnalyticsSummary(ctx context.Context) (*store.AnalyticsSummary, error) {
	if m.GetAnalyticsSummaryFunc != nil {
		return m.GetAnalyticsSummaryFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockQueryRepo) CountMessageTypes(ctx context.Context) (map[string]int64, error) {
	if m.CountMessageTypesFunc != nil {
		return m.CountMessageTypesFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockQueryRepo) ListMessagesByType(ctx context.Context, messageType string, limit int) ([]store.TypedMessage, error) {
	if m.ListMessagesByTypeFunc != nil {
		return m.ListMessagesByTypeFunc(ctx, messageType, limit)
	}
	return nil, errNotImplemented
}

func (m *mockQueryRepo) ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]store.TransactionView, error) {
	if m.ListTransactionsByDateRangeFunc != nil {
		return m.ListTransactionsByDateRangeFunc(ctx, start, end)
	}
	return nil, errNotImplemented
}

type mockProcessor struct {
	ProcessMessageFunc func(ctx context.Context, req pipeline.Request) domain.Outcome
}

func (m *mockProcessor) ProcessMessage(ctx context.Context, req pipeline.Request) domain.Outcome {
	return m.ProcessMessageFunc(ctx, req)
}

type mockPublisher struct {
	published []*jobs.IngestBatchJob
	err       error
}

func (m *mockPublisher) PublishIngestBatch(ctx context.Context, job *jobs.IngestBatchJob) error {
	if m.err != nil {
		return m.err
	}
	job.JobID = "job-1"
	job.Status = jobs.JobStatusPending
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockStorage struct {
	UploadBytesFunc func(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error)
}

func (m *mockStorage) UploadFile(ctx context.Context, bucket, object, path string) error {
	return errNotImplemented
}

func (m *mockStorage) UploadBytes(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error) {
	return m.UploadBytesFunc(ctx, bucket, object, data, contentType)
}

func (m *mockStorage) FetchFromGCS(ctx context.Context, uri string) ([]byte, error) {
	return nil, errNotImplemented
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }
