package pipeline_test

import (
	"context"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// MockStore is a mock implementation of pipeline.Store that records calls.
type MockStore struct {
	FindDuplicateFunc     func(ctx context.Context, externalID, customerID string) (bool, error)
	UpsertCustomerFunc    func(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	InsertRawMessageFunc  func(ctx context.Context, rec *domain.RawMessageRecord) (string, error)
	InsertTransactionFunc func(ctx context.Context, rec *domain.TransactionRecord) (string, error)

	Calls        []string
	RawMessages  []*domain.RawMessageRecord
	Transactions []*domain.TransactionRecord
	Customers    []domain.Customer
}

func (m *MockStore) FindDuplicate(ctx context.Context, externalID, customerID string) (bool, error) {
	m.Calls = append(m.Calls, "FindDuplicate")
	if m.FindDuplicateFunc != nil {
		return m.FindDuplicateFunc(ctx, externalID, customerID)
	}
	return false, nil
}

func (m *MockStore) UpsertCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	m.Calls = append(m.Calls, "UpsertCustomer")
	m.Customers = append(m.Customers, c)
	if m.UpsertCustomerFunc != nil {
		return m.UpsertCustomerFunc(ctx, c)
	}
	return &c, nil
}

func (m *MockStore) InsertRawMessage(ctx context.Context, rec *domain.RawMessageRecord) (string, error) {
	m.Calls = append(m.Calls, "InsertRawMessage")
	m.RawMessages = append(m.RawMessages, rec)
	if m.InsertRawMessageFunc != nil {
		return m.InsertRawMessageFunc(ctx, rec)
	}
	return "raw-1", nil
}

func (m *MockStore) InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) (string, error) {
	m.Calls = append(m.Calls, "InsertTransaction")
	m.Transactions = append(m.Transactions, rec)
	if m.InsertTransactionFunc != nil {
		return m.InsertTransactionFunc(ctx, rec)
	}
	return "tx-1", nil
}

func (m *MockStore) called(name string) bool {
	for _, c := range m.Calls {
		if c == name {
			return true
		}
	}
	return false
}

// MockAnalyzer is a mock implementation of pipeline.Analyzer.
type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, message string) (*domain.AnalysisResult, error)
	Calls       int
}

func (m *MockAnalyzer) Analyze(ctx context.Context, message string) (*domain.AnalysisResult, error) {
	m.Calls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, message)
	}
	return nil, nil
}
