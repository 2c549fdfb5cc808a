package pipeline

import (
	"context"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// Store is the persistence collaborator used by the processor.
type Store interface {
	// FindDuplicate reports whether externalID was already stored for customerID.
	FindDuplicate(ctx context.Context, externalID, customerID string) (bool, error)
	UpsertCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	InsertRawMessage(ctx context.Context, rec *domain.RawMessageRecord) (string, error)
	InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) (string, error)
}

// Analyzer understands a message with the hosted model.
// This interface enables mocking the model path in tests.
type Analyzer interface {
	Analyze(ctx context.Context, message string) (*domain.AnalysisResult, error)
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time
