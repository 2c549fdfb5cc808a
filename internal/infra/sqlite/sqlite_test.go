package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

func createTestRepository(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	repo, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Failed to close repository: %v", err)
		}
	})
	return repo
}

var created = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func seedMessage(t *testing.T, repo *Repository, customerID, smsID string, category domain.Category, fields domain.Fields) (string, string) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.UpsertCustomer(ctx, domain.Customer{ID: customerID, Name: "Customer " + customerID, Phone: "Unknown-" + customerID}); err != nil {
		t.Fatalf("UpsertCustomer: %v", err)
	}
	rawID, err := repo.InsertRawMessage(ctx, &domain.RawMessageRecord{
		CustomerID:      customerID,
		Text:            "message " + smsID,
		Category:        category,
		ImportantPoints: []string{"point " + smsID},
		ExternalID:      smsID,
		Processed:       true,
		CreatedAt:       created,
	})
	if err != nil {
		t.Fatalf("InsertRawMessage: %v", err)
	}
	if category.IsPromotional() {
		return rawID, ""
	}
	txID, err := repo.InsertTransaction(ctx, &domain.TransactionRecord{
		CustomerID:      customerID,
		Category:        category,
		RawMessageID:    rawID,
		ExternalID:      smsID,
		TransactionDate: fields.String(domain.FieldTransactionDate),
		CreatedAt:       created,
		Fields:          fields,
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}
	return rawID, txID
}

func TestOpen_MigratesToLatest(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	v, err := repo.SchemaVersionOf(ctx)
	if err != nil {
		t.Fatalf("SchemaVersionOf: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("schema version = %d, want %d", v, SchemaVersion)
	}

	// Re-running is a no-op.
	if err := repo.Migrate(ctx); err != nil {
		t.Errorf("second Migrate: %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestUpsertCustomer_KeepsExisting(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	first, err := repo.UpsertCustomer(ctx, domain.Customer{ID: "C1", Name: "Asha", Phone: "9999"})
	if err != nil {
		t.Fatalf("UpsertCustomer: %v", err)
	}
	if first.Name != "Asha" {
		t.Errorf("Name = %q, want Asha", first.Name)
	}

	second, err := repo.UpsertCustomer(ctx, domain.Customer{ID: "C1", Name: "Customer C1", Phone: "Unknown-C1"})
	if err != nil {
		t.Fatalf("UpsertCustomer: %v", err)
	}
	if *second != *first {
		t.Errorf("existing customer changed: got %+v, want %+v", second, first)
	}

	if _, err := repo.UpsertCustomer(ctx, domain.Customer{}); err == nil {
		t.Error("expected error for empty customer id")
	}
}

func TestFindDuplicate(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()
	seedMessage(t, repo, "C1", "sms-1", domain.CategoryPromotional, nil)

	tests := []struct {
		name       string
		smsID      string
		customerID string
		want       bool
	}{
		{"same customer", "sms-1", "C1", true},
		{"other customer", "sms-1", "C2", false},
		{"other sms", "sms-2", "C1", false},
		{"no sms id", "", "C1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindDuplicate(ctx, tt.smsID, tt.customerID)
			if err != nil {
				t.Fatalf("FindDuplicate: %v", err)
			}
			if got != tt.want {
				t.Errorf("FindDuplicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListCustomerTransactions(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	seedMessage(t, repo, "C1", "a", domain.CategoryDebitTransaction, domain.Fields{
		domain.FieldAmount: 250.0, domain.FieldTransactionDate: "2024-06-01",
	})
	seedMessage(t, repo, "C1", "b", domain.CategoryEMIPayment, domain.Fields{
		domain.FieldAmount: 15000.0, domain.FieldLoanReference: "HL00123456", domain.FieldTransactionDate: "2024-06-05",
	})
	seedMessage(t, repo, "C2", "c", domain.CategoryDebitTransaction, domain.Fields{domain.FieldAmount: 10.0})

	all, total, err := repo.ListCustomerTransactions(ctx, "C1", "", store.Page{Limit: 10})
	if err != nil {
		t.Fatalf("ListCustomerTransactions: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("got %d rows (total %d), want 2", len(all), total)
	}

	emi, total, err := repo.ListCustomerTransactions(ctx, "C1", string(domain.CategoryEMIPayment), store.Page{Limit: 10})
	if err != nil {
		t.Fatalf("ListCustomerTransactions: %v", err)
	}
	if total != 1 || len(emi) != 1 {
		t.Fatalf("got %d EMI rows (total %d), want 1", len(emi), total)
	}
	got := emi[0]
	if got.Amount == nil || *got.Amount != 15000 {
		t.Errorf("Amount = %v, want 15000", got.Amount)
	}
	if got.TransactionDate != "2024-06-05" {
		t.Errorf("TransactionDate = %q", got.TransactionDate)
	}
	if got.Fields.String(domain.FieldLoanReference) != "HL00123456" {
		t.Errorf("Fields = %v", got.Fields)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}

	page, total, err := repo.ListCustomerTransactions(ctx, "C1", "", store.Page{Skip: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListCustomerTransactions: %v", err)
	}
	if total != 2 || len(page) != 1 {
		t.Errorf("skip=1: got %d rows (total %d), want 1 (2)", len(page), total)
	}
}

func TestListCustomerMessagesAndCounts(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	seedMessage(t, repo, "C1", "p1", domain.CategoryPromotional, nil)
	seedMessage(t, repo, "C1", "p2", domain.CategoryPromotional, nil)
	seedMessage(t, repo, "C1", "d1", domain.CategoryDebitTransaction, domain.Fields{domain.FieldAmount: 1.0})

	messages, total, err := repo.ListCustomerMessages(ctx, "C1", store.Page{Limit: 2})
	if err != nil {
		t.Fatalf("ListCustomerMessages: %v", err)
	}
	if total != 3 || len(messages) != 2 {
		t.Fatalf("got %d messages (total %d), want 2 (3)", len(messages), total)
	}
	if len(messages[0].ImportantPoints) != 1 {
		t.Errorf("ImportantPoints = %v", messages[0].ImportantPoints)
	}

	counts, err := repo.CountMessageTypes(ctx)
	if err != nil {
		t.Fatalf("CountMessageTypes: %v", err)
	}
	if counts["PROMOTIONAL"] != 2 || counts["DEBIT_TRANSACTION"] != 1 {
		t.Errorf("counts = %v", counts)
	}

	promos, err := repo.ListMessagesByType(ctx, "PROMOTIONAL", 10)
	if err != nil {
		t.Fatalf("ListMessagesByType: %v", err)
	}
	if len(promos) != 2 || len(promos[0].ImportantPoints) != 1 || promos[0].ExtractedData != nil {
		t.Errorf("promotional listing = %+v", promos)
	}

	debits, err := repo.ListMessagesByType(ctx, "DEBIT_TRANSACTION", 10)
	if err != nil {
		t.Fatalf("ListMessagesByType: %v", err)
	}
	if len(debits) != 1 || debits[0].Message != "message d1" {
		t.Fatalf("debit listing = %+v", debits)
	}
	if v, ok := debits[0].ExtractedData.Float(domain.FieldAmount); !ok || v != 1 {
		t.Errorf("ExtractedData = %v", debits[0].ExtractedData)
	}
}

func TestSummaries(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	seedMessage(t, repo, "C1", "e1", domain.CategoryEMIPayment, domain.Fields{
		domain.FieldAmount: 100.0, domain.FieldLoanReference: "L1", domain.FieldTotalOutstanding: 900.0,
	})
	seedMessage(t, repo, "C1", "e2", domain.CategoryEMIPayment, domain.Fields{
		domain.FieldAmount: 100.0, domain.FieldLoanReference: "L1", domain.FieldTotalOutstanding: 800.0,
	})
	seedMessage(t, repo, "C1", "s1", domain.CategorySIPInvestment, domain.Fields{
		domain.FieldAmount: 500.0, domain.FieldFolioNumber: "F1",
	})
	seedMessage(t, repo, "C2", "i1", domain.CategoryInsurancePayment, domain.Fields{
		domain.FieldAmount: 2000.0, domain.FieldPolicyNumber: "P1",
	})

	summary, err := repo.GetCustomerSummary(ctx, "C1")
	if err != nil {
		t.Fatalf("GetCustomerSummary: %v", err)
	}
	if summary.TotalTransactions != 3 {
		t.Errorf("TotalTransactions = %d, want 3", summary.TotalTransactions)
	}
	if len(summary.MessageTypeStats) != 2 {
		t.Fatalf("stats = %+v", summary.MessageTypeStats)
	}
	emi := summary.MessageTypeStats[0]
	want := store.TypeStats{MessageType: "EMI_PAYMENT", Count: 2, TotalAmount: 200, UniqueLoans: 1, MaxOutstanding: 900}
	if emi != want {
		t.Errorf("EMI stats = %+v, want %+v", emi, want)
	}
	if summary.Customer.Name != "Customer C1" {
		t.Errorf("Customer = %+v", summary.Customer)
	}

	if _, err := repo.GetCustomerSummary(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetCustomerSummary(missing) err = %v, want ErrNotFound", err)
	}

	analytics, err := repo.GetAnalyticsSummary(ctx)
	if err != nil {
		t.Fatalf("GetAnalyticsSummary: %v", err)
	}
	if analytics.TotalCustomers != 2 || analytics.TotalTransactions != 4 {
		t.Errorf("analytics totals = %d customers, %d transactions", analytics.TotalCustomers, analytics.TotalTransactions)
	}
	if len(analytics.RecentTransactions) != 4 {
		t.Errorf("recent = %d, want 4", len(analytics.RecentTransactions))
	}
}

func TestListTransactionsByDateRange(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	seedMessage(t, repo, "C1", "a", domain.CategoryDebitTransaction, domain.Fields{domain.FieldTransactionDate: "2024-01-10"})
	seedMessage(t, repo, "C1", "b", domain.CategoryDebitTransaction, domain.Fields{domain.FieldTransactionDate: "2024-02-10"})
	seedMessage(t, repo, "C1", "c", domain.CategoryDebitTransaction, domain.Fields{domain.FieldTransactionDate: "bad"})

	got, err := repo.ListTransactionsByDateRange(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListTransactionsByDateRange: %v", err)
	}
	if len(got) != 1 || got[0].TransactionDate != "2024-01-10" {
		t.Errorf("got %+v", got)
	}
}

func TestProcessorPersistsToSQLite(t *testing.T) {
	repo := createTestRepository(t)
	ctx := context.Background()

	p := pipeline.NewProcessor(pipeline.Options{
		Store:           repo,
		FallbackEnabled: true,
		DefaultCustomer: domain.Customer{ID: "GUEST", Name: "Guest Customer", Phone: "Unknown-GUEST"},
		Clock:           func() time.Time { return created },
	})

	req := pipeline.Request{
		Message:    "Rs. 5,000.00 credited to A/c XX1234 on 05-Jan-24 from HDFC Bank",
		ExternalID: "sms-42",
	}
	out := p.ProcessMessage(ctx, req)
	if out.Status != domain.StatusProcessed {
		t.Fatalf("Status = %s (%s)", out.Status, out.ErrorMessage)
	}
	if out.RawMessageID == "" || out.TransactionID == "" {
		t.Fatalf("expected stored ids, got %+v", out)
	}

	again := p.ProcessMessage(ctx, req)
	if again.Status != domain.StatusDuplicate {
		t.Errorf("second run Status = %s, want duplicate", again.Status)
	}

	txs, total, err := repo.ListCustomerTransactions(ctx, "GUEST", "", store.Page{Limit: 10})
	if err != nil {
		t.Fatalf("ListCustomerTransactions: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	if txs[0].TransactionDate != "2024-01-05" || txs[0].Fields.String(domain.FieldBankName) != "HDFC Bank" {
		t.Errorf("stored transaction = %+v", txs[0])
	}
}
