package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

func TestDatasetTable(t *testing.T) {
	ds := Dataset{ProjectID: "proj", DatasetID: "sms"}
	if got, want := ds.Table(transactionsTable), "`proj.sms.transactions`"; got != want {
		t.Errorf("Table = %q, want %q", got, want)
	}
}

func TestNewTransactionRow(t *testing.T) {
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	rec := &domain.TransactionRecord{
		CustomerID:      "C1",
		Category:        domain.CategoryEMIPayment,
		RawMessageID:    "raw-1",
		ExternalID:      "sms-9",
		TransactionDate: "2024-03-05",
		CreatedAt:       created,
		Fields: domain.Fields{
			domain.FieldAmount:        15000.0,
			domain.FieldLoanReference: "HL00123456",
			domain.FieldLoanType:      "Home Loan",
		},
	}

	row, err := newTransactionRow("tx-1", rec)
	if err != nil {
		t.Fatalf("newTransactionRow: %v", err)
	}

	if row.TransactionID != "tx-1" || row.CustomerID != "C1" || row.MessageType != "EMI_PAYMENT" {
		t.Errorf("unexpected identity columns: %+v", row)
	}
	if !row.TransactionDate.Valid || row.TransactionDate.Date != (civil.Date{Year: 2024, Month: 3, Day: 5}) {
		t.Errorf("TransactionDate = %+v, want 2024-03-05", row.TransactionDate)
	}
	if !row.Amount.Valid || row.Amount.Float64 != 15000 {
		t.Errorf("Amount = %+v, want 15000", row.Amount)
	}
	if row.AvailableBalance.Valid {
		t.Errorf("AvailableBalance should be NULL, got %+v", row.AvailableBalance)
	}
	if row.LoanReference != (bigquery.NullString{StringVal: "HL00123456", Valid: true}) {
		t.Errorf("LoanReference = %+v", row.LoanReference)
	}
	if row.BankName.Valid {
		t.Errorf("BankName should be NULL, got %+v", row.BankName)
	}
	if !row.Details.Valid {
		t.Fatal("Details should be set")
	}

	view, err := row.view()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.TransactionDate != "2024-03-05" {
		t.Errorf("view.TransactionDate = %q", view.TransactionDate)
	}
	if view.Amount == nil || *view.Amount != 15000 {
		t.Errorf("view.Amount = %v", view.Amount)
	}
	if view.Fields.String(domain.FieldLoanType) != "Home Loan" {
		t.Errorf("view.Fields = %v", view.Fields)
	}
	if view.SMSID != "sms-9" {
		t.Errorf("view.SMSID = %q", view.SMSID)
	}
}

func TestNewTransactionRow_BadDate(t *testing.T) {
	row, err := newTransactionRow("tx-2", &domain.TransactionRecord{
		Category:        domain.CategoryDebitTransaction,
		TransactionDate: "not-a-date",
	})
	if err != nil {
		t.Fatalf("newTransactionRow: %v", err)
	}
	if row.TransactionDate.Valid {
		t.Errorf("expected NULL date, got %+v", row.TransactionDate)
	}
	if row.SMSID.Valid {
		t.Errorf("expected NULL sms_id, got %+v", row.SMSID)
	}
}

func TestNewRawMessageRow(t *testing.T) {
	row := newRawMessageRow("raw-1", &domain.RawMessageRecord{
		CustomerID: "C1",
		Text:       "50% off today",
		Category:   domain.CategoryPromotional,
		Sender:     "VK-SHOP",
		Processed:  true,
	})

	if row.ImportantPoints == nil {
		t.Error("ImportantPoints should be an empty slice, not nil")
	}
	if row.Sender != (bigquery.NullString{StringVal: "VK-SHOP", Valid: true}) {
		t.Errorf("Sender = %+v", row.Sender)
	}
	if row.SMSID.Valid {
		t.Errorf("SMSID should be NULL, got %+v", row.SMSID)
	}

	view := row.view()
	if view.MessageType != "PROMOTIONAL" || view.Sender != "VK-SHOP" || !view.Processed {
		t.Errorf("unexpected view: %+v", view)
	}
}
