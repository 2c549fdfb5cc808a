package bigquery

import (
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// CustomerRow represents a row in the customers table.
type CustomerRow struct {
	CustomerID  string    `bigquery:"customer_id"`
	Name        string    `bigquery:"customer_name"`
	PhoneNumber string    `bigquery:"phone_number"`
	CreatedTS   time.Time `bigquery:"created_ts"`
	UpdatedTS   time.Time `bigquery:"updated_ts"`
}

// RawMessageRow represents a row in the raw_messages table.
type RawMessageRow struct {
	RawMessageID    string              `bigquery:"raw_message_id"`
	CustomerID      string              `bigquery:"customer_id"`
	MessageText     string              `bigquery:"message_text"`
	MessageType     string              `bigquery:"message_type"`
	ImportantPoints []string            `bigquery:"important_points"`
	Sender          bigquery.NullString `bigquery:"sender"`
	SMSID           bigquery.NullString `bigquery:"sms_id"`
	Processed       bool                `bigquery:"processed"`
	CreatedTS       time.Time           `bigquery:"created_ts"`
}

// TransactionRow represents a row in the transactions table.
type TransactionRow struct {
	TransactionID string              `bigquery:"transaction_id"`
	CustomerID    string              `bigquery:"customer_id"`
	MessageType   string              `bigquery:"message_type"`
	RawMessageID  string              `bigquery:"raw_message_id"`
	SMSID         bigquery.NullString `bigquery:"sms_id"`

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"`

	Amount           bigquery.NullFloat64 `bigquery:"amount"`
	AvailableBalance bigquery.NullFloat64 `bigquery:"available_balance"`
	TotalOutstanding bigquery.NullFloat64 `bigquery:"total_outstanding"`

	AccountNumber bigquery.NullString `bigquery:"account_number"`
	BankName      bigquery.NullString `bigquery:"bank_name"`
	LoanReference bigquery.NullString `bigquery:"loan_reference"`
	FolioNumber   bigquery.NullString `bigquery:"folio_number"`
	PolicyNumber  bigquery.NullString `bigquery:"policy_number"`

	// Details holds every extracted field as a JSON object.
	Details bigquery.NullJSON `bigquery:"details"`

	CreatedTS time.Time `bigquery:"created_ts"`
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func nullFloat(v *float64) bigquery.NullFloat64 {
	if v == nil {
		return bigquery.NullFloat64{}
	}
	return bigquery.NullFloat64{Float64: *v, Valid: true}
}

// newRawMessageRow converts a pipeline record into a row with the given id.
func newRawMessageRow(id string, rec *domain.RawMessageRecord) *RawMessageRow {
	points := rec.ImportantPoints
	if points == nil {
		points = []string{}
	}
	return &RawMessageRow{
		RawMessageID:    id,
		CustomerID:      rec.CustomerID,
		MessageText:     rec.Text,
		MessageType:     string(rec.Category),
		ImportantPoints: points,
		Sender:          nullString(rec.Sender),
		SMSID:           nullString(rec.ExternalID),
		Processed:       rec.Processed,
		CreatedTS:       rec.CreatedAt,
	}
}

// newTransactionRow converts a pipeline record into a row with the given id.
// An unparseable transaction date is stored as NULL.
func newTransactionRow(id string, rec *domain.TransactionRecord) (*TransactionRow, error) {
	details, err := store.EncodeFields(rec.Fields)
	if err != nil {
		return nil, fmt.Errorf("newTransactionRow: %w", err)
	}
	cols := store.SplitColumns(rec.Fields)

	row := &TransactionRow{
		TransactionID:    id,
		CustomerID:       rec.CustomerID,
		MessageType:      string(rec.Category),
		RawMessageID:     rec.RawMessageID,
		SMSID:            nullString(rec.ExternalID),
		Amount:           nullFloat(cols.Amount),
		AvailableBalance: nullFloat(cols.AvailableBalance),
		TotalOutstanding: nullFloat(cols.TotalOutstanding),
		AccountNumber:    nullString(cols.AccountNumber),
		BankName:         nullString(cols.BankName),
		LoanReference:    nullString(cols.LoanReference),
		FolioNumber:      nullString(cols.FolioNumber),
		PolicyNumber:     nullString(cols.PolicyNumber),
		Details:          bigquery.NullJSON{JSONVal: details, Valid: true},
		CreatedTS:        rec.CreatedAt,
	}
	if d, err := civil.ParseDate(rec.TransactionDate); err == nil {
		row.TransactionDate = bigquery.NullDate{Date: d, Valid: true}
	}
	return row, nil
}

func (r *CustomerRow) view() store.CustomerView {
	return store.CustomerView{
		CustomerID:  r.CustomerID,
		Name:        r.Name,
		PhoneNumber: r.PhoneNumber,
		CreatedAt:   r.CreatedTS,
		UpdatedAt:   r.UpdatedTS,
	}
}

func (r *RawMessageRow) view() store.MessageView {
	return store.MessageView{
		RawMessageID:    r.RawMessageID,
		CustomerID:      r.CustomerID,
		MessageText:     r.MessageText,
		MessageType:     r.MessageType,
		ImportantPoints: r.ImportantPoints,
		Sender:          r.Sender.StringVal,
		SMSID:           r.SMSID.StringVal,
		Processed:       r.Processed,
		CreatedAt:       r.CreatedTS,
	}
}

func (r *TransactionRow) view() (store.TransactionView, error) {
	fields, err := store.DecodeFields(r.Details.JSONVal)
	if err != nil {
		return store.TransactionView{}, fmt.Errorf("transaction %s: %w", r.TransactionID, err)
	}
	v := store.TransactionView{
		TransactionID: r.TransactionID,
		CustomerID:    r.CustomerID,
		MessageType:   r.MessageType,
		RawMessageID:  r.RawMessageID,
		SMSID:         r.SMSID.StringVal,
		Fields:        fields,
		CreatedAt:     r.CreatedTS,
	}
	if r.TransactionDate.Valid {
		v.TransactionDate = r.TransactionDate.Date.String()
	}
	if r.Amount.Valid {
		amount := r.Amount.Float64
		v.Amount = &amount
	}
	return v, nil
}
