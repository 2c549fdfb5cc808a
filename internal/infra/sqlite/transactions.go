package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
	"github.com/google/uuid"
)

const (
	dateFormat = "2006-01-02"

	transactionColumns = `transaction_id, customer_id, message_type, raw_message_id,
		COALESCE(sms_id, ''), COALESCE(transaction_date, ''), amount, details, created_ts`
)

// InsertTransaction stores one transaction and returns its generated id.
func (r *Repository) InsertTransaction(ctx context.Context, rec *domain.TransactionRecord) (string, error) {
	details, err := store.EncodeFields(rec.Fields)
	if err != nil {
		return "", fmt.Errorf("InsertTransaction: %w", err)
	}
	cols := store.SplitColumns(rec.Fields)

	var date sql.NullString
	if _, err := time.Parse(dateFormat, rec.TransactionDate); err == nil {
		date = sql.NullString{String: rec.TransactionDate, Valid: true}
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			transaction_id, customer_id, message_type, raw_message_id, sms_id,
			transaction_date, amount, available_balance, total_outstanding,
			account_number, bank_name, loan_reference, folio_number, policy_number,
			details, created_ts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.CustomerID, string(rec.Category), rec.RawMessageID, nullString(rec.ExternalID),
		date, nullFloat(cols.Amount), nullFloat(cols.AvailableBalance), nullFloat(cols.TotalOutstanding),
		nullString(cols.AccountNumber), nullString(cols.BankName), nullString(cols.LoanReference),
		nullString(cols.FolioNumber), nullString(cols.PolicyNumber),
		details, rec.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("InsertTransaction: insert: %w", err)
	}
	return id, nil
}

// scanTransactions drains rows selected with transactionColumns.
func scanTransactions(rows *sql.Rows) ([]store.TransactionView, error) {
	views := []store.TransactionView{}
	for rows.Next() {
		var (
			v       store.TransactionView
			amount  sql.NullFloat64
			details string
		)
		if err := rows.Scan(&v.TransactionID, &v.CustomerID, &v.MessageType, &v.RawMessageID,
			&v.SMSID, &v.TransactionDate, &amount, &details, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if amount.Valid {
			a := amount.Float64
			v.Amount = &a
		}
		fields, err := store.DecodeFields(details)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", v.TransactionID, err)
		}
		v.Fields = fields
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return views, nil
}

// ListCustomerTransactions returns a page of a customer's transactions, newest first.
// An empty messageType matches every category.
func (r *Repository) ListCustomerTransactions(ctx context.Context, customerID, messageType string, page store.Page) ([]store.TransactionView, int64, error) {
	const where = `WHERE customer_id = ? AND (? = '' OR message_type = ?)`

	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+`
		FROM transactions `+where+`
		ORDER BY created_ts DESC, transaction_id
		LIMIT ? OFFSET ?`,
		customerID, messageType, messageType, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomerTransactions: query: %w", err)
	}
	defer rows.Close()

	views, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomerTransactions: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions `+where,
		customerID, messageType, messageType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListCustomerTransactions: count: %w", err)
	}
	return views, total, nil
}

// ListTransactionsByDateRange returns transactions dated within [start, end].
func (r *Repository) ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]store.TransactionView, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+`
		FROM transactions
		WHERE transaction_date >= ? AND transaction_date <= ?
		ORDER BY transaction_date, created_ts`,
		start.Format(dateFormat), end.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByDateRange: query: %w", err)
	}
	defer rows.Close()

	views, err := scanTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByDateRange: %w", err)
	}
	return views, nil
}
