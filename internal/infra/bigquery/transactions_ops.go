package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

const transactionColumns = `
			transaction_id,
			customer_id,
			message_type,
			raw_message_id,
			sms_id,
			transaction_date,
			amount,
			available_balance,
			total_outstanding,
			account_number,
			bank_name,
			loan_reference,
			folio_number,
			policy_number,
			details,
			created_ts`

// InsertTransactionWithClient streams one transaction into the transactions table
// and returns its generated id.
func InsertTransactionWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rec *domain.TransactionRecord) (string, error) {
	id := uuid.NewString()
	row, err := newTransactionRow(id, rec)
	if err != nil {
		return "", fmt.Errorf("InsertTransactionWithClient: %w", err)
	}

	// Use fully qualified table name to avoid project ID issues
	inserter := client.DatasetInProject(ds.ProjectID, ds.DatasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return "", fmt.Errorf("InsertTransactionWithClient: inserting row: %w", err)
	}
	return id, nil
}

// readTransactions drains a transactions query into views.
func readTransactions(ctx context.Context, q *bigquery.Query, op string) ([]store.TransactionView, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	views := []store.TransactionView{}
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iterating: %w", op, err)
		}
		v, err := r.view()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		views = append(views, v)
	}
	return views, nil
}

// ListCustomerTransactionsWithClient returns a page of a customer's transactions, newest first.
// An empty messageType matches every category.
func ListCustomerTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, customerID, messageType string, page store.Page) ([]store.TransactionView, int64, error) {
	where := "WHERE customer_id = @customer_id AND (@message_type = '' OR message_type = @message_type)"
	params := []bigquery.QueryParameter{
		{Name: "customer_id", Value: customerID},
		{Name: "message_type", Value: messageType},
	}

	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		ORDER BY created_ts DESC
		LIMIT @limit OFFSET @offset
	`, transactionColumns, ds.Table(transactionsTable), where))
	q.Parameters = append(params,
		bigquery.QueryParameter{Name: "limit", Value: page.Limit},
		bigquery.QueryParameter{Name: "offset", Value: page.Skip},
	)

	views, err := readTransactions(ctx, q, "ListCustomerTransactionsWithClient")
	if err != nil {
		return nil, 0, err
	}

	countQ := client.Query(fmt.Sprintf("SELECT COUNT(*) AS total FROM %s %s", ds.Table(transactionsTable), where))
	countQ.Parameters = params
	total, err := countRows(ctx, countQ, "ListCustomerTransactionsWithClient")
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListTransactionsByDateRangeWithClient queries transactions within the specified date range.
func ListTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, start, end time.Time) ([]store.TransactionView, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE transaction_date >= @start_date
		  AND transaction_date <= @end_date
		ORDER BY transaction_date, created_ts
	`, transactionColumns, ds.Table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: civil.DateOf(start)},
		{Name: "end_date", Value: civil.DateOf(end)},
	}
	return readTransactions(ctx, q, "ListTransactionsByDateRangeWithClient")
}
