package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
	"google.golang.org/api/iterator"
)

// runDML runs a statement and waits for it to finish.
func runDML(ctx context.Context, q *bigquery.Query, op string) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: running query: %w", op, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s: waiting for job: %w", op, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: job error: %w", op, err)
	}
	return nil
}

// countRows runs a single-column COUNT query.
func countRows(ctx context.Context, q *bigquery.Query, op string) (int64, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: reading count: %w", op, err)
	}
	var row struct {
		Total int64 `bigquery:"total"`
	}
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return 0, fmt.Errorf("%s: iterating count: %w", op, err)
	}
	return row.Total, nil
}

// FindCustomerWithClient looks up a customer by id. Returns nil if no customer is found.
func FindCustomerWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, customerID string) (*CustomerRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT customer_id, customer_name, phone_number, created_ts, updated_ts
		FROM %s
		WHERE customer_id = @customer_id
		LIMIT 1
	`, ds.Table(customersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "customer_id", Value: customerID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindCustomerWithClient: reading query: %w", err)
	}

	var row CustomerRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindCustomerWithClient: iterating: %w", err)
	}
	return &row, nil
}

// UpsertCustomerWithClient returns the stored customer with the given id, or inserts it.
// An existing customer keeps its stored name and phone number.
func UpsertCustomerWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" {
		return nil, fmt.Errorf("UpsertCustomerWithClient: customer_id cannot be empty")
	}

	existing, err := FindCustomerWithClient(ctx, client, ds, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("UpsertCustomerWithClient: finding existing customer: %w", err)
	}
	if existing != nil {
		return &domain.Customer{ID: existing.CustomerID, Name: existing.Name, Phone: existing.PhoneNumber}, nil
	}

	now := time.Now().UTC()
	q := client.Query(fmt.Sprintf(`
		INSERT INTO %s (customer_id, customer_name, phone_number, created_ts, updated_ts)
		VALUES (@customer_id, @customer_name, @phone_number, @created_ts, @updated_ts)
	`, ds.Table(customersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "customer_id", Value: customer.ID},
		{Name: "customer_name", Value: customer.Name},
		{Name: "phone_number", Value: customer.Phone},
		{Name: "created_ts", Value: now},
		{Name: "updated_ts", Value: now},
	}
	if err := runDML(ctx, q, "UpsertCustomerWithClient"); err != nil {
		return nil, err
	}

	created := customer
	return &created, nil
}

// ListCustomersWithClient returns a page of customers, newest first, and the total count.
func ListCustomersWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, page store.Page) ([]store.CustomerView, int64, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT customer_id, customer_name, phone_number, created_ts, updated_ts
		FROM %s
		ORDER BY created_ts DESC
		LIMIT @limit OFFSET @offset
	`, ds.Table(customersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: page.Limit},
		{Name: "offset", Value: page.Skip},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomersWithClient: reading query: %w", err)
	}

	customers := []store.CustomerView{}
	for {
		var row CustomerRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("ListCustomersWithClient: iterating: %w", err)
		}
		customers = append(customers, row.view())
	}

	total, err := countRows(ctx, client.Query(fmt.Sprintf(
		"SELECT COUNT(*) AS total FROM %s", ds.Table(customersTable))), "ListCustomersWithClient")
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}
