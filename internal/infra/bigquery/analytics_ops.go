package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
	"google.golang.org/api/iterator"
)

// typeStatsRow is one row of the per-category aggregate.
type typeStatsRow struct {
	MessageType    string  `bigquery:"message_type"`
	Count          int64   `bigquery:"count"`
	TotalAmount    float64 `bigquery:"total_amount"`
	UniqueLoans    int64   `bigquery:"unique_loans"`
	UniqueFolios   int64   `bigquery:"unique_folios"`
	UniquePolicies int64   `bigquery:"unique_policies"`
	MaxOutstanding float64 `bigquery:"max_outstanding"`
}

// typeStatsWithClient aggregates transactions by category, most frequent first.
// An empty customerID aggregates every customer.
func typeStatsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, customerID string) ([]store.TypeStats, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			message_type,
			COUNT(*) AS count,
			IFNULL(SUM(amount), 0) AS total_amount,
			COUNT(DISTINCT loan_reference) AS unique_loans,
			COUNT(DISTINCT folio_number) AS unique_folios,
			COUNT(DISTINCT policy_number) AS unique_policies,
			IFNULL(MAX(total_outstanding), 0) AS max_outstanding
		FROM %s
		WHERE (@customer_id = '' OR customer_id = @customer_id)
		GROUP BY message_type
		ORDER BY count DESC
	`, ds.Table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "customer_id", Value: customerID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("typeStatsWithClient: reading query: %w", err)
	}

	stats := []store.TypeStats{}
	for {
		var row typeStatsRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("typeStatsWithClient: iterating: %w", err)
		}
		stats = append(stats, store.TypeStats(row))
	}
	return stats, nil
}

// GetCustomerSummaryWithClient aggregates one customer's transactions by category.
func GetCustomerSummaryWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, customerID string) (*store.CustomerSummary, error) {
	customer, err := FindCustomerWithClient(ctx, client, ds, customerID)
	if err != nil {
		return nil, fmt.Errorf("GetCustomerSummaryWithClient: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("GetCustomerSummaryWithClient: customer %s: %w", customerID, store.ErrNotFound)
	}

	stats, err := typeStatsWithClient(ctx, client, ds, customerID)
	if err != nil {
		return nil, fmt.Errorf("GetCustomerSummaryWithClient: %w", err)
	}

	summary := &store.CustomerSummary{
		Customer:         customer.view(),
		MessageTypeStats: stats,
	}
	for _, s := range stats {
		summary.TotalTransactions += s.Count
	}
	return summary, nil
}

// GetAnalyticsSummaryWithClient aggregates every stored transaction and lists the most recent ones.
func GetAnalyticsSummaryWithClient(ctx context.Context, client *bigquery.Client, ds Dataset) (*store.AnalyticsSummary, error) {
	customers, err := countRows(ctx, client.Query(fmt.Sprintf(
		"SELECT COUNT(*) AS total FROM %s", ds.Table(customersTable))), "GetAnalyticsSummaryWithClient")
	if err != nil {
		return nil, err
	}

	stats, err := typeStatsWithClient(ctx, client, ds, "")
	if err != nil {
		return nil, fmt.Errorf("GetAnalyticsSummaryWithClient: %w", err)
	}

	q := client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY created_ts DESC
		LIMIT @limit
	`, transactionColumns, ds.Table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: store.RecentTransactionsLimit},
	}
	recent, err := readTransactions(ctx, q, "GetAnalyticsSummaryWithClient")
	if err != nil {
		return nil, err
	}

	summary := &store.AnalyticsSummary{
		TotalCustomers:     customers,
		MessageTypeStats:   stats,
		RecentTransactions: recent,
	}
	for _, s := range stats {
		summary.TotalTransactions += s.Count
	}
	return summary, nil
}
