package sqlite

import (
	"context"
	"fmt"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// typeStats aggregates transactions by category, most frequent first.
// An empty customerID aggregates every customer.
func (r *Repository) typeStats(ctx context.Context, customerID string) ([]store.TypeStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			message_type,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0),
			COUNT(DISTINCT loan_reference),
			COUNT(DISTINCT folio_number),
			COUNT(DISTINCT policy_number),
			COALESCE(MAX(total_outstanding), 0)
		FROM transactions
		WHERE (? = '' OR customer_id = ?)
		GROUP BY message_type
		ORDER BY count DESC, message_type`, customerID, customerID)
	if err != nil {
		return nil, fmt.Errorf("typeStats: query: %w", err)
	}
	defer rows.Close()

	stats := []store.TypeStats{}
	for rows.Next() {
		var s store.TypeStats
		if err := rows.Scan(&s.MessageType, &s.Count, &s.TotalAmount,
			&s.UniqueLoans, &s.UniqueFolios, &s.UniquePolicies, &s.MaxOutstanding); err != nil {
			return nil, fmt.Errorf("typeStats: scan: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("typeStats: rows: %w", err)
	}
	return stats, nil
}

// GetCustomerSummary aggregates one customer's transactions by category.
func (r *Repository) GetCustomerSummary(ctx context.Context, customerID string) (*store.CustomerSummary, error) {
	customer, err := r.findCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("GetCustomerSummary: %w", err)
	}

	stats, err := r.typeStats(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("GetCustomerSummary: %w", err)
	}

	summary := &store.CustomerSummary{Customer: *customer, MessageTypeStats: stats}
	for _, s := range stats {
		summary.TotalTransactions += s.Count
	}
	return summary, nil
}

// GetAnalyticsSummary aggregates every stored transaction and lists the most recent ones.
func (r *Repository) GetAnalyticsSummary(ctx context.Context) (*store.AnalyticsSummary, error) {
	summary := &store.AnalyticsSummary{}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&summary.TotalCustomers); err != nil {
		return nil, fmt.Errorf("GetAnalyticsSummary: count customers: %w", err)
	}

	stats, err := r.typeStats(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("GetAnalyticsSummary: %w", err)
	}
	summary.MessageTypeStats = stats
	for _, s := range stats {
		summary.TotalTransactions += s.Count
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY created_ts DESC, transaction_id
		LIMIT ?`, store.RecentTransactionsLimit)
	if err != nil {
		return nil, fmt.Errorf("GetAnalyticsSummary: recent: %w", err)
	}
	defer rows.Close()

	if summary.RecentTransactions, err = scanTransactions(rows); err != nil {
		return nil, fmt.Errorf("GetAnalyticsSummary: %w", err)
	}
	return summary, nil
}
