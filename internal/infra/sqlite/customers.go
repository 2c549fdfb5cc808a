package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// UpsertCustomer returns the stored customer with the given id, inserting it when absent.
// An existing customer keeps its stored name and phone number.
func (r *Repository) UpsertCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" {
		return nil, fmt.Errorf("UpsertCustomer: customer_id cannot be empty")
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO customers (customer_id, customer_name, phone_number, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?)`,
		customer.ID, customer.Name, customer.Phone, now, now)
	if err != nil {
		return nil, fmt.Errorf("UpsertCustomer: insert: %w", err)
	}

	view, err := r.findCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("UpsertCustomer: %w", err)
	}
	return &domain.Customer{ID: view.CustomerID, Name: view.Name, Phone: view.PhoneNumber}, nil
}

func (r *Repository) findCustomer(ctx context.Context, customerID string) (*store.CustomerView, error) {
	var c store.CustomerView
	err := r.db.QueryRowContext(ctx, `
		SELECT customer_id, customer_name, phone_number, created_ts, updated_ts
		FROM customers WHERE customer_id = ?`, customerID).
		Scan(&c.CustomerID, &c.Name, &c.PhoneNumber, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", customerID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find customer %s: %w", customerID, err)
	}
	return &c, nil
}

// ListCustomers returns a page of customers, newest first, and the total count.
func (r *Repository) ListCustomers(ctx context.Context, page store.Page) ([]store.CustomerView, int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id, customer_name, phone_number, created_ts, updated_ts
		FROM customers
		ORDER BY created_ts DESC, customer_id
		LIMIT ? OFFSET ?`, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomers: query: %w", err)
	}
	defer rows.Close()

	customers := []store.CustomerView{}
	for rows.Next() {
		var c store.CustomerView
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.PhoneNumber, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("ListCustomers: scan: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListCustomers: rows: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListCustomers: count: %w", err)
	}
	return customers, total, nil
}
