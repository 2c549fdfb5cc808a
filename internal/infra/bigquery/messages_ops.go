package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// FindDuplicateWithClient reports whether a raw message with smsID exists for customerID.
func FindDuplicateWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, smsID, customerID string) (bool, error) {
	if smsID == "" {
		return false, nil
	}
	q := client.Query(fmt.Sprintf(`
		SELECT COUNT(*) AS total
		FROM %s
		WHERE sms_id = @sms_id AND customer_id = @customer_id
	`, ds.Table(rawMessagesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "sms_id", Value: smsID},
		{Name: "customer_id", Value: customerID},
	}
	total, err := countRows(ctx, q, "FindDuplicateWithClient")
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// InsertRawMessageWithClient streams one raw message into the raw_messages table
// and returns its generated id.
func InsertRawMessageWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rec *domain.RawMessageRecord) (string, error) {
	id := uuid.NewString()
	row := newRawMessageRow(id, rec)

	inserter := client.DatasetInProject(ds.ProjectID, ds.DatasetID).Table(rawMessagesTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return "", fmt.Errorf("InsertRawMessageWithClient: inserting row: %w", err)
	}
	return id, nil
}

// ListCustomerMessagesWithClient returns a page of a customer's raw messages, newest first.
func ListCustomerMessagesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, customerID string, page store.Page) ([]store.MessageView, int64, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			raw_message_id,
			customer_id,
			message_text,
			message_type,
			important_points,
			sender,
			sms_id,
			processed,
			created_ts
		FROM %s
		WHERE customer_id = @customer_id
		ORDER BY created_ts DESC
		LIMIT @limit OFFSET @offset
	`, ds.Table(rawMessagesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "customer_id", Value: customerID},
		{Name: "limit", Value: page.Limit},
		{Name: "offset", Value: page.Skip},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomerMessagesWithClient: reading query: %w", err)
	}

	messages := []store.MessageView{}
	for {
		var row RawMessageRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("ListCustomerMessagesWithClient: iterating: %w", err)
		}
		messages = append(messages, row.view())
	}

	countQ := client.Query(fmt.Sprintf(
		"SELECT COUNT(*) AS total FROM %s WHERE customer_id = @customer_id", ds.Table(rawMessagesTable)))
	countQ.Parameters = []bigquery.QueryParameter{{Name: "customer_id", Value: customerID}}
	total, err := countRows(ctx, countQ, "ListCustomerMessagesWithClient")
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// CountMessageTypesWithClient counts raw messages per category.
func CountMessageTypesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset) (map[string]int64, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT message_type, COUNT(*) AS total
		FROM %s
		GROUP BY message_type
	`, ds.Table(rawMessagesTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("CountMessageTypesWithClient: reading query: %w", err)
	}

	counts := map[string]int64{}
	for {
		var row struct {
			MessageType string `bigquery:"message_type"`
			Total       int64  `bigquery:"total"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CountMessageTypesWithClient: iterating: %w", err)
		}
		counts[row.MessageType] = row.Total
	}
	return counts, nil
}

// ListMessagesByTypeWithClient returns up to limit messages of one category.
// Promotional messages come from raw_messages with their important points;
// other categories join transactions to their raw message text.
func ListMessagesByTypeWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, messageType string, limit int) ([]store.TypedMessage, error) {
	if domain.Category(messageType).IsPromotional() {
		return listPromotionalWithClient(ctx, client, ds, limit)
	}

	q := client.Query(fmt.Sprintf(`
		SELECT m.message_text, t.details
		FROM %s t
		INNER JOIN %s m
		  ON t.raw_message_id = m.raw_message_id
		WHERE t.message_type = @message_type
		ORDER BY t.created_ts DESC
		LIMIT @limit
	`, ds.Table(transactionsTable), ds.Table(rawMessagesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "message_type", Value: messageType},
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListMessagesByTypeWithClient: reading query: %w", err)
	}

	messages := []store.TypedMessage{}
	for {
		var row struct {
			MessageText string            `bigquery:"message_text"`
			Details     bigquery.NullJSON `bigquery:"details"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListMessagesByTypeWithClient: iterating: %w", err)
		}
		fields, err := store.DecodeFields(row.Details.JSONVal)
		if err != nil {
			return nil, fmt.Errorf("ListMessagesByTypeWithClient: %w", err)
		}
		messages = append(messages, store.TypedMessage{Message: row.MessageText, ExtractedData: fields})
	}
	return messages, nil
}

func listPromotionalWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, limit int) ([]store.TypedMessage, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT message_text, important_points
		FROM %s
		WHERE message_type = @message_type
		ORDER BY created_ts DESC
		LIMIT @limit
	`, ds.Table(rawMessagesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "message_type", Value: string(domain.CategoryPromotional)},
		{Name: "limit", Value: limit},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("listPromotionalWithClient: reading query: %w", err)
	}

	messages := []store.TypedMessage{}
	for {
		var row struct {
			MessageText     string   `bigquery:"message_text"`
			ImportantPoints []string `bigquery:"important_points"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listPromotionalWithClient: iterating: %w", err)
		}
		messages = append(messages, store.TypedMessage{Message: row.MessageText, ImportantPoints: row.ImportantPoints})
	}
	return messages, nil
}
