package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
	"github.com/google/uuid"
)

// FindDuplicate reports whether a raw message with smsID exists for customerID.
func (r *Repository) FindDuplicate(ctx context.Context, smsID, customerID string) (bool, error) {
	if smsID == "" {
		return false, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM raw_messages WHERE customer_id = ? AND sms_id = ?`,
		customerID, smsID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("FindDuplicate: %w", err)
	}
	return n > 0, nil
}

// InsertRawMessage stores one raw message and returns its generated id.
func (r *Repository) InsertRawMessage(ctx context.Context, rec *domain.RawMessageRecord) (string, error) {
	points := rec.ImportantPoints
	if points == nil {
		points = []string{}
	}
	encoded, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("InsertRawMessage: encoding important points: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO raw_messages (
			raw_message_id, customer_id, message_text, message_type,
			important_points, sender, sms_id, processed, created_ts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.CustomerID, rec.Text, string(rec.Category),
		string(encoded), nullString(rec.Sender), nullString(rec.ExternalID), rec.Processed, rec.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("InsertRawMessage: insert: %w", err)
	}
	return id, nil
}

// ListCustomerMessages returns a page of a customer's raw messages, newest first.
func (r *Repository) ListCustomerMessages(ctx context.Context, customerID string, page store.Page) ([]store.MessageView, int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT raw_message_id, customer_id, message_text, message_type,
			important_points, COALESCE(sender, ''), COALESCE(sms_id, ''), processed, created_ts
		FROM raw_messages
		WHERE customer_id = ?
		ORDER BY created_ts DESC, raw_message_id
		LIMIT ? OFFSET ?`, customerID, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomerMessages: query: %w", err)
	}
	defer rows.Close()

	messages := []store.MessageView{}
	for rows.Next() {
		var (
			m      store.MessageView
			points string
		)
		if err := rows.Scan(&m.RawMessageID, &m.CustomerID, &m.MessageText, &m.MessageType,
			&points, &m.Sender, &m.SMSID, &m.Processed, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("ListCustomerMessages: scan: %w", err)
		}
		if m.ImportantPoints, err = decodePoints(points); err != nil {
			return nil, 0, fmt.Errorf("ListCustomerMessages: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListCustomerMessages: rows: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM raw_messages WHERE customer_id = ?`, customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListCustomerMessages: count: %w", err)
	}
	return messages, total, nil
}

// CountMessageTypes counts raw messages per category.
func (r *Repository) CountMessageTypes(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT message_type, COUNT(*) FROM raw_messages GROUP BY message_type`)
	if err != nil {
		return nil, fmt.Errorf("CountMessageTypes: query: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			messageType string
			n           int64
		)
		if err := rows.Scan(&messageType, &n); err != nil {
			return nil, fmt.Errorf("CountMessageTypes: scan: %w", err)
		}
		counts[messageType] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CountMessageTypes: rows: %w", err)
	}
	return counts, nil
}

// ListMessagesByType returns up to limit messages of one category.
func (r *Repository) ListMessagesByType(ctx context.Context, messageType string, limit int) ([]store.TypedMessage, error) {
	promotional := domain.Category(messageType).IsPromotional()

	query := `
		SELECT m.message_text, t.details
		FROM transactions t
		INNER JOIN raw_messages m ON t.raw_message_id = m.raw_message_id
		WHERE t.message_type = ?
		ORDER BY t.created_ts DESC
		LIMIT ?`
	if promotional {
		query = `
			SELECT message_text, important_points
			FROM raw_messages
			WHERE message_type = ?
			ORDER BY created_ts DESC
			LIMIT ?`
	}

	rows, err := r.db.QueryContext(ctx, query, messageType, limit)
	if err != nil {
		return nil, fmt.Errorf("ListMessagesByType: query: %w", err)
	}
	defer rows.Close()

	messages := []store.TypedMessage{}
	for rows.Next() {
		var text, payload string
		if err := rows.Scan(&text, &payload); err != nil {
			return nil, fmt.Errorf("ListMessagesByType: scan: %w", err)
		}
		msg := store.TypedMessage{Message: text}
		if promotional {
			msg.ImportantPoints, err = decodePoints(payload)
		} else {
			msg.ExtractedData, err = store.DecodeFields(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("ListMessagesByType: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListMessagesByType: rows: %w", err)
	}
	return messages, nil
}

func decodePoints(raw string) ([]string, error) {
	points := []string{}
	if raw == "" {
		return points, nil
	}
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		return nil, fmt.Errorf("decoding important points: %w", err)
	}
	return points, nil
}
