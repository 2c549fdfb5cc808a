package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
)

// ErrInvalidBatch is returned when a batch is not a JSON array.
var ErrInvalidBatch = errors.New("batch must be a JSON array of objects")

// errNoMessage marks a record without a usable message field.
var errNoMessage = errors.New("no valid message field found")

// Accepted key spellings, matched case-insensitively. The first matching key wins.
var (
	messageKeys      = []string{"message", "body", "text", "content"}
	dateKeys         = []string{"date", "time", "timestamp"}
	customerIDKeys   = []string{"customer_id", "customerid", "cid"}
	customerNameKeys = []string{"customer_name", "customername", "name"}
	phoneKeys        = []string{"phone_number", "phonenumber", "phone", "mobile"}
	smsIDKeys        = []string{"sms_id", "smsid", "id"}
	senderKeys       = []string{"from", "sender"}
)

// Record is one decoded batch entry.
type Record struct {
	Message      string
	Date         string
	CustomerID   string
	CustomerName string
	Phone        string
	SMSID        string
	Sender       string
}

// DecodeBatch splits a JSON array into its raw entries.
func DecodeBatch(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidBatch
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}
	return entries, nil
}

// ParseRecord decodes one batch entry, locating each field among its accepted keys.
func ParseRecord(raw json.RawMessage) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return Record{}, fmt.Errorf("record is not a JSON object")
	}

	lower := make(map[string]any, len(obj))
	for k, v := range obj {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, seen := lower[key]; !seen {
			lower[key] = v
		}
	}

	rec := Record{
		Message:      lookup(lower, messageKeys),
		Date:         lookup(lower, dateKeys),
		CustomerID:   lookup(lower, customerIDKeys),
		CustomerName: lookup(lower, customerNameKeys),
		Phone:        lookup(lower, phoneKeys),
		SMSID:        lookup(lower, smsIDKeys),
		Sender:       lookup(lower, senderKeys),
	}
	if rec.Message == "" {
		return rec, errNoMessage
	}
	return rec, nil
}

// lookup returns the first non-empty scalar value stored under one of keys.
func lookup(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s := scalar(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// Request converts a record into a processor request. Records without a
// customer id are attributed to the processor's default customer.
func (r Record) Request() pipeline.Request {
	req := pipeline.Request{
		Message:    r.Message,
		Date:       r.Date,
		Sender:     r.Sender,
		ExternalID: r.SMSID,
	}
	if r.CustomerID != "" {
		req.Customer = &domain.Customer{ID: r.CustomerID, Name: r.CustomerName, Phone: r.Phone}
	}
	return req
}
