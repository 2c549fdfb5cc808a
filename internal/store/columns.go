package store

import (
	"encoding/json"
	"fmt"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// TransactionColumns are the extracted values promoted to dedicated columns so
// that aggregates can run without decoding the details blob.
type TransactionColumns struct {
	Amount           *float64
	AvailableBalance *float64
	TotalOutstanding *float64
	AccountNumber    string
	BankName         string
	LoanReference    string
	FolioNumber      string
	PolicyNumber     string
}

// SplitColumns picks the promoted columns out of fields.
func SplitColumns(fields domain.Fields) TransactionColumns {
	return TransactionColumns{
		Amount:           floatPtr(fields, domain.FieldAmount),
		AvailableBalance: floatPtr(fields, domain.FieldAvailableBalance),
		TotalOutstanding: floatPtr(fields, domain.FieldTotalOutstanding),
		AccountNumber:    fields.String(domain.FieldAccountNumber),
		BankName:         fields.String(domain.FieldBankName),
		LoanReference:    fields.String(domain.FieldLoanReference),
		FolioNumber:      fields.String(domain.FieldFolioNumber),
		PolicyNumber:     fields.String(domain.FieldPolicyNumber),
	}
}

func floatPtr(fields domain.Fields, key string) *float64 {
	v, ok := fields.Float(key)
	if !ok {
		return nil
	}
	return &v
}

// EncodeFields serializes fields for the details column.
func EncodeFields(fields domain.Fields) (string, error) {
	if fields == nil {
		fields = domain.Fields{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("EncodeFields: %w", err)
	}
	return string(b), nil
}

// DecodeFields parses a details column. JSON numbers decode as float64.
func DecodeFields(raw string) (domain.Fields, error) {
	fields := domain.Fields{}
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("DecodeFields: %w", err)
	}
	return fields, nil
}
