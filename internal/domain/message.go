package domain

import "time"

// Common field names shared by every non-promotional category.
const (
	FieldAmount           = "amount"
	FieldAccountNumber    = "account_number"
	FieldTransactionDate  = "transaction_date"
	FieldAvailableBalance = "available_balance"
	FieldBankName         = "bank_name"
)

// Category-specific field names.
const (
	FieldEmployer          = "employer"
	FieldLoanReference     = "loan_reference"
	FieldLoanType          = "loan_type"
	FieldMerchant          = "merchant"
	FieldAuthorizationCode = "authorization_code"
	FieldTotalOutstanding  = "total_outstanding"
	FieldFolioNumber       = "folio_number"
	FieldFundName          = "fund_name"
	FieldNAVValue          = "nav_value"
	FieldPolicyNumber      = "policy_number"
	FieldInsuranceCompany  = "insurance_company"
	FieldInsuranceType     = "insurance_type"
	FieldSumInsured        = "sum_insured"
	FieldCardNumber        = "card_number"
	FieldMessage           = "message"
)

// Fields holds structured values pulled from one message.
// Numeric values are always float64, dates are YYYY-MM-DD strings.
type Fields map[string]any

// String returns the string value stored under key, or "" when absent or not a string.
func (f Fields) String(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// Float returns the float64 stored under key.
func (f Fields) Float(key string) (float64, bool) {
	v, ok := f[key].(float64)
	return v, ok
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// AnalysisSource records which strategy produced an AnalysisResult.
type AnalysisSource string

const (
	SourceModel AnalysisSource = "model"
	SourceRules AnalysisSource = "rules"
)

// AnalysisResult is the normalized outcome of understanding one message.
type AnalysisResult struct {
	Category        Category       `json:"message_type"`
	Fields          Fields         `json:"extracted_data"`
	ImportantPoints []string       `json:"important_points"`
	Source          AnalysisSource `json:"source"`
}

// Customer identifies the owner of a message.
type Customer struct {
	ID    string `json:"customer_id"`
	Name  string `json:"name"`
	Phone string `json:"phone_number"`
}

// RawMessageRecord is what gets persisted for every processed message.
type RawMessageRecord struct {
	CustomerID      string
	Text            string
	Category        Category
	ImportantPoints []string
	Sender          string
	ExternalID      string
	Processed       bool
	CreatedAt       time.Time
}

// TransactionRecord is the structured record persisted for non-promotional messages.
type TransactionRecord struct {
	CustomerID   string
	Category     Category
	RawMessageID string
	ExternalID   string

	// TransactionDate is YYYY-MM-DD; storage converts it to a date column.
	TransactionDate string
	CreatedAt       time.Time
	Fields          Fields
}
