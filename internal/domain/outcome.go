package domain

// OutcomeStatus is the terminal state of processing one message.
type OutcomeStatus string

const (
	StatusProcessed OutcomeStatus = "processed"
	StatusDuplicate OutcomeStatus = "duplicate"
	StatusFailed    OutcomeStatus = "failed"
)

// FailureKind classifies why a message ended in StatusFailed.
type FailureKind string

const (
	FailureValidation    FailureKind = "VALIDATION_ERROR"
	FailureModelAnalysis FailureKind = "LLM_ANALYSIS_FAILED"
	FailureModelResult   FailureKind = "LLM_RESULT_INVALID"
	FailureProcessing    FailureKind = "PROCESSING_ERROR"
)

// Outcome is returned for every message handed to the processor.
type Outcome struct {
	Status          OutcomeStatus  `json:"status"`
	ExternalID      string         `json:"sms_id,omitempty"`
	CustomerID      string         `json:"customer_id,omitempty"`
	Category        Category       `json:"message_type,omitempty"`
	Fields          Fields         `json:"extracted_data,omitempty"`
	ImportantPoints []string       `json:"important_points,omitempty"`
	Source          AnalysisSource `json:"source,omitempty"`
	RawMessageID    string         `json:"raw_message_id,omitempty"`
	TransactionID   string         `json:"transaction_id,omitempty"`
	ErrorKind       FailureKind    `json:"error,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Snippet         string         `json:"message,omitempty"`
}
