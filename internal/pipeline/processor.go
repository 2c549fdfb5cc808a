package pipeline

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// Request is one message handed to the processor.
type Request struct {
	Message    string
	Date       string
	Customer   *domain.Customer
	Sender     string
	ExternalID string
}

// Options wires a Processor.
type Options struct {
	Analyzer        Analyzer
	Store           Store
	FallbackEnabled bool
	DefaultCustomer domain.Customer
	Clock           Clock
}

// Processor turns raw messages into outcomes.
type Processor struct {
	pipeline *Pipeline
}

// NewProcessor builds the validate, analyze, fallback, date, customer and
// persist chain.
func NewProcessor(opts Options) *Processor {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Processor{
		pipeline: NewPipeline(
			&ValidateStep{},
			&AnalyzeStep{Analyzer: opts.Analyzer},
			&FallbackStep{Enabled: opts.FallbackEnabled},
			&ResolveDateStep{Clock: clock},
			&ResolveCustomerStep{Default: opts.DefaultCustomer},
			&PersistStep{Store: opts.Store, Clock: clock},
		),
	}
}

// ProcessMessage runs one message through the pipeline. It never panics and
// never returns an error: every failure is reported in the Outcome.
func (p *Processor) ProcessMessage(ctx context.Context, req Request) (out domain.Outcome) {
	customerID := ""
	if req.Customer != nil {
		customerID = req.Customer.ID
	}
	ctx = logger.WithMessage(ctx, req.ExternalID, customerID)
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("panic while processing message")
			out = failedOutcome(req, fmt.Errorf("panic: %v", r))
		}
	}()

	state := &PipelineState{Request: req}
	if err := p.pipeline.Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("message processing failed")
		return failedOutcome(req, err)
	}

	if state.Duplicate {
		return domain.Outcome{
			Status:     domain.StatusDuplicate,
			ExternalID: req.ExternalID,
			CustomerID: state.Customer.ID,
		}
	}

	return domain.Outcome{
		Status:          domain.StatusProcessed,
		ExternalID:      req.ExternalID,
		CustomerID:      state.Customer.ID,
		Category:        state.Result.Category,
		Fields:          state.Result.Fields,
		ImportantPoints: state.Result.ImportantPoints,
		Source:          state.Result.Source,
		RawMessageID:    state.RawMessageID,
		TransactionID:   state.TransactionID,
	}
}

func failedOutcome(req Request, err error) domain.Outcome {
	kind := failureKind(err)
	return domain.Outcome{
		Status:       domain.StatusFailed,
		ExternalID:   req.ExternalID,
		ErrorKind:    kind,
		ErrorMessage: failureMessage(kind, err),
		Snippet:      Snippet(req.Message),
	}
}

func failureMessage(kind domain.FailureKind, err error) string {
	switch kind {
	case domain.FailureValidation:
		return "Message is empty or blank"
	case domain.FailureModelAnalysis:
		return "LLM model failed to process the message: " + err.Error()
	case domain.FailureModelResult:
		return "LLM model returned invalid or incomplete analysis result"
	default:
		return "Error processing message: " + err.Error()
	}
}

// Snippet shortens message for error reporting.
func Snippet(message string) string {
	if utf8.RuneCountInString(message) <= SnippetLength {
		return message
	}
	runes := []rune(message)
	return string(runes[:SnippetLength]) + "..."
}
