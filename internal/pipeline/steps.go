package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/rules"
)

// PipelineStep represents a single step in message processing.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Request Request
	Message string

	Result   *domain.AnalysisResult
	ModelErr error

	TransactionDate string
	Customer        domain.Customer

	Duplicate     bool
	RawMessageID  string
	TransactionID string
}

// Step 1: ValidateStep rejects blank messages before any collaborator is called.
type ValidateStep struct{}

func (s *ValidateStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Message = strings.TrimSpace(state.Request.Message)
	if state.Message == "" {
		return fmt.Errorf("ValidateStep: %w: message is empty or blank", ErrValidation)
	}
	return nil
}

// Step 2: AnalyzeStep asks the model. A failure is recorded, not returned,
// so FallbackStep can decide what to do with it.
type AnalyzeStep struct {
	Analyzer Analyzer
}

func (s *AnalyzeStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	if s.Analyzer == nil {
		state.ModelErr = fmt.Errorf("AnalyzeStep: %w: no analyzer configured", ErrModelUnavailable)
		return nil
	}

	result, err := s.Analyzer.Analyze(ctx, state.Message)
	if err == nil && result == nil {
		err = fmt.Errorf("AnalyzeStep: %w: empty result", ErrModelResultInvalid)
	}
	if err != nil {
		if !errors.Is(err, ErrModelUnavailable) && !errors.Is(err, ErrModelResultInvalid) {
			err = fmt.Errorf("AnalyzeStep: %w: %w", ErrModelUnavailable, err)
		}
		log.Warn().Err(err).Msg("model analysis failed")
		state.ModelErr = err
		return nil
	}

	log.Info().Str("message_type", string(result.Category)).Msg("using model analysis")
	state.Result = result
	return nil
}

// Step 3: FallbackStep runs the rule-based path when the model produced nothing.
// With Enabled false the model failure becomes the outcome.
type FallbackStep struct {
	Enabled bool
}

func (s *FallbackStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Result != nil {
		return nil
	}
	if !s.Enabled {
		return fmt.Errorf("FallbackStep: fallback disabled: %w", state.ModelErr)
	}

	category := rules.Classify(state.Message)
	fields := rules.ExtractContext(ctx, category, state.Message)
	state.Result = &domain.AnalysisResult{
		Category:        category,
		Fields:          fields,
		ImportantPoints: rules.Summarize(category, fields),
		Source:          domain.SourceRules,
	}

	log := logger.FromContext(ctx)
	log.Info().Str("message_type", string(category)).Msg("using rule-based analysis")
	return nil
}

// Step 4: ResolveDateStep makes sure every result carries a transaction date.
type ResolveDateStep struct {
	Clock Clock
}

func (s *ResolveDateStep) Execute(ctx context.Context, state *PipelineState) error {
	fields := state.Result.Fields
	if fields == nil {
		fields = domain.Fields{}
		state.Result.Fields = fields
	}

	if d := fields.String(domain.FieldTransactionDate); d != "" {
		state.TransactionDate = d
		return nil
	}

	if state.Request.Date != "" {
		if d, ok := rules.ParseDate(state.Request.Date); ok {
			state.TransactionDate = d
		} else {
			log := logger.FromContext(ctx)
			log.Warn().Str("date", state.Request.Date).Msg("could not parse supplied date, using today")
		}
	}
	if state.TransactionDate == "" {
		state.TransactionDate = s.Clock().Format(dateLayout)
	}

	fields[domain.FieldTransactionDate] = state.TransactionDate
	return nil
}

// Step 5: ResolveCustomerStep substitutes the configured default customer when
// the caller did not name one, and fills blank name and phone.
type ResolveCustomerStep struct {
	Default domain.Customer
}

func (s *ResolveCustomerStep) Execute(ctx context.Context, state *PipelineState) error {
	c := s.Default
	if req := state.Request.Customer; req != nil && strings.TrimSpace(req.ID) != "" {
		c = *req
		c.ID = strings.TrimSpace(c.ID)
	} else {
		log := logger.FromContext(ctx)
		log.Info().Str("customer_id", c.ID).Msg("no customer supplied, using default")
	}

	if c.Name == "" {
		c.Name = "Customer " + c.ID
	}
	if c.Phone == "" {
		c.Phone = "Unknown-" + c.ID
	}
	state.Customer = c
	return nil
}

// Step 6: PersistStep stores the raw message and, unless promotional, the transaction.
// A nil Store makes the step a no-op so analysis can run without storage.
type PersistStep struct {
	Store Store
	Clock Clock
}

func (s *PersistStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Store == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	req := state.Request

	if req.ExternalID != "" {
		dup, err := s.Store.FindDuplicate(ctx, req.ExternalID, state.Customer.ID)
		if err != nil {
			log.Error().Err(err).Msg("duplicate check failed, continuing")
		} else if dup {
			log.Info().Msg("duplicate sms skipped")
			state.Duplicate = true
			return nil
		}
	}

	customer, err := s.Store.UpsertCustomer(ctx, state.Customer)
	if err != nil {
		return fmt.Errorf("PersistStep: upsert customer: %w: %w", ErrPersistence, err)
	}
	if customer != nil {
		state.Customer = *customer
	}

	now := s.Clock().UTC()
	rawID, err := s.Store.InsertRawMessage(ctx, &domain.RawMessageRecord{
		CustomerID:      state.Customer.ID,
		Text:            state.Message,
		Category:        state.Result.Category,
		ImportantPoints: state.Result.ImportantPoints,
		Sender:          req.Sender,
		ExternalID:      req.ExternalID,
		Processed:       true,
		CreatedAt:       now,
	})
	if err != nil {
		return fmt.Errorf("PersistStep: insert raw message: %w: %w", ErrPersistence, err)
	}
	state.RawMessageID = rawID

	if state.Result.Category.IsPromotional() {
		log.Info().Str("raw_message_id", rawID).Msg("promotional message stored as raw message only")
		return nil
	}

	txID, err := s.Store.InsertTransaction(ctx, &domain.TransactionRecord{
		CustomerID:      state.Customer.ID,
		Category:        state.Result.Category,
		RawMessageID:    rawID,
		ExternalID:      req.ExternalID,
		TransactionDate: state.TransactionDate,
		CreatedAt:       now,
		Fields:          state.Result.Fields,
	})
	if err != nil {
		return fmt.Errorf("PersistStep: insert transaction: %w: %w", ErrPersistence, err)
	}
	state.TransactionID = txID
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
