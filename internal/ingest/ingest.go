// Package ingest processes batches of SMS records through the message pipeline.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
)

// DefaultPause is the delay between records that keeps progress readers responsive.
const DefaultPause = 10 * time.Millisecond

// MessageProcessor processes one message. *pipeline.Processor implements it.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, req pipeline.Request) domain.Outcome
}

// Observer is told about every record once it has been handled.
type Observer func(index int, out domain.Outcome)

// Ingester runs batches sequentially through a MessageProcessor.
type Ingester struct {
	processor MessageProcessor
	tracker   *jobs.ProgressTracker
	pause     time.Duration
	observer  Observer
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithPause overrides DefaultPause.
func WithPause(d time.Duration) Option {
	return func(i *Ingester) { i.pause = d }
}

// WithObserver registers a per-record callback.
func WithObserver(fn Observer) Option {
	return func(i *Ingester) { i.observer = fn }
}

// NewIngester creates an Ingester. A nil tracker gets a private one.
func NewIngester(processor MessageProcessor, tracker *jobs.ProgressTracker, opts ...Option) *Ingester {
	if tracker == nil {
		tracker = jobs.NewProgressTracker(nil)
	}
	i := &Ingester{processor: processor, tracker: tracker, pause: DefaultPause}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Tracker returns the progress tracker the ingester updates.
func (i *Ingester) Tracker() *jobs.ProgressTracker {
	return i.tracker
}

// ProcessBatch decodes a JSON array and processes its records one at a time.
// A bad record is counted as failed and never aborts the batch. The batch stops
// early only when ctx is cancelled, returning the counts so far with ctx.Err().
func (i *Ingester) ProcessBatch(ctx context.Context, data []byte) (*jobs.BatchSummary, error) {
	log := logger.FromContext(ctx)

	entries, err := DecodeBatch(data)
	if err != nil {
		i.tracker.Fail(err)
		return nil, fmt.Errorf("ProcessBatch: %w", err)
	}

	summary := &jobs.BatchSummary{Total: len(entries)}
	i.tracker.Start(len(entries))
	log.Info().Int("records", len(entries)).Msg("batch started")

	for idx, raw := range entries {
		if err := ctx.Err(); err != nil {
			i.tracker.Fail(err)
			log.Warn().Err(err).Int("processed", summary.Processed).Msg("batch cancelled")
			return summary, fmt.Errorf("ProcessBatch: cancelled after %d records: %w", summary.Processed, err)
		}

		out := i.processRecord(ctx, idx, raw)
		summary.Processed++
		switch out.Status {
		case domain.StatusProcessed:
			summary.Succeeded++
		case domain.StatusDuplicate:
			summary.Duplicates++
		default:
			summary.Failed++
		}
		i.tracker.Record(out.Status)
		if i.observer != nil {
			i.observer(idx, out)
		}

		if i.pause > 0 && idx < len(entries)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(i.pause):
			}
		}
	}

	i.tracker.Complete()
	log.Info().
		Int("succeeded", summary.Succeeded).
		Int("duplicates", summary.Duplicates).
		Int("failed", summary.Failed).
		Msg("batch completed")
	return summary, nil
}

func (i *Ingester) processRecord(ctx context.Context, idx int, raw []byte) domain.Outcome {
	rec, err := ParseRecord(raw)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Int("record", idx+1).Err(err).Msg("skipping record")
		return domain.Outcome{
			Status:       domain.StatusFailed,
			ExternalID:   rec.SMSID,
			ErrorKind:    domain.FailureValidation,
			ErrorMessage: fmt.Sprintf("record %d: %v", idx+1, err),
		}
	}
	return i.processor.ProcessMessage(ctx, rec.Request())
}
