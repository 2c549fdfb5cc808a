package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/jobs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// ErrQueueClosed is returned by operations on a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// DefaultBackoff is the delay before a job's first retry. The nth retry waits n times as long.
const DefaultBackoff = time.Second

// Queue runs batch ingestion jobs on a fixed pool of goroutines and records
// every status change in a JobStore. A failed job is published again after a
// linear backoff until its retry budget is spent. Retries still waiting when
// the queue stops are marked failed rather than left in the retrying state.
type Queue struct {
	pending chan *jobs.IngestBatchJob
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	retries map[string]*scheduledRetry

	store   jobs.JobStore
	workers int
	backoff time.Duration
	now     func() time.Time
}

type scheduledRetry struct {
	timer *time.Timer
	job   *jobs.IngestBatchJob
}

// Option configures a Queue.
type Option func(*Queue)

// WithBackoff sets the delay before the first retry.
func WithBackoff(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.backoff = d
		}
	}
}

// NewQueue creates a queue holding up to bufferSize waiting jobs, served by
// workers goroutines (at least one). store may be nil.
func NewQueue(bufferSize, workers int, store jobs.JobStore, opts ...Option) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		pending: make(chan *jobs.IngestBatchJob, bufferSize),
		done:    make(chan struct{}),
		retries: make(map[string]*scheduledRetry),
		store:   store,
		workers: workers,
		backoff: DefaultBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// PublishIngestBatch fills in the job's id, status, creation time and retry
// budget when unset, records it and hands it to a worker. It blocks while the
// buffer is full.
func (q *Queue) PublishIngestBatch(ctx context.Context, job *jobs.IngestBatchJob) error {
	if q.isClosed() {
		return ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = q.now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = jobs.DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishIngestBatch: save job: %w", err)
		}
	}

	select {
	case q.pending <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}
}

// Start launches the workers. They run until ctx is cancelled or Stop is called.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	if q.isClosed() {
		return ErrQueueClosed
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx, handler)
	}
	return nil
}

func (q *Queue) work(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case job := <-q.pending:
			if job != nil {
				q.run(ctx, job, handler)
			}
		}
	}
}

// run executes one attempt of job and records the resulting status.
func (q *Queue) run(ctx context.Context, job *jobs.IngestBatchJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx).With().
		Str("job_id", job.JobID).
		Str("source", job.Source).
		Logger()

	started := q.now()
	job.Status = jobs.JobStatusRunning
	job.StartedAt = &started
	job.CompletedAt = nil
	q.record(ctx, log, job)

	err := handler(ctx, job)

	finished := q.now()
	job.CompletedAt = &finished

	retry := false
	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().Dur("elapsed", finished.Sub(started)).Msg("job completed")
	case job.RetryCount < job.MaxRetries:
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		job.Error = err.Error()
		retry = true
	default:
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
		log.Error().Err(err).Int("retries", job.RetryCount).Msg("job failed")
	}
	q.record(ctx, log, job)

	if retry {
		delay := time.Duration(job.RetryCount) * q.backoff
		if q.scheduleRetry(ctx, log, job, delay) {
			log.Warn().Err(err).Int("retry", job.RetryCount).Dur("delay", delay).Msg("job failed, retry scheduled")
		} else {
			q.abandon(ctx, log, job)
		}
	}
}

// scheduleRetry publishes a fresh copy of job after delay. It reports false
// when the queue is already stopped.
func (q *Queue) scheduleRetry(ctx context.Context, log zerolog.Logger, job *jobs.IngestBatchJob, delay time.Duration) bool {
	next := *job
	next.Status = jobs.JobStatusPending
	next.StartedAt = nil
	next.CompletedAt = nil

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}

	q.retries[next.JobID] = &scheduledRetry{
		job: &next,
		timer: time.AfterFunc(delay, func() {
			q.mu.Lock()
			delete(q.retries, next.JobID)
			closed := q.closed
			q.mu.Unlock()

			if closed {
				q.abandon(ctx, log, &next)
				return
			}
			if err := q.PublishIngestBatch(ctx, &next); err != nil {
				log.Error().Err(err).Msg("re-enqueue failed")
				q.abandon(ctx, log, &next)
			}
		}),
	}
	return true
}

// abandon marks a job whose retry will never run as failed.
func (q *Queue) abandon(ctx context.Context, log zerolog.Logger, job *jobs.IngestBatchJob) {
	finished := q.now()
	job.Status = jobs.JobStatusFailed
	job.CompletedAt = &finished
	job.Error = "queue stopped before retry: " + job.Error
	log.Warn().Str("job_id", job.JobID).Msg("pending retry dropped")
	q.record(ctx, log, job)
}

func (q *Queue) record(ctx context.Context, log zerolog.Logger, job *jobs.IngestBatchJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		log.Error().Err(err).Str("status", string(job.Status)).Msg("failed to record job status")
	}
}

// Stop rejects new work, drops pending retries and waits for running jobs to
// return or for ctx to expire.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)

	var dropped []*jobs.IngestBatchJob
	for id, r := range q.retries {
		if r.timer.Stop() {
			dropped = append(dropped, r.job)
		}
		delete(q.retries, id)
	}
	q.mu.Unlock()

	log := logger.FromContext(ctx)
	for _, job := range dropped {
		q.abandon(ctx, log, job)
	}

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue without a deadline.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
