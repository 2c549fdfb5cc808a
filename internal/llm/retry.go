package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// RetryConfig bounds how a failed generation is repeated. Retry n waits
// InitialDelay * Multiplier^(n-1), capped at MaxDelay and spread by ±Jitter.
// A rate-limited call always waits the full MaxDelay.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
}

// DefaultRetryConfig suits Gemini's transient 5xx and quota errors.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:   2,
	InitialDelay: time.Second,
	MaxDelay:     10 * time.Second,
	Multiplier:   2,
	Jitter:       0.2,
}

// delay returns the wait before retry n, counting from 1, after err.
func (c RetryConfig) delay(n int, err error) time.Duration {
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(c.InitialDelay) * math.Pow(mult, float64(n-1))

	var me *ModelError
	rateLimited := errors.As(err, &me) && me.Code == ErrCodeRateLimited
	if limit := float64(c.MaxDelay); limit > 0 && (d > limit || rateLimited) {
		d = limit
	}
	if c.Jitter > 0 {
		d += d * c.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(d)
}

// shouldRetry treats unclassified errors as transient. Cancellation and
// ModelErrors not marked retryable end the loop.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var me *ModelError
	if errors.As(err, &me) {
		return me.Retryable
	}
	return true
}

// WithRetry calls generate until it succeeds, fails permanently, ctx ends or
// cfg.MaxRetries retries have been spent. Errors that end the loop early are
// returned as is; running out of retries wraps the last error.
func WithRetry(ctx context.Context, cfg RetryConfig, generate func(ctx context.Context) (string, error)) (string, error) {
	log := logger.FromContext(ctx)

	for attempt := 1; ; attempt++ {
		text, err := generate(ctx)
		if err == nil {
			return text, nil
		}
		if !shouldRetry(err) {
			return "", err
		}
		if attempt > cfg.MaxRetries {
			return "", fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		wait := cfg.delay(attempt, err)
		log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying model call")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}
