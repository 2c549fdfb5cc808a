package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var fastRetry = RetryConfig{
	MaxRetries:   3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func TestWithRetry_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := WithRetry(context.Background(), fastRetry, func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "ok" || attempts != 1 {
		t.Fatalf("got %q after %d attempts, want ok after 1", result, attempts)
	}
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	attempts := 0
	result, err := WithRetry(context.Background(), fastRetry, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &ModelError{Code: ErrCodeUnavailable, Message: "transient", Retryable: true}
		}
		return "recovered", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "recovered" || attempts != 3 {
		t.Fatalf("got %q after %d attempts, want recovered after 3", result, attempts)
	}
}

func TestWithRetry_ExhaustsAllAttempts(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), fastRetry, func(ctx context.Context) (string, error) {
		attempts++
		return "", &ModelError{Code: ErrCodeUnavailable, Message: "always failing", Retryable: true}
	})

	if err == nil || !strings.Contains(err.Error(), "giving up after 4 attempts") {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("exhaustion error should still wrap the retryable ModelError")
	}
	if attempts != fastRetry.MaxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", fastRetry.MaxRetries+1, attempts)
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), fastRetry, func(ctx context.Context) (string, error) {
		attempts++
		return "", &ModelError{Code: ErrCodeRejected, Message: "bad request"}
	})

	var me *ModelError
	if !errors.As(err, &me) || me.Code != ErrCodeRejected {
		t.Fatalf("expected rejected ModelError, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}

	attempts := 0
	_, err := WithRetry(ctx, cfg, func(ctx context.Context) (string, error) {
		attempts++
		cancel()
		return "", &ModelError{Code: ErrCodeUnavailable, Retryable: true}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 3}
	transient := &ModelError{Code: ErrCodeUnavailable, Retryable: true}
	throttled := &ModelError{Code: ErrCodeRateLimited, Retryable: true}

	tests := []struct {
		name string
		n    int
		err  error
		want time.Duration
	}{
		{"first retry", 1, transient, 100 * time.Millisecond},
		{"second retry", 2, transient, 300 * time.Millisecond},
		{"third retry", 3, transient, 900 * time.Millisecond},
		{"capped", 4, transient, time.Second},
		{"rate limited waits the cap", 1, throttled, time.Second},
		{"unclassified error", 2, errors.New("boom"), 300 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.delay(tt.n, tt.err); got != tt.want {
				t.Errorf("delay(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestRetryConfig_DelayJitterBounds(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2, Jitter: 0.2}
	for i := 0; i < 50; i++ {
		got := cfg.delay(1, errors.New("boom"))
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("delay = %v, want within 20%% of 1s", got)
		}
	}
}
