package llm

import (
	"context"
	"errors"
	"testing"
)

func TestNewGeminiModel_NoAPIKey(t *testing.T) {
	_, err := NewGeminiModel(context.Background(), GeminiConfig{})

	var me *ModelError
	if !errors.As(err, &me) {
		t.Fatalf("expected ModelError, got %v", err)
	}
	if me.Code != ErrCodeNotConfigured || me.Retryable {
		t.Errorf("got code %s retryable %v, want %s non-retryable", me.Code, me.Retryable, ErrCodeNotConfigured)
	}
}

func TestGeminiModel_Generate(t *testing.T) {
	tests := []struct {
		name         string
		responses    []string
		errs         []error
		wantText     string
		wantErr      bool
		wantAttempts int
	}{
		{
			name:         "first call succeeds",
			responses:    []string{`{"message_type":"PROMOTIONAL"}`},
			errs:         []error{nil},
			wantText:     `{"message_type":"PROMOTIONAL"}`,
			wantAttempts: 1,
		},
		{
			name:         "retries transient failure",
			responses:    []string{"", "ok"},
			errs:         []error{&ModelError{Code: ErrCodeUnavailable, Retryable: true}, nil},
			wantText:     "ok",
			wantAttempts: 2,
		},
		{
			name:         "empty text is not retried",
			responses:    []string{"   "},
			errs:         []error{nil},
			wantErr:      true,
			wantAttempts: 1,
		},
		{
			name:         "rejected request is not retried",
			responses:    []string{""},
			errs:         []error{&ModelError{Code: ErrCodeRejected}},
			wantErr:      true,
			wantAttempts: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			m := &GeminiModel{
				cfg: GeminiConfig{Model: DefaultModelName, Retry: fastRetry},
				generate: func(ctx context.Context, prompt string) (string, error) {
					i := attempts
					attempts++
					return tt.responses[i], tt.errs[i]
				},
			}

			got, err := m.Generate(context.Background(), "prompt")

			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.wantText {
				t.Errorf("Generate() = %q, want %q", got, tt.wantText)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
		})
	}
}

func TestClassifyAPIError(t *testing.T) {
	err := classifyAPIError(DefaultModelName, errors.New("connection reset"))
	if !IsRetryable(err) {
		t.Errorf("expected transport failure to be retryable, got %v", err)
	}

	if got := classifyAPIError(DefaultModelName, context.Canceled); !errors.Is(got, context.Canceled) {
		t.Errorf("expected cancellation to pass through, got %v", got)
	}
}
