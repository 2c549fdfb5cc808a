// Package llm talks to the hosted text model used to understand SMS messages.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.0-flash"

// DefaultTemperature keeps classification output stable across calls.
const DefaultTemperature float32 = 0.3

// TextModel turns a prompt into free text.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig configures a GeminiModel.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	Retry       RetryConfig
}

// GeminiModel is the TextModel backed by the Gemini API.
type GeminiModel struct {
	cfg      GeminiConfig
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGeminiModel creates a Gemini client. An empty API key is reported as a
// non-retryable ModelError so callers can run without a model.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ModelError{
			Code:    ErrCodeNotConfigured,
			Message: "no API key configured",
			Model:   cfg.Model,
		}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiModel: create genai client: %w", err)
	}

	m := &GeminiModel{cfg: cfg}
	m.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr(cfg.Temperature),
		})
		if err != nil {
			return "", classifyAPIError(cfg.Model, err)
		}
		return resp.Text(), nil
	}
	return m, nil
}

// Name returns the configured model name.
func (m *GeminiModel) Name() string {
	return m.cfg.Model
}

// Generate sends prompt to the model, retrying transient failures.
func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	attempt := 0
	text, err := WithRetry(ctx, m.cfg.Retry, func(ctx context.Context) (string, error) {
		attempt++
		out, err := m.generate(ctx, prompt)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("model", m.cfg.Model).Msg("model call failed")
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", &ModelError{
				Code:    ErrCodeEmptyResponse,
				Message: "empty response from model",
				Model:   m.cfg.Model,
			}
		}
		return out, nil
	})
	if err != nil {
		return "", fmt.Errorf("GeminiModel.Generate: %w", err)
	}
	return text, nil
}

// classifyAPIError maps a genai failure onto a ModelError, marking server-side
// and throttling failures retryable.
func classifyAPIError(model string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}

	switch {
	case code == http.StatusTooManyRequests:
		return &ModelError{Code: ErrCodeRateLimited, Message: "rate limited", Model: model, Retryable: true, Cause: err}
	case code >= 400 && code < 500:
		return &ModelError{Code: ErrCodeRejected, Message: "request rejected", Model: model, Cause: err}
	default:
		return &ModelError{Code: ErrCodeUnavailable, Message: "model call failed", Model: model, Retryable: true, Cause: err}
	}
}
