package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/llm"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/rules"
)

// ModelAnalyzer is the Analyzer backed by a hosted text model.
type ModelAnalyzer struct {
	model llm.TextModel
}

// NewModelAnalyzer wraps model. A nil model makes every Analyze call report
// ErrModelUnavailable.
func NewModelAnalyzer(model llm.TextModel) *ModelAnalyzer {
	return &ModelAnalyzer{model: model}
}

// Available reports whether a model is wired in.
func (a *ModelAnalyzer) Available() bool {
	return a != nil && a.model != nil
}

// Analyze asks the model to classify message and extract its fields.
// The model is called exactly once; retries belong to the model client.
func (a *ModelAnalyzer) Analyze(ctx context.Context, message string) (*domain.AnalysisResult, error) {
	if !a.Available() {
		return nil, fmt.Errorf("ModelAnalyzer.Analyze: %w: model not initialized", ErrModelUnavailable)
	}

	raw, err := a.model.Generate(ctx, buildAnalysisPrompt(message))
	if err != nil {
		return nil, fmt.Errorf("ModelAnalyzer.Analyze: generate: %w: %w", ErrModelUnavailable, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("response", raw).Msg("model raw response")

	result, err := parseModelResponse(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("ModelAnalyzer.Analyze: %w", err)
	}
	return result, nil
}

// requiredKeys must all be present in the model's JSON object.
var requiredKeys = []string{"message_type", "extracted_data", "important_points"}

// parseModelResponse turns raw model text into a sanitized AnalysisResult.
func parseModelResponse(ctx context.Context, raw string) (*domain.AnalysisResult, error) {
	clean, ok := cleanModelJSON(raw)
	if !ok {
		return nil, fmt.Errorf("parseModelResponse: %w: no JSON object in response", ErrModelResultInvalid)
	}

	var reply map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &reply); err != nil {
		return nil, fmt.Errorf("parseModelResponse: %w: unmarshal JSON: %w", ErrModelResultInvalid, err)
	}
	for _, key := range requiredKeys {
		if _, ok := reply[key]; !ok {
			return nil, fmt.Errorf("parseModelResponse: %w: missing %s", ErrModelResultInvalid, key)
		}
	}

	var messageType string
	if err := json.Unmarshal(reply["message_type"], &messageType); err != nil {
		return nil, fmt.Errorf("parseModelResponse: %w: message_type: %w", ErrModelResultInvalid, err)
	}
	var extracted map[string]any
	dec := json.NewDecoder(bytes.NewReader(reply["extracted_data"]))
	dec.UseNumber()
	if err := dec.Decode(&extracted); err != nil {
		return nil, fmt.Errorf("parseModelResponse: %w: extracted_data: %w", ErrModelResultInvalid, err)
	}

	category, ok := domain.ParseCategory(messageType)
	if !ok {
		return nil, fmt.Errorf("parseModelResponse: %w: unknown message_type %q", ErrModelResultInvalid, messageType)
	}

	fields := rules.Sanitize(ctx, extracted)
	if len(fields) == 0 {
		return nil, fmt.Errorf("parseModelResponse: %w: extracted_data is empty", ErrModelResultInvalid)
	}
	normalizeModelDate(ctx, fields)

	points := decodePoints(reply["important_points"])
	if len(points) == 0 {
		points = rules.Summarize(category, fields)
	}

	return &domain.AnalysisResult{
		Category:        category,
		Fields:          fields,
		ImportantPoints: points,
		Source:          domain.SourceModel,
	}, nil
}

// normalizeModelDate rewrites transaction_date to YYYY-MM-DD, dropping it when unparseable.
func normalizeModelDate(ctx context.Context, fields domain.Fields) {
	raw, ok := fields[domain.FieldTransactionDate].(string)
	if !ok {
		delete(fields, domain.FieldTransactionDate)
		return
	}
	if iso, ok := rules.ParseDate(raw); ok {
		fields[domain.FieldTransactionDate] = iso
		return
	}
	log := logger.FromContext(ctx)
	log.Warn().Str("value", raw).Msg("dropping unparseable transaction_date from model")
	delete(fields, domain.FieldTransactionDate)
}

// decodePoints accepts a list of strings or of arbitrary scalars.
func decodePoints(raw json.RawMessage) []string {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	points := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(it))
		if s != "" {
			points = append(points, s)
		}
	}
	return points
}

// cleanModelJSON strips Markdown fences and any prose around the first JSON object.
func cleanModelJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
