package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// MockTextModel is a mock implementation of llm.TextModel.
type MockTextModel struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	Prompts      []string
}

func (m *MockTextModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", "Sure! Here it is: {\"a\":{\"b\":2}} Hope that helps.", `{"a":{"b":2}}`, true},
		{"no braces", "I cannot help with that", "", false},
		{"reversed braces", "} nope {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cleanModelJSON(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("cleanModelJSON() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseModelResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("valid reply is sanitized", func(t *testing.T) {
		raw := "```json\n" + `{
  "message_type": "EMI_PAYMENT",
  "extracted_data": {
    "amount": "12,500.00",
    "loan_reference": " HL0012345678 ",
    "transaction_date": "05-Feb-24",
    "bank_name": null,
    "loan_type": "home"
  },
  "important_points": ["Contains EMI", "Amount: 12500"]
}` + "\n```"

		got, err := parseModelResponse(ctx, raw)
		if err != nil {
			t.Fatalf("parseModelResponse() error = %v", err)
		}
		want := &domain.AnalysisResult{
			Category: domain.CategoryEMIPayment,
			Fields: domain.Fields{
				domain.FieldAmount:          12500.0,
				domain.FieldLoanReference:   "HL0012345678",
				domain.FieldTransactionDate: "2024-02-05",
				domain.FieldLoanType:        "home",
			},
			ImportantPoints: []string{"Contains EMI", "Amount: 12500"},
			Source:          domain.SourceModel,
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	})

	t.Run("numeric identifiers keep every digit", func(t *testing.T) {
		raw := `{"message_type":"INSURANCE_PAYMENT","extracted_data":{"policy_number":98765432,"account_number":123456789012,"amount":1500},"important_points":["Premium paid"]}`
		got, err := parseModelResponse(ctx, raw)
		if err != nil {
			t.Fatalf("parseModelResponse() error = %v", err)
		}
		want := domain.Fields{
			domain.FieldPolicyNumber:  "98765432",
			domain.FieldAccountNumber: "123456789012",
			domain.FieldAmount:        1500.0,
		}
		if !reflect.DeepEqual(got.Fields, want) {
			t.Errorf("Fields = %#v, want %#v", got.Fields, want)
		}
	})

	t.Run("empty points are generated", func(t *testing.T) {
		raw := `{"message_type":"DEBIT_TRANSACTION","extracted_data":{"amount":450},"important_points":[]}`
		got, err := parseModelResponse(ctx, raw)
		if err != nil {
			t.Fatalf("parseModelResponse() error = %v", err)
		}
		if len(got.ImportantPoints) == 0 || got.ImportantPoints[len(got.ImportantPoints)-1] != "Amount debited from account" {
			t.Errorf("ImportantPoints = %q", got.ImportantPoints)
		}
	})

	invalid := []struct {
		name string
		raw  string
	}{
		{"not json", "{not json}"},
		{"missing important_points", `{"message_type":"PROMOTIONAL","extracted_data":{"message":"x"}}`},
		{"missing extracted_data", `{"message_type":"PROMOTIONAL","important_points":[]}`},
		{"unknown category", `{"message_type":"LOTTERY","extracted_data":{"amount":1},"important_points":[]}`},
		{"empty extracted_data", `{"message_type":"DEBIT_TRANSACTION","extracted_data":{},"important_points":[]}`},
		{"null extracted_data", `{"message_type":"DEBIT_TRANSACTION","extracted_data":null,"important_points":[]}`},
		{"no object", "nothing here"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseModelResponse(ctx, tt.raw)
			if !errors.Is(err, ErrModelResultInvalid) {
				t.Errorf("error = %v, want ErrModelResultInvalid", err)
			}
		})
	}
}

func TestModelAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("nil model", func(t *testing.T) {
		_, err := NewModelAnalyzer(nil).Analyze(ctx, "hello")
		if !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("error = %v, want ErrModelUnavailable", err)
		}
	})

	t.Run("model error", func(t *testing.T) {
		cause := errors.New("quota exceeded")
		model := &MockTextModel{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", cause
		}}
		_, err := NewModelAnalyzer(model).Analyze(ctx, "hello")
		if !errors.Is(err, ErrModelUnavailable) || !errors.Is(err, cause) {
			t.Errorf("error = %v, want ErrModelUnavailable wrapping cause", err)
		}
	})

	t.Run("prompt carries message and categories", func(t *testing.T) {
		model := &MockTextModel{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return `{"message_type":"PROMOTIONAL","extracted_data":{"message":"Big sale"},"important_points":["Offer"]}`, nil
		}}
		got, err := NewModelAnalyzer(model).Analyze(ctx, "Big sale")
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if got.Category != domain.CategoryPromotional {
			t.Errorf("Category = %s", got.Category)
		}
		if len(model.Prompts) != 1 {
			t.Fatalf("expected exactly one model call, got %d", len(model.Prompts))
		}
		prompt := model.Prompts[0]
		if !strings.Contains(prompt, `SMS Message: "Big sale"`) {
			t.Error("prompt does not embed the message")
		}
		for _, c := range domain.AllCategories {
			if !strings.Contains(prompt, string(c)) {
				t.Errorf("prompt is missing category %s", c)
			}
		}
	})
}
