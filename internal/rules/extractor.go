package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

// parseFunc turns the first capture group of a match into a field value.
type parseFunc func(capture string) (any, bool)

// pattern pairs a regular expression with the parser for its first capture group.
type pattern struct {
	re    *regexp.Regexp
	parse parseFunc
}

// fieldRule extracts one field. Patterns are tried in order, each match of a
// pattern left to right, and the first capture that parses wins. Default, when non-nil, is stored if nothing matched.
type fieldRule struct {
	Field    string
	Patterns []pattern
	Default  any
}

func p(expr string, parse parseFunc) pattern {
	return pattern{re: regexp.MustCompile(expr), parse: parse}
}

func asAmount(s string) (any, bool) {
	return parseAmount(s)
}

func asDate(s string) (any, bool) {
	return ParseDate(s)
}

func asText(s string) (any, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func asBankName(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if len(s) <= 1 {
		return nil, false
	}
	if strings.HasSuffix(s, "Bank") {
		return s, true
	}
	return s + " Bank", true
}

// loanTypeNoise are words that sit next to "loan" without naming its type.
var loanTypeNoise = map[string]bool{
	"your": true, "the": true, "for": true, "of": true, "a": true, "an": true,
	"our": true, "to": true, "emi": true, "no": true, "account": true, "ac": true,
	"is": true, "has": true, "ref": true, "reference": true,
}

func asLoanType(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" || loanTypeNoise[strings.ToLower(s)] {
		return nil, false
	}
	return s, true
}

// constant ignores the capture and yields v; used for fixed-vocabulary lookups.
func constant(v string) parseFunc {
	return func(string) (any, bool) { return v, true }
}

const currency = `(?:INR|Rs\.?|₹)`

// commonRules run for every category except PROMOTIONAL.
var commonRules = []fieldRule{
	{
		Field: domain.FieldAmount,
		Patterns: []pattern{
			p(`(?i)`+currency+`\s*([\d,]+\.?\d*)`, asAmount),
			p(`(?i)amount\s*(?:of|:)?\s*`+currency+`?\s*([\d,]+\.?\d*)`, asAmount),
			p(`(?i)([\d,]+\.?\d*)\s*`+currency, asAmount),
		},
	},
	{
		Field: domain.FieldAccountNumber,
		Patterns: []pattern{
			p(`(?i)\b(?:a/c(?:\s+no)?\.?|ac(?:\s+no)?\.?|card ending|account)\s*[:\-]?\s*[a-z*]*(\d{4,})`, asText),
			p(`(?i)a/c\s*[a-z*]*(\d{4,})`, asText),
			p(`(?i)account\s*[a-z*]*(\d{4,})`, asText),
		},
	},
	{
		Field: domain.FieldTransactionDate,
		Patterns: []pattern{
			p(`(\d{2}[-/]\d{2}[-/]\d{2,4})`, asDate),
			p(`(\d{2}[-\s][A-Za-z]{3}[-\s]\d{2,4})`, asDate),
			p(`on\s+(\d{2}[-/\s][A-Za-z]{3}[-/\s]\d{2,4})`, asDate),
		},
	},
	{
		Field: domain.FieldAvailableBalance,
		Patterns: []pattern{
			p(`(?i)(?:avl bal|available balance|net available balance)[^0-9]*`+currency+`\s*([\d,]+\.?\d*)`, asAmount),
			p(`(?i)balance[^0-9]*`+currency+`\s*([\d,]+\.?\d*)`, asAmount),
		},
	},
	{
		Field: domain.FieldBankName,
		Patterns: []pattern{
			p(`\b((?:[A-Z][A-Za-z&]*\s+)*[A-Z][A-Za-z&]*)\s+(?:Bank|BANK|bank)\b`, asBankName),
			p(`\b([A-Z]{2,4})\s+Bank\b`, asBankName),
		},
	},
}

var insuranceCompanies = []string{"LIC", "HDFC Life", "ICICI Prudential", "SBI Life", "Tata AIA"}

func companyPatterns() []pattern {
	out := make([]pattern, 0, len(insuranceCompanies))
	for _, name := range insuranceCompanies {
		expr := `(?i)\b(` + strings.ReplaceAll(regexp.QuoteMeta(name), " ", `\s+`) + `)\b`
		out = append(out, p(expr, constant(name)))
	}
	return out
}

// categoryRules run after commonRules and overwrite any field they produce.
var categoryRules = map[domain.Category][]fieldRule{
	domain.CategorySalaryCredit: {
		{
			Field: domain.FieldEmployer,
			Patterns: []pattern{
				p(`(?i)- ([A-Za-z\s]+) -`, asText),
				p(`(?i)\bfrom\s+([A-Za-z\s]+)`, asText),
				p(`(?i)salary.*from\s+([A-Za-z\s]+)`, asText),
			},
			Default: "Salary Credit",
		},
	},
	domain.CategoryEMIPayment: {
		{
			Field:    domain.FieldLoanReference,
			Patterns: []pattern{p(`([A-Z0-9]+\d{6,})`, asText)},
		},
		{
			Field: domain.FieldLoanType,
			Patterns: []pattern{
				p(`(?i)\bLoan\s+([A-Za-z]+)\b`, asLoanType),
				p(`(?i)\b([A-Za-z]+)\s+loan\b`, asLoanType),
			},
			Default: "Personal Loan",
		},
	},
	domain.CategoryCreditCardTransaction: {
		{
			Field: domain.FieldMerchant,
			Patterns: []pattern{
				p(`(?i)\bat\s+([A-Za-z\s]+)\s+on\b`, asText),
				p(`(?i)spent at\s+([A-Za-z\s]+)`, asText),
				p(`(?i)purchase at\s+([A-Za-z\s]+)`, asText),
			},
		},
		{
			Field:    domain.FieldAuthorizationCode,
			Patterns: []pattern{p(`Authorization code[-:]?\s*(\w+)`, asText)},
		},
		{
			Field: domain.FieldTotalOutstanding,
			Patterns: []pattern{
				p(`(?i)total outstanding is\s+`+currency+`\s*([\d,]+\.?\d*)`, asAmount),
				p(`(?i)outstanding.*`+currency+`\s*([\d,]+\.?\d*)`, asAmount),
			},
		},
	},
	domain.CategorySIPInvestment: {
		{
			Field: domain.FieldAmount,
			Patterns: []pattern{
				p(`(?:Rs\.?|INR)\s*([\d,]+\.?\d*)`, asAmount),
				p(`SIP.*(?:Rs\.?|INR)\s*([\d,]+\.?\d*)`, asAmount),
			},
		},
		{
			Field: domain.FieldTransactionDate,
			Patterns: []pattern{
				p(`SIP of (\d{2}/\d{2}/\d{4})`, asDate),
				p(`SIP of (\d{2}-\d{2}-\d{4})`, asDate),
				p(`SIP of (\d{2}-[A-Za-z]{3}-\d{2,4})`, asDate),
				p(`(\d{2}[-/]\d{2}[-/]\d{4})`, asDate),
				p(`(\d{2}[-\s][A-Za-z]{3}[-\s]\d{2,4})`, asDate),
			},
		},
		{
			Field: domain.FieldFolioNumber,
			Patterns: []pattern{
				p(`[Ff]olio\s+([A-Z0-9]+)`, asText),
				p(`folio.*([A-Z0-9]{8,})`, asText),
			},
		},
		{
			Field: domain.FieldFundName,
			Patterns: []pattern{
				p(`\bin\s+([A-Za-z\s\-]+?)(?:Regular|has been)`, asText),
				p(`\bfund\s+([A-Za-z\s\-]+)`, asText),
			},
		},
		{
			Field: domain.FieldNAVValue,
			Patterns: []pattern{
				p(`NAV of\s+([\d.]+)`, asAmount),
				p(`NAV\s*([\d.]+)`, asAmount),
			},
		},
	},
	domain.CategoryInsurancePayment: {
		{
			Field: domain.FieldPolicyNumber,
			Patterns: []pattern{
				p(`(?i)policy(?:\s+no\.?|\s+number)?[:\-]?\s*([A-Z0-9]*\d[A-Z0-9]*)`, asText),
				p(`(?i)policy\s*([A-Z0-9]*\d[A-Z0-9]*)`, asText),
			},
		},
		{
			Field:    domain.FieldInsuranceCompany,
			Patterns: companyPatterns(),
		},
		{
			Field:   domain.FieldInsuranceType,
			Default: "Life Insurance",
		},
	},
}

// rejectFunc is told about a capture that matched a pattern but did not parse.
type rejectFunc func(field, capture string)

// apply runs r against message and stores the winning value in out.
func (r fieldRule) apply(message string, out domain.Fields, reject rejectFunc) {
	for _, pat := range r.Patterns {
		for _, m := range pat.re.FindAllStringSubmatch(message, -1) {
			if len(m) < 2 {
				continue
			}
			if v, ok := pat.parse(m[1]); ok {
				out[r.Field] = v
				return
			}
			if reject != nil {
				reject(r.Field, m[1])
			}
		}
	}
	if r.Default != nil {
		out[r.Field] = r.Default
	}
}

// Extract pulls structured fields out of message for the given category.
// A field that cannot be found or parsed is left out.
func Extract(category domain.Category, message string) domain.Fields {
	return extract(category, message, nil)
}

// ExtractContext is Extract with parse failures of dates and amounts logged at
// debug level through the context logger.
func ExtractContext(ctx context.Context, category domain.Category, message string) domain.Fields {
	log := logger.FromContext(ctx)
	return extract(category, message, func(field, capture string) {
		if field == domain.FieldTransactionDate || IsNumericField(field) {
			log.Debug().Str("field", field).Str("value", capture).Msg("could not parse extracted value")
		}
	})
}

func extract(category domain.Category, message string, reject rejectFunc) domain.Fields {
	fields := domain.Fields{}

	if category.IsPromotional() {
		fields[domain.FieldMessage] = message
		return fields
	}

	for _, rule := range commonRules {
		rule.apply(message, fields, reject)
	}
	for _, rule := range categoryRules[category] {
		rule.apply(message, fields, reject)
	}

	return fields
}
