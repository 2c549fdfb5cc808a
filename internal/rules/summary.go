package rules

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

const (
	promotionalSummary = "Promotional message received"
	genericSummary     = "Financial transaction processed"
)

var printer = message.NewPrinter(language.English)

// closingLines name the action taken for each category.
var closingLines = map[domain.Category]string{
	domain.CategorySalaryCredit:          "Salary credited to account",
	domain.CategoryEMIPayment:            "EMI payment processed",
	domain.CategoryCreditCardTransaction: "Credit card transaction",
	domain.CategorySIPInvestment:         "SIP investment processed",
	domain.CategoryInsurancePayment:      "Insurance premium paid",
	domain.CategoryCreditTransaction:     "Amount credited to account",
	domain.CategoryDebitTransaction:      "Amount debited from account",
}

// FormatCurrency renders v as rupees with thousands separators and two decimals.
func FormatCurrency(v float64) string {
	return "₹" + printer.Sprintf("%.2f", v)
}

// formatNAV prints v the way a float literal is usually shown, keeping ".0" on whole values.
func formatNAV(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type summaryLine struct {
	field  string
	format func(v any) (string, bool)
}

func labelled(label string) func(v any) (string, bool) {
	return func(v any) (string, bool) {
		if !present(v) {
			return "", false
		}
		return fmt.Sprintf("%s: %v", label, v), true
	}
}

func money(label string) func(v any) (string, bool) {
	return func(v any) (string, bool) {
		f, ok := v.(float64)
		if !ok || f == 0 {
			return "", false
		}
		return label + ": " + FormatCurrency(f), true
	}
}

func nav(v any) (string, bool) {
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return "", false
		}
		return "NAV: " + formatNAV(t), true
	default:
		return labelled("NAV")(v)
	}
}

var commonLines = []summaryLine{
	{domain.FieldAmount, money("Amount")},
	{domain.FieldTransactionDate, labelled("Date")},
	{domain.FieldAccountNumber, labelled("Account")},
	{domain.FieldAvailableBalance, money("Available Balance")},
	{domain.FieldBankName, labelled("Bank")},
}

var categoryLines = map[domain.Category][]summaryLine{
	domain.CategorySalaryCredit: {
		{domain.FieldEmployer, labelled("Employer")},
	},
	domain.CategoryEMIPayment: {
		{domain.FieldLoanType, labelled("Loan Type")},
		{domain.FieldLoanReference, labelled("Loan Reference")},
	},
	domain.CategoryCreditCardTransaction: {
		{domain.FieldMerchant, labelled("Merchant")},
		{domain.FieldTotalOutstanding, money("Outstanding")},
	},
	domain.CategorySIPInvestment: {
		{domain.FieldFundName, labelled("Fund")},
		{domain.FieldFolioNumber, labelled("Folio")},
		{domain.FieldNAVValue, nav},
	},
	domain.CategoryInsurancePayment: {
		{domain.FieldPolicyNumber, labelled("Policy")},
		{domain.FieldInsuranceCompany, labelled("Company")},
	},
}

// present reports whether v carries something worth printing.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case bool:
		return t
	}
	return true
}

// Summarize builds the ordered bullet lines describing a classified message.
func Summarize(category domain.Category, fields domain.Fields) []string {
	if category.IsPromotional() {
		return []string{promotionalSummary}
	}

	var points []string
	emit := func(lines []summaryLine) {
		for _, l := range lines {
			if s, ok := l.format(fields[l.field]); ok {
				points = append(points, s)
			}
		}
	}

	emit(commonLines)
	emit(categoryLines[category])
	if closing, ok := closingLines[category]; ok {
		points = append(points, closing)
	}

	if len(points) == 0 {
		return []string{genericSummary}
	}
	return points
}
