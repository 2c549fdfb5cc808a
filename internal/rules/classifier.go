package rules

import (
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

var promotionalPhrases = []string{
	"offer", "cashback", "discount", "apply now", "get up to",
	"reward", "promo", "deal", "exclusive", "shop now", "click here",
}

// classRule assigns Category when match reports true for the lower-cased message.
type classRule struct {
	Category domain.Category
	match    func(lower string) bool
}

// classRules is evaluated top to bottom and the first match wins. Specific
// categories come before the generic credit/debit ones because their
// keywords overlap.
var classRules = []classRule{
	{domain.CategoryPromotional, func(m string) bool {
		return containsAny(m, promotionalPhrases...)
	}},
	{domain.CategorySalaryCredit, func(m string) bool {
		return strings.Contains(m, "salary") && containsAny(m, "credited", "deposited")
	}},
	{domain.CategoryEMIPayment, func(m string) bool {
		return containsAny(m, "loan", "emi") && containsAny(m, "debited", "deducted", "due on")
	}},
	{domain.CategoryCreditCardTransaction, func(m string) bool {
		return containsAny(m, "credit card", "creditcard", "card member")
	}},
	{domain.CategorySIPInvestment, func(m string) bool {
		return strings.Contains(m, "sip") && containsAny(m, "processed", "deducted")
	}},
	{domain.CategoryInsurancePayment, func(m string) bool {
		return containsAny(m, "insurance", "premium", "policy")
	}},
	{domain.CategoryCreditTransaction, func(m string) bool {
		return containsAny(m, "credited", "deposited")
	}},
	{domain.CategoryDebitTransaction, func(m string) bool {
		return containsAny(m, "debited", "deducted")
	}},
}

// Classify maps a raw message to exactly one category.
func Classify(message string) domain.Category {
	lower := strings.ToLower(message)
	for _, rule := range classRules {
		if rule.match(lower) {
			return rule.Category
		}
	}
	return domain.CategoryOtherFinancial
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
