package domain

import "strings"

// Category is the single classification tag assigned to a message.
type Category string

const (
	CategorySalaryCredit          Category = "SALARY_CREDIT"
	CategoryEMIPayment            Category = "EMI_PAYMENT"
	CategoryCreditCardTransaction Category = "CREDIT_CARD_TRANSACTION"
	CategorySIPInvestment         Category = "SIP_INVESTMENT"
	CategoryInsurancePayment      Category = "INSURANCE_PAYMENT"
	CategoryCreditTransaction     Category = "CREDIT_TRANSACTION"
	CategoryDebitTransaction      Category = "DEBIT_TRANSACTION"
	CategoryPromotional           Category = "PROMOTIONAL"
	CategoryOtherFinancial        Category = "OTHER_FINANCIAL"
)

// AllCategories lists every category in the order they are presented to the model.
var AllCategories = []Category{
	CategorySalaryCredit,
	CategoryEMIPayment,
	CategoryCreditCardTransaction,
	CategorySIPInvestment,
	CategoryInsurancePayment,
	CategoryCreditTransaction,
	CategoryDebitTransaction,
	CategoryPromotional,
	CategoryOtherFinancial,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes a free-form tag (case, spaces, dashes) into a Category.
// The second return value is false when the tag is not a known category.
func ParseCategory(s string) (Category, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	c := Category(norm)
	return c, c.Valid()
}

// IsPromotional reports whether messages of this category are stored only as raw messages.
func (c Category) IsPromotional() bool {
	return c == CategoryPromotional
}
