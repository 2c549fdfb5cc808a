package pipeline

import (
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// categoryGuide describes each category to the model, in presentation order.
var categoryGuide = []struct {
	Category    domain.Category
	Description string
}{
	{domain.CategorySalaryCredit, "Salary deposits, identified by keywords like 'salary', 'payroll', or employer names with 'credited' and no generic payment context."},
	{domain.CategoryEMIPayment, "Loan EMI payments, identified by keywords like 'EMI', 'loan', 'deducted', 'payment', or loan reference numbers."},
	{domain.CategoryCreditCardTransaction, "Credit card purchases, identified by keywords like 'credit card', 'spent', 'charged', 'merchant', or authorization codes."},
	{domain.CategorySIPInvestment, "Mutual fund SIP investments, identified by keywords like 'SIP', 'mutual fund', 'invested', 'folio', or 'NAV'."},
	{domain.CategoryCreditTransaction, "Money credited/deposited (excluding salary), identified by keywords like 'NEFT', 'RTGS', 'credited', 'deposited', or 'received' without salary or employer context."},
	{domain.CategoryDebitTransaction, "Money debited/withdrawn, identified by keywords like 'debited', 'withdrawn', 'spent', or 'deducted' without EMI or credit card context."},
	{domain.CategoryInsurancePayment, "Insurance premium payments, identified by keywords like 'premium', 'paid', 'deducted' with policy number or insurance company, excluding non-transactional renewal confirmations."},
	{domain.CategoryPromotional, "Advertisements, offers, or non-transactional messages, identified by keywords like 'offer', 'apply', 'discount', or promotional phrases without transactional details."},
	{domain.CategoryOtherFinancial, "Financial messages not fitting other categories, including non-transactional insurance renewals, balance inquiries, or account updates."},
}

const classificationRules = `Classification rules:
1. For INSURANCE_PAYMENT, confirm the message indicates an actual payment (e.g., 'premium paid', 'deducted') rather than a renewal confirmation (e.g., 'renewed successfully'). Non-transactional renewals with 'sum insured' amounts should be classified as OTHER_FINANCIAL.
2. Differentiate SALARY_CREDIT from CREDIT_TRANSACTION by checking for salary-specific keywords ('salary', 'payroll') or employer context. Generic credits (e.g., 'NEFT Credit' with a company name but no salary context) are CREDIT_TRANSACTION.
3. Validate transactional intent by checking for payment or transfer indicators (e.g., 'credited', 'debited', 'paid'). Non-transactional messages default to OTHER_FINANCIAL or PROMOTIONAL.
4. Cross-check numerical patterns (e.g., amounts, account numbers, dates) to confirm transaction type.
5. If multiple categories seem applicable, select the most specific based on unique keywords (e.g., 'EMI' for EMI_PAYMENT over DEBIT_TRANSACTION).
6. Default to OTHER_FINANCIAL only if no other category fits after exhaustive checks.
`

const fieldInstructions = `Extract these fields only when explicitly present and relevant to an actual transaction:
- amount: Transaction amount (number, extract only for actual payments or transfers, e.g., 1000.50; exclude 'sum insured' or non-transactional amounts)
- account_number: Account or card number (string, extract last 4 digits or masked number, e.g., 'XXXX1234')
- transaction_date: Date in YYYY-MM-DD format (string, convert from DD/MM/YYYY, DD-MM-YYYY, or textual formats like '12 Jan 2025')
- available_balance: Available balance (number, extract from phrases like 'Avail Bal', 'balance')
- bank_name: Bank name (string, extract from sender ID or message content, e.g., 'HDFC', 'SBI')

Category-specific fields:
- For SALARY_CREDIT: employer (string, extract company/organization name)
- For EMI_PAYMENT: loan_reference (string, extract loan ID or reference number), loan_type (string, e.g., 'home', 'car', 'personal')
- For CREDIT_CARD_TRANSACTION: merchant (string, extract merchant name), authorization_code (string, extract code if present), total_outstanding (number, extract outstanding balance)
- For SIP_INVESTMENT: fund_name (string, extract mutual fund name), folio_number (string, extract folio number), nav_value (number, extract NAV value)
- For INSURANCE_PAYMENT: policy_number (string, extract policy number), insurance_company (string, extract company name), insurance_type (string, e.g., 'life', 'health')
- For PROMOTIONAL: message (string, store the original SMS message)
- For OTHER_FINANCIAL: policy_number (string, for insurance renewals), insurance_company (string), insurance_type (string), sum_insured (number, for non-transactional insurance amounts)

Handle edge cases:
- If a field is not mentioned, set it to null unless inferable from context (e.g., bank name from sender ID like 'HDFCBNK').
- For ambiguous dates (e.g., '01/02/2025'), assume DD/MM/YYYY unless specified otherwise.
- Exclude 'sum insured' amounts from 'amount' field; store in 'sum_insured' for OTHER_FINANCIAL insurance renewals.
- For company names in credits, assume CREDIT_TRANSACTION unless 'salary' or 'payroll' is explicitly mentioned.
`

const responseShape = `Return this exact JSON structure:
{
  "message_type": "CATEGORY_NAME",
  "extracted_data": {
    "field1": "value1",
    "field2": value2
  },
  "important_points": ["point1", "point2", "point3"]
}

The 'important_points' array should include:
1. Primary reason for the chosen category (e.g., "Contains 'EMI' and loan reference number").
2. Key extracted fields summary (e.g., "Amount: 5000, Bank: HDFC").
3. Any notable context or ambiguity resolved (e.g., "Sum insured amount excluded from transaction amount").

Return only the JSON object, no other text.
`

// buildAnalysisPrompt embeds message in the fixed classification and extraction instructions.
func buildAnalysisPrompt(message string) string {
	var b strings.Builder
	b.WriteString("You are a financial SMS analyzer designed for precise classification and data extraction. ")
	b.WriteString("Analyze the provided SMS message and return ONLY a valid JSON object with no additional text, markdown, or formatting.\n\n")
	b.WriteString("SMS Message: \"" + message + "\"\n\n")

	b.WriteString("Classify the message into exactly one of these categories based on strict keyword, pattern, and context analysis:\n")
	for _, c := range categoryGuide {
		b.WriteString("- " + string(c.Category) + ": " + c.Description + "\n")
	}
	b.WriteString("\n")

	b.WriteString(classificationRules)
	b.WriteString("\n")
	b.WriteString(fieldInstructions)
	b.WriteString("\n")
	b.WriteString(responseShape)

	return b.String()
}
