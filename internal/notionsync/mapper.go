package notionsync

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/rules"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

// Property names of the Notion transactions database.
const (
	PropDescription   = "Description"
	PropTransactionID = "Transaction ID"
	PropCustomerID    = "Customer ID"
	PropMessageType   = "Message Type"
	PropDate          = "Date"
	PropAmount        = "Amount"
	PropBalance       = "Available Balance"
	PropOutstanding   = "Total Outstanding"
	PropBank          = "Bank"
	PropAccount       = "Account Number"
	PropReference     = "Reference"
	PropImportedAt    = "Imported At"
)

// referenceFields hold the per-category identifier, in lookup order.
var referenceFields = []string{
	domain.FieldLoanReference,
	domain.FieldFolioNumber,
	domain.FieldPolicyNumber,
	domain.FieldAuthorizationCode,
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
}

// TransactionToNotionProperties converts a stored transaction to Notion properties.
// Empty fields are omitted so Notion keeps its column defaults.
func TransactionToNotionProperties(tx store.TransactionView) notionapi.Properties {
	props := notionapi.Properties{
		PropDescription:   notionapi.TitleProperty{Title: richText(Describe(tx))},
		PropTransactionID: notionapi.RichTextProperty{RichText: richText(tx.TransactionID)},
		PropCustomerID:    notionapi.RichTextProperty{RichText: richText(tx.CustomerID)},
		PropMessageType:   notionapi.SelectProperty{Select: notionapi.Option{Name: tx.MessageType}},
	}

	if tx.TransactionDate != "" {
		if d, err := civil.ParseDate(tx.TransactionDate); err == nil {
			props[PropDate] = dateProperty(d.In(time.UTC))
		}
	}

	if tx.Amount != nil {
		props[PropAmount] = notionapi.NumberProperty{Number: *tx.Amount}
	} else if v, ok := tx.Fields.Float(domain.FieldAmount); ok {
		props[PropAmount] = notionapi.NumberProperty{Number: v}
	}
	if v, ok := tx.Fields.Float(domain.FieldAvailableBalance); ok {
		props[PropBalance] = notionapi.NumberProperty{Number: v}
	}
	if v, ok := tx.Fields.Float(domain.FieldTotalOutstanding); ok {
		props[PropOutstanding] = notionapi.NumberProperty{Number: v}
	}

	if bank := tx.Fields.String(domain.FieldBankName); bank != "" {
		props[PropBank] = notionapi.SelectProperty{Select: notionapi.Option{Name: bank}}
	}
	if acct := tx.Fields.String(domain.FieldAccountNumber); acct != "" {
		props[PropAccount] = notionapi.RichTextProperty{RichText: richText(acct)}
	}
	if ref := reference(tx.Fields); ref != "" {
		props[PropReference] = notionapi.RichTextProperty{RichText: richText(ref)}
	}

	if !tx.CreatedAt.IsZero() {
		props[PropImportedAt] = dateProperty(tx.CreatedAt.UTC())
	}
	return props
}

// Describe builds the page title: the category, amount and counterparty.
func Describe(tx store.TransactionView) string {
	parts := []string{strings.ReplaceAll(tx.MessageType, "_", " ")}

	amount, ok := tx.Fields.Float(domain.FieldAmount)
	if tx.Amount != nil {
		amount, ok = *tx.Amount, true
	}
	if ok {
		parts = append(parts, rules.FormatCurrency(amount))
	}

	for _, key := range []string{domain.FieldMerchant, domain.FieldEmployer, domain.FieldFundName, domain.FieldInsuranceCompany, domain.FieldBankName} {
		if v := tx.Fields.String(key); v != "" {
			parts = append(parts, v)
			break
		}
	}
	return strings.Join(parts, " · ")
}

func reference(fields domain.Fields) string {
	for _, key := range referenceFields {
		if v := fields.String(key); v != "" {
			return v
		}
	}
	return ""
}

// extractTransactionID reads the Transaction ID property of a queried page.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropTransactionID]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			return rt.RichText[0].PlainText
		}
	}
	return ""
}
