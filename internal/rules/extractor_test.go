package rules

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

func TestExtract_CreditTransaction(t *testing.T) {
	msg := "Rs. 5,000.00 credited to A/c XX1234 on 05-Jan-24 from HDFC Bank"

	got := Extract(domain.CategoryCreditTransaction, msg)

	want := domain.Fields{
		domain.FieldAmount:          5000.0,
		domain.FieldAccountNumber:   "1234",
		domain.FieldTransactionDate: "2024-01-05",
		domain.FieldBankName:        "HDFC Bank",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestExtract_CategorySpecific(t *testing.T) {
	tests := []struct {
		name     string
		category domain.Category
		message  string
		want     map[string]any
		absent   []string
	}{
		{
			name:     "salary employer between dashes",
			category: domain.CategorySalaryCredit,
			message:  "Rs 50,000.00 credited to A/c XX9876 - ACME CORP - salary for Jan",
			want: map[string]any{
				domain.FieldAmount:        50000.0,
				domain.FieldAccountNumber: "9876",
				domain.FieldEmployer:      "ACME CORP",
			},
		},
		{
			name:     "salary employer default",
			category: domain.CategorySalaryCredit,
			message:  "Your salary of Rs 50000 has been credited",
			want:     map[string]any{domain.FieldEmployer: "Salary Credit"},
		},
		{
			name:     "emi with loan reference",
			category: domain.CategoryEMIPayment,
			message:  "Your Home Loan EMI of Rs 12,500 has been debited from A/c XX1111. Ref HL0012345678",
			want: map[string]any{
				domain.FieldAmount:        12500.0,
				domain.FieldLoanType:      "Home",
				domain.FieldLoanReference: "HL0012345678",
			},
		},
		{
			name:     "emi loan type prefers the word after Loan",
			category: domain.CategoryEMIPayment,
			message:  "EMI of Rs 4,000 debited for Loan Vehicle. Thank you for choosing our car loan",
			want:     map[string]any{domain.FieldLoanType: "Vehicle"},
		},
		{
			name:     "emi loan type skips filler after Loan",
			category: domain.CategoryEMIPayment,
			message:  "EMI of Rs 4,000 debited for your Education Loan account",
			want:     map[string]any{domain.FieldLoanType: "Education"},
		},
		{
			name:     "emi loan type default",
			category: domain.CategoryEMIPayment,
			message:  "EMI of Rs 2000 deducted",
			want:     map[string]any{domain.FieldLoanType: "Personal Loan"},
			absent:   []string{domain.FieldLoanReference},
		},
		{
			name:     "credit card purchase",
			category: domain.CategoryCreditCardTransaction,
			message:  "Rs 2,300.50 spent on your ICICI Bank Credit Card XX4321 at Amazon Retail on 02-Feb-24. Authorization code: AB12CD. Total outstanding is Rs 15,000.00",
			want: map[string]any{
				domain.FieldAmount:            2300.5,
				domain.FieldTransactionDate:   "2024-02-02",
				domain.FieldBankName:          "ICICI Bank",
				domain.FieldMerchant:          "Amazon Retail",
				domain.FieldAuthorizationCode: "AB12CD",
				domain.FieldTotalOutstanding:  15000.0,
			},
		},
		{
			name:     "sip without folio",
			category: domain.CategorySIPInvestment,
			message:  "Your SIP of Rs 5,000 in Axis Bluechip Fund Regular Growth has been processed. NAV 45.67",
			want: map[string]any{
				domain.FieldAmount:   5000.0,
				domain.FieldFundName: "Axis Bluechip Fund",
				domain.FieldNAVValue: 45.67,
			},
			absent: []string{domain.FieldFolioNumber, domain.FieldTransactionDate},
		},
		{
			name:     "sip with folio and date",
			category: domain.CategorySIPInvestment,
			message:  "SIP of Rs 2,000 for Folio 12345678 in HDFC Flexi Cap Fund has been processed on 10/03/2024. NAV of 102.5",
			want: map[string]any{
				domain.FieldAmount:          2000.0,
				domain.FieldFolioNumber:     "12345678",
				domain.FieldFundName:        "HDFC Flexi Cap Fund",
				domain.FieldTransactionDate: "2024-03-10",
				domain.FieldNAVValue:        102.5,
			},
		},
		{
			name:     "insurance premium",
			category: domain.CategoryInsurancePayment,
			message:  "Premium of Rs 12,000 received for LIC policy no. 987654321. Thank you",
			want: map[string]any{
				domain.FieldAmount:           12000.0,
				domain.FieldPolicyNumber:     "987654321",
				domain.FieldInsuranceCompany: "LIC",
				domain.FieldInsuranceType:    "Life Insurance",
			},
		},
		{
			name:     "insurance without policy digits",
			category: domain.CategoryInsurancePayment,
			message:  "Your policy has been renewed with Tata AIA",
			want: map[string]any{
				domain.FieldInsuranceCompany: "Tata AIA",
			},
			absent: []string{domain.FieldPolicyNumber},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.category, tt.message)
			for k, v := range tt.want {
				if !reflect.DeepEqual(got[k], v) {
					t.Errorf("field %s = %#v, want %#v (all: %#v)", k, got[k], v, got)
				}
			}
			for _, k := range tt.absent {
				if _, ok := got[k]; ok {
					t.Errorf("field %s should be absent, got %#v", k, got[k])
				}
			}
		})
	}
}

func TestExtract_Promotional(t *testing.T) {
	msg := "Flat 50% cashback on Rs 500 recharge. Shop now!"

	got := Extract(domain.CategoryPromotional, msg)

	want := domain.Fields{domain.FieldMessage: msg}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestExtract_FieldsOnlyForOwningCategory(t *testing.T) {
	msg := "Rs 2,300 spent at Amazon on 02-Feb-24. Authorization code: AB12CD"

	got := Extract(domain.CategoryDebitTransaction, msg)

	for _, k := range []string{domain.FieldMerchant, domain.FieldAuthorizationCode} {
		if got.Has(k) {
			t.Errorf("debit extraction should not carry %s", k)
		}
	}
}

func TestExtract_NumericFieldsAreFloats(t *testing.T) {
	messages := []string{
		"Rs. 5,000.00 credited to A/c XX1234 on 05-Jan-24 from HDFC Bank. Avl Bal Rs 12,345.67",
		"INR 1,23,456. debited from account 99887766. Available balance: INR 10.",
		"Your SIP of INR 1,000 has been processed. NAV of 12.3.4",
		"Rs 999 spent on Credit Card XX1111. Total outstanding is Rs 5,432.10",
	}
	for _, msg := range messages {
		for _, cat := range domain.AllCategories {
			for k, v := range Extract(cat, msg) {
				if !IsNumericField(k) {
					continue
				}
				if _, ok := v.(float64); !ok {
					t.Errorf("Extract(%s, %q)[%s] = %T, want float64", cat, msg, k, v)
				}
			}
		}
	}
}

func TestExtractContext_LogsUnparsedDate(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewWithOptions(logger.Options{Level: "debug", Format: "json", Out: buf})
	ctx := logger.WithContext(context.Background(), log)
	msg := "Rs 700 debited from A/c XX4455 on 45/13/24"

	got := ExtractContext(ctx, domain.CategoryDebitTransaction, msg)

	if !reflect.DeepEqual(got, Extract(domain.CategoryDebitTransaction, msg)) {
		t.Errorf("ExtractContext() = %#v, differs from Extract()", got)
	}
	if got.Has(domain.FieldTransactionDate) {
		t.Errorf("transaction_date = %v, want absent", got[domain.FieldTransactionDate])
	}
	out := buf.String()
	if !strings.Contains(out, `"field":"transaction_date"`) || !strings.Contains(out, "45/13/24") {
		t.Errorf("expected a debug entry for the rejected date, got: %s", out)
	}
}
