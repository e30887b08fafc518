package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodBank    PaymentMethod = "BANK"
	PaymentMethodEWallet PaymentMethod = "EWALLET"
)

// ParsePaymentMethod accepts legacy or mixed-case method names.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodEWallet:
		return m, true
	}
	return "", false
}

type TransactionRecord struct {
	OrderNumber     string
	TotalPrice      decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxPercent      decimal.Decimal
	FinalPrice      decimal.Decimal
	// Field1 and Field2 depend on Method: paid amount and change for cash,
	// bank name and account for bank, holder name and phone for e-wallet.
	Field1 string
	Field2 string
	Method PaymentMethod
}
