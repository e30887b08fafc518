package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
	"github.com/rl1809/pharmacy-records/internal/validator"
)

var (
	hundred = decimal.NewFromInt(100)

	// discountTiers is checked top down; the first threshold the total
	// reaches gives the discount percent.
	discountTiers = []struct {
		threshold decimal.Decimal
		percent   decimal.Decimal
	}{
		{decimal.NewFromInt(150), decimal.NewFromInt(10)},
		{decimal.NewFromInt(100), decimal.NewFromInt(5)},
	}
)

// Quote is the price breakdown shown before payment.
type Quote struct {
	Total           decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxPercent      decimal.Decimal
	FinalPrice      decimal.Decimal
}

// Tender carries the method-specific payment details. Only the fields of
// Method are read.
type Tender struct {
	Method domain.PaymentMethod

	CashPaid decimal.Decimal

	BankName      string
	AccountNumber string

	WalletName  string
	WalletPhone string
}

type PaymentService struct {
	transactions port.RecordStore[domain.TransactionRecord]
	taxPercent   decimal.Decimal
	log          logger.Logger
}

func NewPaymentService(transactions port.RecordStore[domain.TransactionRecord], taxPercent int, log logger.Logger) *PaymentService {
	return &PaymentService{
		transactions: transactions,
		taxPercent:   decimal.NewFromInt(int64(taxPercent)),
		log:          log.With("component", "payments"),
	}
}

func (s *PaymentService) Quote(total decimal.Decimal) Quote {
	pct := decimal.Zero
	for _, tier := range discountTiers {
		if total.GreaterThanOrEqual(tier.threshold) {
			pct = tier.percent
			break
		}
	}
	discount := total.Mul(pct).Div(hundred)
	final := total.Sub(discount).Mul(hundred.Add(s.taxPercent)).Div(hundred)

	return Quote{
		Total:           total,
		DiscountPercent: pct,
		DiscountAmount:  discount,
		TaxPercent:      s.taxPercent,
		FinalPrice:      final,
	}
}

// PayForOrder prices order, records the payment and returns the saved
// transaction. Cash payments store the paid amount and change with two
// decimals.
func (s *PaymentService) PayForOrder(ctx context.Context, order domain.OrderRecord, tender Tender) (domain.TransactionRecord, error) {
	q := s.Quote(order.Total)
	rec := domain.TransactionRecord{
		OrderNumber:     order.Number,
		TotalPrice:      q.Total,
		DiscountPercent: q.DiscountPercent,
		DiscountAmount:  q.DiscountAmount,
		TaxPercent:      q.TaxPercent,
		FinalPrice:      q.FinalPrice,
		Method:          tender.Method,
	}

	switch tender.Method {
	case domain.PaymentMethodCash:
		if tender.CashPaid.LessThan(q.FinalPrice) {
			return domain.TransactionRecord{}, ErrInsufficientPayment
		}
		rec.Field1 = tender.CashPaid.StringFixed(2)
		rec.Field2 = tender.CashPaid.Sub(q.FinalPrice).StringFixed(2)
	case domain.PaymentMethodBank:
		if strings.TrimSpace(tender.BankName) == "" || strings.TrimSpace(tender.AccountNumber) == "" {
			return domain.TransactionRecord{}, fmt.Errorf("%w: bank name and account are required", ErrInvalidTender)
		}
		rec.Field1 = tender.BankName
		rec.Field2 = tender.AccountNumber
	case domain.PaymentMethodEWallet:
		if strings.TrimSpace(tender.WalletName) == "" {
			return domain.TransactionRecord{}, fmt.Errorf("%w: wallet holder name is required", ErrInvalidTender)
		}
		if !validator.IsPhone(tender.WalletPhone) {
			return domain.TransactionRecord{}, fmt.Errorf("%w: invalid phone %q", ErrInvalidTender, tender.WalletPhone)
		}
		rec.Field1 = tender.WalletName
		rec.Field2 = tender.WalletPhone
	default:
		return domain.TransactionRecord{}, fmt.Errorf("%w: unknown method %q", ErrInvalidTender, tender.Method)
	}

	ok, err := s.transactions.Add(ctx, rec)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("save transaction %s: %w", order.Number, err)
	}
	if !ok {
		return domain.TransactionRecord{}, ErrPersistFailed
	}
	s.log.InfoContext(ctx, "payment recorded",
		"order", order.Number,
		"method", rec.Method,
		"final", rec.FinalPrice.String(),
	)
	return rec, nil
}

func (s *PaymentService) FindTransaction(ctx context.Context, orderNumber string) (domain.TransactionRecord, error) {
	rec, found, err := s.transactions.FindByKey(ctx, orderNumber)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("find transaction %s: %w", orderNumber, err)
	}
	if !found {
		return domain.TransactionRecord{}, ErrTransactionNotFound
	}
	return rec, nil
}

func (s *PaymentService) ListTransactions(ctx context.Context) ([]domain.TransactionRecord, error) {
	all, err := s.transactions.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return all, nil
}

func (s *PaymentService) DeleteTransaction(ctx context.Context, orderNumber string) error {
	ok, err := s.transactions.Delete(ctx, orderNumber)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", orderNumber, err)
	}
	if !ok {
		return ErrTransactionNotFound
	}
	s.log.InfoContext(ctx, "transaction deleted", "order", orderNumber)
	return nil
}
