package handler

import (
	"context"
	"errors"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/core/service"
	"github.com/rl1809/pharmacy-records/internal/validator"
)

func (h *ConsoleHandler) transactionMenu(ctx context.Context) error {
	for {
		choice, err := h.menu("Transaction", "Search transaction", "Delete transaction", "Back")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = h.searchTransactions(ctx)
		case 2:
			err = h.deleteTransaction(ctx)
		case 3:
			return nil
		default:
			h.info("Invalid input.")
		}
		if err != nil {
			return err
		}
	}
}

// pay shows the price breakdown for a freshly created order and records the
// payment.
func (h *ConsoleHandler) pay(ctx context.Context, order domain.OrderRecord) error {
	q := h.svc.Payments.Quote(order.Total)
	t := h.table()
	t.RightAlign(1)
	t.AddRow("Total", q.Total.StringFixed(2))
	t.AddRow("Discount ("+q.DiscountPercent.String()+"%)", q.DiscountAmount.StringFixed(2))
	t.AddRow("Tax ("+q.TaxPercent.String()+"%)", "")
	t.AddRow("Final price", q.FinalPrice.StringFixed(2))
	h.printTable(t)

	for {
		choice, err := h.menu("Payment method", "Cash", "Bank", "E-wallet")
		if err != nil {
			return err
		}

		tender := service.Tender{}
		switch choice {
		case 1:
			tender.Method = domain.PaymentMethodCash
			if tender.CashPaid, err = h.askDecimal("Pay amount: RM", nil); err != nil {
				return err
			}
		case 2:
			tender.Method = domain.PaymentMethodBank
			if tender.BankName, err = h.askRequired("Bank name: ", ""); err != nil {
				return err
			}
			if tender.AccountNumber, err = h.askRequired("Account number: ", ""); err != nil {
				return err
			}
		case 3:
			tender.Method = domain.PaymentMethodEWallet
			if tender.WalletName, err = h.askRequired("Name: ", ""); err != nil {
				return err
			}
			if tender.WalletPhone, err = h.askValid("Phone: ", "Invalid phone number format.", "", validator.IsPhone); err != nil {
				return err
			}
		default:
			h.info("Invalid input.")
			continue
		}

		rec, err := h.svc.Payments.PayForOrder(ctx, order, tender)
		if errors.Is(err, service.ErrInsufficientPayment) {
			h.report(err)
			continue
		}
		if err != nil {
			h.report(err)
			return nil
		}
		h.info("Payment saved.")
		if rec.Method == domain.PaymentMethodCash {
			h.info("Change: RM%s", rec.Field2)
		}
		return nil
	}
}

func (h *ConsoleHandler) searchTransactions(ctx context.Context) error {
	number, err := h.ask("Order number (blank for all): ")
	if err != nil {
		return err
	}

	var list []domain.TransactionRecord
	if number == "" {
		list, err = h.svc.Payments.ListTransactions(ctx)
	} else {
		var rec domain.TransactionRecord
		rec, err = h.svc.Payments.FindTransaction(ctx, number)
		list = []domain.TransactionRecord{rec}
	}
	if err != nil {
		h.report(err)
		return nil
	}

	t := h.table()
	t.AddRow("ORDER", "TOTAL", "DISC%", "DISCOUNT", "TAX%", "FINAL", "METHOD", "DETAIL", "")
	for _, r := range list {
		t.AddRow(r.OrderNumber,
			r.TotalPrice.StringFixed(2),
			r.DiscountPercent.String(),
			r.DiscountAmount.StringFixed(2),
			r.TaxPercent.String(),
			r.FinalPrice.StringFixed(2),
			r.Method,
			r.Field1,
			r.Field2,
		)
	}
	h.printTable(t)
	return nil
}

func (h *ConsoleHandler) deleteTransaction(ctx context.Context) error {
	number, err := h.ask("Order number of the transaction to delete: ")
	if err != nil {
		return err
	}
	if err := h.svc.Payments.DeleteTransaction(ctx, number); err != nil {
		h.report(err)
		return nil
	}
	h.info("Transaction deleted.")
	return nil
}
