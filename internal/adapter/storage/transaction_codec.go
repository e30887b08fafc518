package storage

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

type TransactionCodec struct{}

func (TransactionCodec) Key(r domain.TransactionRecord) string { return r.OrderNumber }

func (TransactionCodec) Decode(line string) (domain.TransactionRecord, bool) {
	f := splitFields(line)
	if len(f) < transactionFieldCount {
		return domain.TransactionRecord{}, false
	}

	amounts := make([]decimal.Decimal, 5)
	for i := range amounts {
		d, ok := parseDecimal(f[i+1])
		if !ok {
			return domain.TransactionRecord{}, false
		}
		amounts[i] = d
	}
	method, ok := domain.ParsePaymentMethod(f[8])
	if !ok {
		return domain.TransactionRecord{}, false
	}

	return domain.TransactionRecord{
		OrderNumber:     f[0],
		TotalPrice:      amounts[0],
		DiscountPercent: amounts[1],
		DiscountAmount:  amounts[2],
		TaxPercent:      amounts[3],
		FinalPrice:      amounts[4],
		Field1:          f[6],
		Field2:          f[7],
		Method:          method,
	}, true
}

func (TransactionCodec) Encode(r domain.TransactionRecord) string {
	return joinFields(
		r.OrderNumber,
		formatDecimal(r.TotalPrice),
		formatDecimal(r.DiscountPercent),
		formatDecimal(r.DiscountAmount),
		formatDecimal(r.TaxPercent),
		formatDecimal(r.FinalPrice),
		r.Field1,
		r.Field2,
		string(r.Method),
	)
}
