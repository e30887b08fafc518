package domain

import "github.com/shopspring/decimal"

// DateLayout is the timestamp format stored in the order file.
const DateLayout = "2006-01-02 15:04:05"

type OrderLine struct {
	ItemCode string          `validate:"required,itemcode"`
	Quantity int             `validate:"gt=0"`
	Subtotal decimal.Decimal // frozen at line-entry time
}

// NewOrderLine prices qty units of item at its current price.
func NewOrderLine(item ItemRecord, qty int) OrderLine {
	return OrderLine{
		ItemCode: item.Code,
		Quantity: qty,
		Subtotal: item.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

type OrderRecord struct {
	Number string `validate:"required,ordernumber"`
	Date   string
	Lines  []OrderLine
	Total  decimal.Decimal
}

// NewOrderRecord builds an order whose total is the sum of its line subtotals.
func NewOrderRecord(number, date string, lines []OrderLine) OrderRecord {
	return OrderRecord{
		Number: number,
		Date:   date,
		Lines:  lines,
		Total:  SumSubtotals(lines),
	}
}

func SumSubtotals(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}
