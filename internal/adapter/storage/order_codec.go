package storage

import (
	"strconv"
	"strings"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

type OrderCodec struct{}

func (OrderCodec) Key(r domain.OrderRecord) string { return r.Number }

// Decode reads number, date, then (code, quantity, subtotal) triples up to
// the last field, which is the total. A short trailing group is ignored.
func (OrderCodec) Decode(line string) (domain.OrderRecord, bool) {
	f := splitFields(line)
	if len(f) < orderFieldCount {
		return domain.OrderRecord{}, false
	}

	var lines []domain.OrderLine
	for i := orderLineStart; i < len(f)-1; i += orderLineFieldCount {
		if i+orderLineFieldCount-1 >= len(f) {
			break
		}
		qty, ok := parseInt(f[i+1])
		if !ok {
			return domain.OrderRecord{}, false
		}
		subtotal, ok := parseDecimal(f[i+2])
		if !ok {
			return domain.OrderRecord{}, false
		}
		lines = append(lines, domain.OrderLine{ItemCode: f[i], Quantity: qty, Subtotal: subtotal})
	}

	total, ok := parseDecimal(f[len(f)-1])
	if !ok {
		return domain.OrderRecord{}, false
	}

	return domain.OrderRecord{Number: f[0], Date: f[1], Lines: lines, Total: total}, true
}

func (OrderCodec) Encode(r domain.OrderRecord) string {
	var sb strings.Builder
	sb.WriteString(r.Number)
	sb.WriteString(FieldDelimiter)
	sb.WriteString(r.Date)
	sb.WriteString(FieldDelimiter)
	for _, l := range r.Lines {
		sb.WriteString(joinFields(l.ItemCode, strconv.Itoa(l.Quantity), formatDecimal(l.Subtotal)))
		sb.WriteString(FieldDelimiter)
	}
	sb.WriteString(formatDecimal(r.Total))
	return sb.String()
}
