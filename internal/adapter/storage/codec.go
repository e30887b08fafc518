package storage

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldDelimiter separates the columns of every data file. Values are not
// escaped, so a value containing the delimiter corrupts its row on the next
// read.
const FieldDelimiter = "||"

const (
	itemFieldCount        = 6
	orderFieldCount       = 5
	staffFieldCount       = 10
	transactionFieldCount = 9

	orderLineStart      = 2
	orderLineFieldCount = 3
)

// Codec maps one record type to and from a single line of its file. Decode
// reports false for lines it cannot read; such lines are skipped by readers
// and copied verbatim by rewrites.
type Codec[R any] interface {
	Decode(line string) (R, bool)
	Encode(r R) string
	Key(r R) string
}

// splitFields splits line on the delimiter and drops trailing empty fields,
// which is how files written by earlier versions were counted.
func splitFields(line string) []string {
	fields := strings.Split(line, FieldDelimiter)
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

func joinFields(fields ...string) string {
	return strings.Join(fields, FieldDelimiter)
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// formatDecimal always keeps a fractional part: 3 is written as "3.0".
func formatDecimal(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
