package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ItemKind string

const (
	ItemKindMedicine   ItemKind = "medicine"
	ItemKindSupplement ItemKind = "supplement"
)

const (
	MedicineCodePrefix   = "M"
	SupplementCodePrefix = "S"
)

// ItemDetails holds the kind-specific part of an item. It is implemented
// by Medicine and Supplement only.
type ItemDetails interface {
	Kind() ItemKind
	// Extra returns the two positional extra columns stored in the item file.
	Extra() (string, int)
}

type Medicine struct {
	ForDisease  string
	DaysPerDose int
}

func (Medicine) Kind() ItemKind         { return ItemKindMedicine }
func (m Medicine) Extra() (string, int) { return m.ForDisease, m.DaysPerDose }

type Supplement struct {
	Function   string
	ExpiryDate int
}

func (Supplement) Kind() ItemKind         { return ItemKindSupplement }
func (s Supplement) Extra() (string, int) { return s.Function, s.ExpiryDate }

type ItemRecord struct {
	Code        string `validate:"required,itemcode"`
	Description string `validate:"required"`
	Price       decimal.Decimal
	Quantity    int         // not floored at zero; see service.Ledger
	Details     ItemDetails `validate:"required"`
}

func (r ItemRecord) Kind() ItemKind {
	if r.Details == nil {
		return ""
	}
	return r.Details.Kind()
}

// WithQuantity returns a copy of r holding qty units.
func (r ItemRecord) WithQuantity(qty int) ItemRecord {
	r.Quantity = qty
	return r
}

// KindForCode maps an item code prefix to its kind.
func KindForCode(code string) (ItemKind, bool) {
	switch {
	case strings.HasPrefix(code, MedicineCodePrefix):
		return ItemKindMedicine, true
	case strings.HasPrefix(code, SupplementCodePrefix):
		return ItemKindSupplement, true
	}
	return "", false
}

// NewItemDetails builds the details variant for kind from the two extra columns.
func NewItemDetails(kind ItemKind, extra1 string, extra2 int) ItemDetails {
	if kind == ItemKindSupplement {
		return Supplement{Function: extra1, ExpiryDate: extra2}
	}
	return Medicine{ForDisease: extra1, DaysPerDose: extra2}
}
