package storage

import (
	"strconv"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

type ItemCodec struct{}

func (ItemCodec) Key(r domain.ItemRecord) string { return r.Code }

func (ItemCodec) Decode(line string) (domain.ItemRecord, bool) {
	f := splitFields(line)
	if len(f) < itemFieldCount {
		return domain.ItemRecord{}, false
	}

	kind, ok := domain.KindForCode(f[0])
	if !ok {
		return domain.ItemRecord{}, false
	}
	price, ok := parseDecimal(f[2])
	if !ok {
		return domain.ItemRecord{}, false
	}
	qty, ok := parseInt(f[3])
	if !ok {
		return domain.ItemRecord{}, false
	}
	extra2, ok := parseInt(f[5])
	if !ok {
		return domain.ItemRecord{}, false
	}

	return domain.ItemRecord{
		Code:        f[0],
		Description: f[1],
		Price:       price,
		Quantity:    qty,
		Details:     domain.NewItemDetails(kind, f[4], extra2),
	}, true
}

func (ItemCodec) Encode(r domain.ItemRecord) string {
	var (
		extra1 string
		extra2 int
	)
	if r.Details != nil {
		extra1, extra2 = r.Details.Extra()
	}
	return joinFields(
		r.Code,
		r.Description,
		formatDecimal(r.Price),
		strconv.Itoa(r.Quantity),
		extra1,
		strconv.Itoa(extra2),
	)
}
