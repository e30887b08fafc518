package storage

import "github.com/rl1809/pharmacy-records/internal/core/domain"

type StaffCodec struct{}

func (StaffCodec) Key(r domain.StaffRecord) string { return r.ID }

func (StaffCodec) Decode(line string) (domain.StaffRecord, bool) {
	f := splitFields(line)
	if len(f) < staffFieldCount {
		return domain.StaffRecord{}, false
	}
	return domain.StaffRecord{
		ID:       f[0],
		Password: f[1],
		Name:     domain.Name{First: f[2], Last: f[3]},
		Phone:    f[4],
		Position: f[5],
		Address: domain.Address{
			Street:   f[6],
			Postcode: f[7],
			Region:   f[8],
			State:    f[9],
		},
	}, true
}

func (StaffCodec) Encode(r domain.StaffRecord) string {
	return joinFields(
		r.ID,
		r.Password,
		r.Name.First,
		r.Name.Last,
		r.Phone,
		r.Position,
		r.Address.Street,
		r.Address.Postcode,
		r.Address.Region,
		r.Address.State,
	)
}
