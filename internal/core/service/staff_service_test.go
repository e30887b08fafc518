package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
)

func staffMember(id, password string) domain.StaffRecord {
	return domain.StaffRecord{
		ID:       id,
		Password: password,
		Name:     domain.Name{First: "Siti", Last: "Aminah"},
		Phone:    "012-345-6789",
		Position: "Pharmacist",
		Address: domain.Address{
			Street:   "12 Jalan Dua",
			Postcode: "43000",
			Region:   "Kajang",
			State:    "Selangor",
		},
	}
}

func newStaffService(records ...domain.StaffRecord) (*StaffService, *memStore[domain.StaffRecord]) {
	store := newMemStore(func(r domain.StaffRecord) string { return r.ID }, records...)
	return NewStaffService(store, plainHasher{}, logger.Discard()), store
}

func TestAddStaff_HashesPassword(t *testing.T) {
	svc, store := newStaffService()
	ctx := context.Background()

	saved, err := svc.AddStaff(ctx, staffMember("S0001", "pw"))
	require.NoError(t, err)
	assert.Equal(t, "salt:pw", saved.Password)

	stored, _ := store.get("S0001")
	assert.Equal(t, "salt:pw", stored.Password)

	_, err = svc.AddStaff(ctx, staffMember("S0001", "other"))
	assert.ErrorIs(t, err, ErrStaffIDTaken)
}

func TestAddStaff_KeepsHashedPassword(t *testing.T) {
	svc, _ := newStaffService()

	saved, err := svc.AddStaff(context.Background(), staffMember("S0001", "salt:pw"))
	require.NoError(t, err)
	assert.Equal(t, "salt:pw", saved.Password)
}

func TestAddStaff_Invalid(t *testing.T) {
	svc, _ := newStaffService()

	bad := staffMember("S1", "pw")
	_, err := svc.AddStaff(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidStaff)

	bad = staffMember("S0001", "pw")
	bad.Phone = "not a phone"
	_, err = svc.AddStaff(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidStaff)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newStaffService(staffMember("S0001", "salt:pw"), staffMember("S0002", "legacy"))
	ctx := context.Background()

	rec, err := svc.Authenticate(ctx, "S0001", "pw")
	require.NoError(t, err)
	assert.Equal(t, "S0001", rec.ID)

	_, err = svc.Authenticate(ctx, "S0002", "legacy")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "S0001", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "S0404", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateDeleteStaff(t *testing.T) {
	svc, store := newStaffService(staffMember("S0001", "salt:pw"), staffMember("S0002", "salt:pw"))
	ctx := context.Background()

	changed := staffMember("S0003", "newpw")
	_, err := svc.UpdateStaff(ctx, "S0001", changed)
	require.NoError(t, err)
	got, found := store.get("S0003")
	require.True(t, found)
	assert.Equal(t, "salt:newpw", got.Password)

	_, err = svc.UpdateStaff(ctx, "S0003", staffMember("S0002", "x"))
	assert.ErrorIs(t, err, ErrStaffIDTaken)

	_, err = svc.UpdateStaff(ctx, "S0404", staffMember("S0404", "x"))
	assert.ErrorIs(t, err, ErrStaffNotFound)

	require.NoError(t, svc.DeleteStaff(ctx, "S0002"))
	assert.ErrorIs(t, svc.DeleteStaff(ctx, "S0002"), ErrStaffNotFound)

	_, err = svc.FindStaff(ctx, "S0002")
	assert.ErrorIs(t, err, ErrStaffNotFound)

	all, err := svc.ListStaff(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	n, err := svc.CountStaff(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
