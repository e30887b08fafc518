package service

import (
	"context"
	"fmt"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
	"github.com/rl1809/pharmacy-records/internal/validator"
)

type StaffService struct {
	staff  port.RecordStore[domain.StaffRecord]
	hasher port.PasswordHasher
	log    logger.Logger
}

func NewStaffService(staff port.RecordStore[domain.StaffRecord], hasher port.PasswordHasher, log logger.Logger) *StaffService {
	return &StaffService{
		staff:  staff,
		hasher: hasher,
		log:    log.With("component", "staff"),
	}
}

// prepare validates rec and hashes a password that is not hashed yet.
func (s *StaffService) prepare(rec domain.StaffRecord) (domain.StaffRecord, error) {
	if err := validator.Validate(&rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidStaff, validator.FormatErrors(err))
	}
	if !s.hasher.IsHashed(rec.Password) {
		hashed, err := s.hasher.Hash(rec.Password)
		if err != nil {
			return rec, fmt.Errorf("hash password: %w", err)
		}
		rec.Password = hashed
	}
	return rec, nil
}

func (s *StaffService) AddStaff(ctx context.Context, rec domain.StaffRecord) (domain.StaffRecord, error) {
	rec, err := s.prepare(rec)
	if err != nil {
		return domain.StaffRecord{}, err
	}

	_, taken, err := s.staff.FindByKey(ctx, rec.ID)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("find staff %s: %w", rec.ID, err)
	}
	if taken {
		return domain.StaffRecord{}, ErrStaffIDTaken
	}

	ok, err := s.staff.Add(ctx, rec)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("save staff %s: %w", rec.ID, err)
	}
	if !ok {
		return domain.StaffRecord{}, ErrPersistFailed
	}
	s.log.InfoContext(ctx, "staff added", "staff", rec.ID)
	return rec, nil
}

func (s *StaffService) FindStaff(ctx context.Context, id string) (domain.StaffRecord, error) {
	rec, found, err := s.staff.FindByKey(ctx, id)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("find staff %s: %w", id, err)
	}
	if !found {
		return domain.StaffRecord{}, ErrStaffNotFound
	}
	return rec, nil
}

func (s *StaffService) ListStaff(ctx context.Context) ([]domain.StaffRecord, error) {
	all, err := s.staff.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return all, nil
}

func (s *StaffService) UpdateStaff(ctx context.Context, oldID string, rec domain.StaffRecord) (domain.StaffRecord, error) {
	rec, err := s.prepare(rec)
	if err != nil {
		return domain.StaffRecord{}, err
	}

	if rec.ID != oldID {
		_, taken, err := s.staff.FindByKey(ctx, rec.ID)
		if err != nil {
			return domain.StaffRecord{}, fmt.Errorf("find staff %s: %w", rec.ID, err)
		}
		if taken {
			return domain.StaffRecord{}, ErrStaffIDTaken
		}
	}

	ok, err := s.staff.Update(ctx, oldID, rec)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("update staff %s: %w", oldID, err)
	}
	if !ok {
		return domain.StaffRecord{}, ErrStaffNotFound
	}
	s.log.InfoContext(ctx, "staff updated", "staff", oldID, "new_id", rec.ID)
	return rec, nil
}

func (s *StaffService) DeleteStaff(ctx context.Context, id string) error {
	ok, err := s.staff.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete staff %s: %w", id, err)
	}
	if !ok {
		return ErrStaffNotFound
	}
	s.log.InfoContext(ctx, "staff deleted", "staff", id)
	return nil
}

func (s *StaffService) CountStaff(ctx context.Context) (int, error) {
	n, err := s.staff.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return n, nil
}

// Authenticate checks id and password against the staff file. Unknown ids
// and wrong passwords both report ErrInvalidCredentials.
func (s *StaffService) Authenticate(ctx context.Context, id, password string) (domain.StaffRecord, error) {
	rec, found, err := s.staff.FindByKey(ctx, id)
	if err != nil {
		return domain.StaffRecord{}, fmt.Errorf("find staff %s: %w", id, err)
	}
	if !found || !s.hasher.Verify(password, rec.Password) {
		s.log.WarnContext(ctx, "login rejected", "staff", id)
		return domain.StaffRecord{}, ErrInvalidCredentials
	}
	return rec, nil
}
