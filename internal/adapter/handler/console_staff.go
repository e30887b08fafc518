package handler

import (
	"context"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/validator"
)

func (h *ConsoleHandler) staffMenu(ctx context.Context) error {
	for {
		choice, err := h.menu("Staff", "Add staff", "Search staff", "Modify staff", "Delete staff", "Back")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = h.addStaff(ctx)
		case 2:
			err = h.searchStaff(ctx)
		case 3:
			err = h.modifyStaff(ctx)
		case 4:
			err = h.deleteStaff(ctx)
		case 5:
			return nil
		default:
			h.info("Invalid input.")
		}
		if err != nil {
			return err
		}
	}
}

// promptStaff asks for every staff field. With cur set, blank answers keep
// the current values and a blank password keeps the stored hash.
func (h *ConsoleHandler) promptStaff(cur domain.StaffRecord) (domain.StaffRecord, error) {
	var (
		rec domain.StaffRecord
		err error
	)
	if rec.ID, err = h.askValid("Staff ID (Sxxxx): ", "Invalid Staff ID format.", cur.ID, validator.IsStaffID); err != nil {
		return rec, err
	}
	if cur.Password == "" {
		rec.Password, err = h.askRequired("Password: ", "")
	} else {
		rec.Password, err = h.askRequired("Password (blank keeps current): ", cur.Password)
	}
	if err != nil {
		return rec, err
	}
	if rec.Name.First, err = h.askRequired("First name: ", cur.Name.First); err != nil {
		return rec, err
	}
	if rec.Name.Last, err = h.askRequired("Last name: ", cur.Name.Last); err != nil {
		return rec, err
	}
	if rec.Phone, err = h.askValid("Phone (XXX-XXX-XXXX or XXX-XXXX-XXXX): ", "Invalid phone number format.", cur.Phone, validator.IsPhone); err != nil {
		return rec, err
	}
	if rec.Position, err = h.askRequired("Position: ", cur.Position); err != nil {
		return rec, err
	}
	if rec.Address.Street, err = h.askRequired("Street: ", cur.Address.Street); err != nil {
		return rec, err
	}
	isPostcode := func(s string) bool { return validator.Var(s, "len=5,numeric") == nil }
	if rec.Address.Postcode, err = h.askValid("Postcode (XXXXX): ", "Invalid postcode format.", cur.Address.Postcode, isPostcode); err != nil {
		return rec, err
	}
	if rec.Address.Region, err = h.askRequired("Region: ", cur.Address.Region); err != nil {
		return rec, err
	}
	if rec.Address.State, err = h.askRequired("State: ", cur.Address.State); err != nil {
		return rec, err
	}
	return rec, nil
}

func (h *ConsoleHandler) addStaff(ctx context.Context) error {
	rec, err := h.promptStaff(domain.StaffRecord{})
	if err != nil {
		return err
	}
	if _, err := h.svc.Staff.AddStaff(ctx, rec); err != nil {
		h.report(err)
		return nil
	}
	h.info("Staff added successfully.")
	return nil
}

func (h *ConsoleHandler) searchStaff(ctx context.Context) error {
	id, err := h.ask("Staff ID to search (blank for all): ")
	if err != nil {
		return err
	}

	var list []domain.StaffRecord
	if id == "" {
		list, err = h.svc.Staff.ListStaff(ctx)
	} else {
		var rec domain.StaffRecord
		rec, err = h.svc.Staff.FindStaff(ctx, id)
		list = []domain.StaffRecord{rec}
	}
	if err != nil {
		h.report(err)
		return nil
	}

	t := h.table()
	t.AddRow("ID", "NAME", "PHONE", "POSITION", "ADDRESS")
	for _, s := range list {
		a := s.Address
		t.AddRow(s.ID, s.Name.First+" "+s.Name.Last, s.Phone, s.Position, a.Street+", "+a.Postcode+" "+a.Region+", "+a.State)
	}
	h.printTable(t)
	return nil
}

func (h *ConsoleHandler) modifyStaff(ctx context.Context) error {
	id, err := h.ask("Staff ID to modify: ")
	if err != nil {
		return err
	}
	cur, err := h.svc.Staff.FindStaff(ctx, id)
	if err != nil {
		h.report(err)
		return nil
	}

	h.info("Leave blank to keep existing value.")
	rec, err := h.promptStaff(cur)
	if err != nil {
		return err
	}
	if _, err := h.svc.Staff.UpdateStaff(ctx, id, rec); err != nil {
		h.report(err)
		return nil
	}
	h.info("Staff modified successfully.")
	return nil
}

func (h *ConsoleHandler) deleteStaff(ctx context.Context) error {
	id, err := h.ask("Staff ID to delete: ")
	if err != nil {
		return err
	}
	ok, err := h.askYes("Confirm delete " + id + "? (Y/N): ")
	if err != nil || !ok {
		return err
	}
	if err := h.svc.Staff.DeleteStaff(ctx, id); err != nil {
		h.report(err)
		return nil
	}
	h.info("Staff deleted successfully.")
	return nil
}
