package handler

import (
	"context"
	"strconv"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/validator"
)

func (h *ConsoleHandler) itemMenu(ctx context.Context) error {
	for {
		choice, err := h.menu("Item", "Add item", "Search item", "Modify item", "Delete item", "Back")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = h.addItem(ctx)
		case 2:
			err = h.searchItems(ctx)
		case 3:
			err = h.modifyItem(ctx)
		case 4:
			err = h.deleteItem(ctx)
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

func extraLabels(kind domain.ItemKind) (string, string) {
	if kind == domain.ItemKindSupplement {
		return "Function", "Expiry date (YYYYMMDD)"
	}
	return "For disease", "Days per dose"
}

// promptItem asks for every item field. The code prefix picks the kind. With
// cur set, blank answers keep the current values.
func (h *ConsoleHandler) promptItem(cur *domain.ItemRecord) (domain.ItemRecord, error) {
	var (
		rec  domain.ItemRecord
		keep domain.ItemRecord
		err  error
	)
	if cur != nil {
		keep = *cur
	}

	if rec.Code, err = h.askValid("Item code (Mxxxx medicine, Sxxxx supplement): ", "Invalid item code format.", keep.Code, validator.IsItemCode); err != nil {
		return rec, err
	}
	if rec.Description, err = h.askRequired("Description: ", keep.Description); err != nil {
		return rec, err
	}

	keepPrice, keepQty := &keep.Price, &keep.Quantity
	if cur == nil {
		keepPrice, keepQty = nil, nil
	}
	if rec.Price, err = h.askDecimal("Price: ", keepPrice); err != nil {
		return rec, err
	}
	if rec.Quantity, err = h.askInt("Quantity: ", 0, keepQty); err != nil {
		return rec, err
	}

	kind, _ := domain.KindForCode(rec.Code)
	label1, label2 := extraLabels(kind)
	var (
		keepExtra1 string
		keepExtra2 *int
	)
	if cur != nil && cur.Kind() == kind {
		e1, e2 := cur.Details.Extra()
		keepExtra1, keepExtra2 = e1, &e2
	}
	extra1, err := h.askRequired(label1+": ", keepExtra1)
	if err != nil {
		return rec, err
	}
	extra2, err := h.askInt(label2+": ", 0, keepExtra2)
	if err != nil {
		return rec, err
	}
	rec.Details = domain.NewItemDetails(kind, extra1, extra2)
	return rec, nil
}

func (h *ConsoleHandler) addItem(ctx context.Context) error {
	rec, err := h.promptItem(nil)
	if err != nil {
		return err
	}
	if err := h.svc.Items.AddItem(ctx, rec); err != nil {
		h.report(err)
		return nil
	}
	h.info("Item added successfully.")
	return nil
}

func (h *ConsoleHandler) searchItems(ctx context.Context) error {
	code, err := h.ask("Item code to search (blank for all): ")
	if err != nil {
		return err
	}

	var list []domain.ItemRecord
	if code == "" {
		list, err = h.svc.Items.ListItems(ctx)
	} else {
		var rec domain.ItemRecord
		rec, err = h.svc.Items.FindItem(ctx, code)
		list = []domain.ItemRecord{rec}
	}
	if err != nil {
		h.report(err)
		return nil
	}

	h.printItems(list)
	if code == "" {
		h.info("Total items: %d", len(list))
	}
	return nil
}

func (h *ConsoleHandler) printItems(list []domain.ItemRecord) {
	t := h.table()
	t.RightAlign(2)
	t.RightAlign(3)
	t.AddRow("CODE", "DESCRIPTION", "PRICE", "QTY", "KIND", "DETAIL", "")
	for _, it := range list {
		extra1, extra2 := "", 0
		if it.Details != nil {
			extra1, extra2 = it.Details.Extra()
		}
		t.AddRow(it.Code, it.Description, it.Price.StringFixed(2), it.Quantity, it.Kind(), extra1, strconv.Itoa(extra2))
	}
	h.printTable(t)
}

func (h *ConsoleHandler) modifyItem(ctx context.Context) error {
	code, err := h.ask("Item code to modify: ")
	if err != nil {
		return err
	}
	cur, err := h.svc.Items.FindItem(ctx, code)
	if err != nil {
		h.report(err)
		return nil
	}

	h.info("Leave blank to keep existing value.")
	rec, err := h.promptItem(&cur)
	if err != nil {
		return err
	}
	if err := h.svc.Items.UpdateItem(ctx, code, rec); err != nil {
		h.report(err)
		return nil
	}
	h.info("Item modified successfully.")
	return nil
}

func (h *ConsoleHandler) deleteItem(ctx context.Context) error {
	code, err := h.ask("Item code to delete: ")
	if err != nil {
		return err
	}
	ok, err := h.askYes("Confirm delete " + code + "? (Y/N): ")
	if err != nil || !ok {
		return err
	}
	if err := h.svc.Items.DeleteItem(ctx, code); err != nil {
		h.report(err)
		return nil
	}
	h.info("Item deleted successfully.")
	return nil
}
