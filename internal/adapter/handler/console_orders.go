package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/core/service"
	"github.com/rl1809/pharmacy-records/internal/port"
	"github.com/rl1809/pharmacy-records/internal/validator"
)

func (h *ConsoleHandler) orderMenu(ctx context.Context) error {
	for {
		choice, err := h.menu("Order", "Add order", "Search order", "Update order", "Delete order", "Back")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = h.addOrder(ctx)
		case 2:
			err = h.searchOrders(ctx)
		case 3:
			err = h.updateOrder(ctx)
		case 4:
			err = h.deleteOrder(ctx)
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

func (h *ConsoleHandler) askOrderNumber(prompt string) (string, error) {
	return h.askValid(prompt, "Invalid order number format (O followed by digits).", "", validator.IsOrderNumber)
}

func (h *ConsoleHandler) addOrder(ctx context.Context) error {
	number, err := h.askOrderNumber("Order number (e.g. O1001): ")
	if err != nil {
		return err
	}
	_, err = h.svc.Orders.FindOrder(ctx, number)
	switch {
	case err == nil:
		h.report(service.ErrAlreadyExists)
		return nil
	case !errors.Is(err, service.ErrOrderNotFound):
		h.report(err)
		return nil
	}

	lines, err := h.Collector().CollectLines(ctx, nil)
	if err != nil {
		return err
	}
	order, err := h.svc.Orders.CreateOrder(ctx, number, lines)
	if err != nil {
		h.report(err)
		return nil
	}
	h.info("Order created successfully.")
	h.printOrder(order)
	return h.pay(ctx, order)
}

func (h *ConsoleHandler) searchOrders(ctx context.Context) error {
	number, err := h.ask("Order number to search (blank for all): ")
	if err != nil {
		return err
	}
	if number == "" {
		orders, err := h.svc.Orders.ListOrders(ctx)
		if err != nil {
			h.report(err)
			return nil
		}
		for _, o := range orders {
			h.printOrder(o)
		}
		h.info("Total orders: %d", len(orders))
		return nil
	}

	order, err := h.svc.Orders.FindOrder(ctx, number)
	if err != nil {
		h.report(err)
		return nil
	}
	h.printOrder(order)
	return nil
}

func (h *ConsoleHandler) updateOrder(ctx context.Context) error {
	number, err := h.askOrderNumber("Order number to update: ")
	if err != nil {
		return err
	}

	res, err := h.svc.Orders.UpdateOrder(ctx, number, h.Collector())
	if err != nil {
		if isQuit(err) {
			h.info("Update cancelled. Original reservation restored.")
			return err
		}
		h.report(err)
		return nil
	}
	switch res.State {
	case service.StateCancelled:
		h.info("No items entered. Order unchanged.")
	case service.StateCommitted:
		h.info("Order updated successfully.")
		h.printOrder(res.Order)
	}
	return nil
}

func (h *ConsoleHandler) deleteOrder(ctx context.Context) error {
	number, err := h.askOrderNumber("Order number to delete: ")
	if err != nil {
		return err
	}
	ok, err := h.askYes("Confirm delete " + number + "? (Y/N): ")
	if err != nil || !ok {
		return err
	}
	if err := h.svc.Orders.DeleteOrder(ctx, number); err != nil {
		h.report(err)
		return nil
	}
	h.info("Order deleted successfully.")
	return nil
}

func (h *ConsoleHandler) printOrder(o domain.OrderRecord) {
	h.info("\nOrder %s  (%s)", o.Number, o.Date)
	t := h.table()
	t.RightAlign(1)
	t.RightAlign(2)
	t.AddRow("ITEM", "QTY", "SUBTOTAL")
	for _, l := range o.Lines {
		t.AddRow(l.ItemCode, l.Quantity, l.Subtotal.StringFixed(2))
	}
	t.AddRow("TOTAL", "", o.Total.StringFixed(2))
	h.printTable(t)
}

// Collector returns the console LineCollector used for order entry.
func (h *ConsoleHandler) Collector() port.LineCollector {
	return consoleCollector{h: h}
}

type consoleCollector struct {
	h *ConsoleHandler
}

// CollectLines prompts for item code and quantity pairs until the exit code
// is entered or the user declines to add another item.
func (c consoleCollector) CollectLines(ctx context.Context, current *domain.OrderRecord) ([]domain.OrderLine, error) {
	h := c.h
	if current != nil {
		h.info("Current lines of %s have been released back to stock. Enter the new lines.", current.Number)
		h.printOrder(*current)
	}

	var lines []domain.OrderLine
	for {
		code, err := h.askValid("Item code ("+ExitCode+" to finish): ", "Invalid item code format.", "", func(s string) bool {
			return strings.EqualFold(s, ExitCode) || validator.IsItemCode(s)
		})
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(code, ExitCode) {
			return lines, nil
		}

		item, err := h.svc.Items.FindItem(ctx, code)
		if err != nil {
			h.report(err)
			continue
		}
		h.info("%s  %s  RM%s  (in stock: %d)", item.Code, item.Description, item.Price.StringFixed(2), item.Quantity)

		qty, err := h.askInt("Quantity: ", 1, nil)
		if err != nil {
			return nil, err
		}
		l, err := h.svc.Orders.PriceLine(ctx, code, qty)
		if err != nil {
			h.report(err)
			continue
		}
		lines = append(lines, l)

		more, err := h.askYes("Add another item? (Y/N): ")
		if err != nil {
			return nil, err
		}
		if !more {
			return lines, nil
		}
	}
}
