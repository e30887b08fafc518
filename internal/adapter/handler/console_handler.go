package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/core/service"
	"github.com/rl1809/pharmacy-records/internal/logger"
)

// ExitCode ends item entry in the order line prompt.
const ExitCode = "X"

const maxColWidth = 40

var ErrTooManyAttempts = errors.New("maximum login attempts reached")

type Services struct {
	Staff    *service.StaffService
	Items    *service.ItemService
	Orders   *service.OrderService
	Payments *service.PaymentService
}

// ConsoleHandler drives the menu console. Every operation ends in a single
// status line on out; unexpected errors are also logged.
type ConsoleHandler struct {
	in               Prompter
	out              io.Writer
	svc              Services
	maxLoginAttempts int
	log              logger.Logger
}

func NewConsoleHandler(in Prompter, out io.Writer, svc Services, maxLoginAttempts int, log logger.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		in:               in,
		out:              out,
		svc:              svc,
		maxLoginAttempts: maxLoginAttempts,
		log:              log.With("component", "console"),
	}
}

// Run logs a staff member in and serves the main menu until Exit, end of
// input, or Ctrl-C.
func (h *ConsoleHandler) Run(ctx context.Context) error {
	staff, err := h.login(ctx)
	if err != nil {
		return quitErr(err)
	}
	h.info("Welcome, %s %s.", staff.Name.First, staff.Name.Last)

	for {
		choice, err := h.menu("Main Menu", "Staff", "Item", "Order", "Transaction", "Exit")
		if err != nil {
			return quitErr(err)
		}

		switch choice {
		case 1:
			err = h.staffMenu(ctx)
		case 2:
			err = h.itemMenu(ctx)
		case 3:
			err = h.orderMenu(ctx)
		case 4:
			err = h.transactionMenu(ctx)
		case 5:
			h.info("Goodbye.")
			return nil
		default:
			h.info("Invalid input.")
		}
		if err != nil {
			return quitErr(err)
		}
	}
}

func quitErr(err error) error {
	if isQuit(err) {
		return nil
	}
	return err
}

func (h *ConsoleHandler) login(ctx context.Context) (domain.StaffRecord, error) {
	for attempt := 1; attempt <= h.maxLoginAttempts; attempt++ {
		id, err := h.ask("Staff ID: ")
		if err != nil {
			return domain.StaffRecord{}, err
		}
		password, err := h.in.PasswordPrompt("Password: ")
		if err != nil {
			return domain.StaffRecord{}, err
		}

		rec, err := h.svc.Staff.Authenticate(ctx, id, password)
		if err == nil {
			h.info("Login successful.")
			return rec, nil
		}
		h.report(err)
	}
	h.info("Maximum login attempts reached.")
	return domain.StaffRecord{}, ErrTooManyAttempts
}

// menu prints numbered options and returns the chosen number, or 0 for
// anything that is not one of them.
func (h *ConsoleHandler) menu(title string, options ...string) (int, error) {
	fmt.Fprintf(h.out, "\n== %s ==\n", title)
	for i, opt := range options {
		fmt.Fprintf(h.out, "%d. %s\n", i+1, opt)
	}
	s, err := h.ask("Select: ")
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(s)
	if convErr != nil || n < 1 || n > len(options) {
		return 0, nil
	}
	return n, nil
}

func (h *ConsoleHandler) info(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

func (h *ConsoleHandler) table() *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = maxColWidth
	t.Wrap = true
	return t
}

func (h *ConsoleHandler) printTable(t *uitable.Table) {
	fmt.Fprintln(h.out, t)
}

func (h *ConsoleHandler) ask(prompt string) (string, error) {
	s, err := h.in.Prompt(prompt)
	return strings.TrimSpace(s), err
}

// askValid repeats prompt until valid accepts the answer. With keep set, a
// blank answer returns keep unchanged.
func (h *ConsoleHandler) askValid(prompt, invalidMsg string, keep string, valid func(string) bool) (string, error) {
	for {
		s, err := h.ask(prompt)
		if err != nil {
			return "", err
		}
		if s == "" && keep != "" {
			return keep, nil
		}
		if valid(s) {
			return s, nil
		}
		h.info(invalidMsg)
	}
}

func (h *ConsoleHandler) askRequired(prompt, keep string) (string, error) {
	return h.askValid(prompt, "This field cannot be empty.", keep, func(s string) bool {
		return s != "" && !strings.Contains(s, "||")
	})
}

func (h *ConsoleHandler) askInt(prompt string, min int, keep *int) (int, error) {
	for {
		s, err := h.ask(prompt)
		if err != nil {
			return 0, err
		}
		if s == "" && keep != nil {
			return *keep, nil
		}
		n, convErr := strconv.Atoi(s)
		if convErr == nil && n >= min {
			return n, nil
		}
		h.info("Please enter a whole number of at least %d.", min)
	}
}

func (h *ConsoleHandler) askDecimal(prompt string, keep *decimal.Decimal) (decimal.Decimal, error) {
	for {
		s, err := h.ask(prompt)
		if err != nil {
			return decimal.Zero, err
		}
		if s == "" && keep != nil {
			return *keep, nil
		}
		d, convErr := decimal.NewFromString(s)
		if convErr == nil && !d.IsNegative() {
			return d, nil
		}
		h.info("Please enter a non-negative amount.")
	}
}

func (h *ConsoleHandler) askYes(prompt string) (bool, error) {
	s, err := h.ask(prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(s, "Y"), nil
}

var statusMessages = []struct {
	err error
	msg string
}{
	{service.ErrAlreadyExists, "Order number already exists."},
	{service.ErrNoItems, "No items entered. Order not created."},
	{service.ErrPersistFailed, "Failed to save record (file missing?)."},
	{service.ErrOrderNotFound, "Order not found."},
	{service.ErrUpdateFailed, "Failed to update order. Original reservation restored."},
	{service.ErrItemNotFound, "Item not found."},
	{service.ErrInvalidQuantity, "Quantity must be greater than zero."},
	{service.ErrItemCodeTaken, "Item code already exists."},
	{service.ErrStaffNotFound, "Staff not found."},
	{service.ErrStaffIDTaken, "Staff ID already exists."},
	{service.ErrInvalidCredentials, "Invalid staff ID or password."},
	{service.ErrTransactionNotFound, "Transaction not found."},
	{service.ErrInsufficientPayment, "Pay amount cannot be less than final price."},
	{service.ErrLockHeld, "Another session is saving records. Please try again."},
}

// report prints the status line for err. Validation errors print their own
// text; anything unrecognised is logged as well.
func (h *ConsoleHandler) report(err error) {
	for _, s := range statusMessages {
		if errors.Is(err, s.err) {
			h.info(s.msg)
			return
		}
	}
	if errors.Is(err, service.ErrInvalidItem) || errors.Is(err, service.ErrInvalidStaff) || errors.Is(err, service.ErrInvalidTender) {
		h.info("Invalid input: %v", err)
		return
	}
	h.log.Error("operation failed", "error", err)
	h.info("Operation failed: %v", err)
}
