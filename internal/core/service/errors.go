package service

import (
	"errors"

	"github.com/rl1809/pharmacy-records/internal/port"
)

var (
	ErrAlreadyExists   = errors.New("order number already exists")
	ErrNoItems         = errors.New("order has no items")
	ErrPersistFailed   = errors.New("record could not be saved")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUpdateFailed    = errors.New("order update failed")
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrItemCodeTaken   = errors.New("item code already in use")
	ErrInvalidItem     = errors.New("invalid item")

	ErrStaffNotFound      = errors.New("staff not found")
	ErrStaffIDTaken       = errors.New("staff id already in use")
	ErrInvalidStaff       = errors.New("invalid staff record")
	ErrInvalidCredentials = errors.New("invalid staff id or password")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientPayment = errors.New("pay amount cannot be less than final price")
	ErrInvalidTender       = errors.New("invalid payment details")

	ErrLockHeld = port.ErrLockHeld
)
