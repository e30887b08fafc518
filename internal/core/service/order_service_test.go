package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
)

type orderFixture struct {
	items   *memStore[domain.ItemRecord]
	orders  *memStore[domain.OrderRecord]
	journal *memJournal
	lock    *fakeLock
	ledger  *Ledger
	svc     *OrderService
}

func newOrderFixture(items ...domain.ItemRecord) *orderFixture {
	f := &orderFixture{
		items:   newItemMem(items...),
		orders:  newOrderMem(),
		journal: &memJournal{},
		lock:    &fakeLock{},
	}
	f.ledger = NewLedger(f.items, f.journal, logger.Discard())
	f.svc = NewOrderService(f.orders, f.items, f.ledger, f.lock, logger.Discard())
	f.svc.now = func() time.Time { return time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC) }
	return f
}

func TestCreateOrder_Success(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)

	order, err := f.svc.CreateOrder(context.Background(), "O2468", []domain.OrderLine{line(m1, 2)})
	require.NoError(t, err)

	assert.Equal(t, "O2468", order.Number)
	assert.Equal(t, "2026-10-19 14:30:00", order.Date)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(6)))

	saved, ok := f.orders.get("O2468")
	require.True(t, ok)
	assert.True(t, saved.Total.Equal(domain.SumSubtotals(saved.Lines)))

	item, _ := f.items.get("M0001")
	assert.Equal(t, 41, item.Quantity)

	require.Len(t, f.journal.entries, 1)
	assert.Equal(t, domain.JournalReasonReserve, f.journal.entries[0].Reason)
	assert.Equal(t, 1, f.lock.acquired)
	assert.Equal(t, 1, f.lock.released)
}

func TestCreateOrder_AlreadyExists(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)
	existing := domain.NewOrderRecord("O1", "2026-01-01 00:00:00", []domain.OrderLine{line(m1, 1)})
	f.orders.records = append(f.orders.records, existing)

	_, err := f.svc.CreateOrder(context.Background(), "O1", []domain.OrderLine{line(m1, 5)})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, map[string]int{"M0001": 43}, quantities(f.items))
	assert.Zero(t, f.items.updateCalls)
}

func TestCreateOrder_DuplicateCheckedBeforeEmptyLines(t *testing.T) {
	f := newOrderFixture()
	f.orders.records = append(f.orders.records, domain.OrderRecord{Number: "O1"})

	_, err := f.svc.CreateOrder(context.Background(), "O1", nil)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateOrder_NoItems(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.CreateOrder(context.Background(), "O1", nil)
	assert.ErrorIs(t, err, ErrNoItems)

	n, _ := f.orders.Count(context.Background())
	assert.Zero(t, n)
}

func TestCreateOrder_NonPositiveQuantity(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	m2 := medicine("M0002", 5, 10)

	for _, qty := range []int{0, -4} {
		f := newOrderFixture(m1, m2)
		lines := []domain.OrderLine{line(m1, 2), {ItemCode: "M0002", Quantity: qty}}

		_, err := f.svc.CreateOrder(context.Background(), "O1", lines)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "qty %d", qty)

		_, saved := f.orders.get("O1")
		assert.False(t, saved)
		assert.Equal(t, map[string]int{"M0001": 43, "M0002": 10}, quantities(f.items))
		assert.Zero(t, f.items.updateCalls)
	}
}

func TestCreateOrder_PersistFailedTouchesNoInventory(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)
	f.orders.missing = true

	_, err := f.svc.CreateOrder(context.Background(), "O1", []domain.OrderLine{line(m1, 2)})
	assert.ErrorIs(t, err, ErrPersistFailed)
	assert.Equal(t, map[string]int{"M0001": 43}, quantities(f.items))
}

func TestCreateOrder_UnknownItemSkipped(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	ghost := medicine("M0999", 10, 0)
	f := newOrderFixture(m1)

	order, err := f.svc.CreateOrder(context.Background(), "O1", []domain.OrderLine{line(ghost, 1), line(m1, 3)})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(19)))
	assert.Equal(t, map[string]int{"M0001": 40}, quantities(f.items))
}

func TestCreateOrder_PartialReservationKeepsOrder(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)
	f.items.updateErr = errDiskFull

	order, err := f.svc.CreateOrder(context.Background(), "O1", []domain.OrderLine{line(m1, 2)})
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, "O1", order.Number)

	_, saved := f.orders.get("O1")
	assert.True(t, saved, "order stays committed after a failed reservation")
}

func TestCreateOrder_LockHeld(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)
	f.lock.held = true

	_, err := f.svc.CreateOrder(context.Background(), "O1", []domain.OrderLine{line(m1, 2)})
	assert.ErrorIs(t, err, port.ErrLockHeld)
	assert.ErrorIs(t, err, ErrLockHeld)

	n, _ := f.orders.Count(context.Background())
	assert.Zero(t, n)
}

func TestPriceLine(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)
	ctx := context.Background()

	l, err := f.svc.PriceLine(ctx, "M0001", 4)
	require.NoError(t, err)
	assert.Equal(t, "M0001", l.ItemCode)
	assert.Equal(t, 4, l.Quantity)
	assert.True(t, l.Subtotal.Equal(decimal.NewFromInt(12)))

	_, err = f.svc.PriceLine(ctx, "M0001", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.PriceLine(ctx, "M0404", 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestPriceLine_SubtotalFrozen(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)
	ctx := context.Background()

	l, err := f.svc.PriceLine(ctx, "M0001", 2)
	require.NoError(t, err)

	repriced := m1
	repriced.Price = decimal.NewFromInt(100)
	_, _ = f.items.Update(ctx, "M0001", repriced)

	order, err := f.svc.CreateOrder(ctx, "O1", []domain.OrderLine{l})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(6)))
}

func TestFindListCountDeleteOrder(t *testing.T) {
	m1 := medicine("M0001", 3, 43)
	f := newOrderFixture(m1)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, "O1", []domain.OrderLine{line(m1, 1)})
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, "O2", []domain.OrderLine{line(m1, 2)})
	require.NoError(t, err)

	got, err := f.svc.FindOrder(ctx, "O2")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Lines[0].Quantity)

	_, err = f.svc.FindOrder(ctx, "O9")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	all, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, f.svc.DeleteOrder(ctx, "O1"))
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, "O1"), ErrOrderNotFound)

	n, err := f.svc.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// deleting does not give stock back
	assert.Equal(t, map[string]int{"M0001": 40}, quantities(f.items))
}

func TestFindOrder_IOError(t *testing.T) {
	f := newOrderFixture()
	f.orders.findErr = errDiskFull

	_, err := f.svc.FindOrder(context.Background(), "O1")
	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, errors.Is(err, ErrOrderNotFound))
}
