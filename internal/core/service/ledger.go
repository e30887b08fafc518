package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
)

// Adjustment ties a quantity change to the order operation that caused it.
type Adjustment struct {
	RunID       uuid.UUID
	OrderNumber string
	Reason      domain.JournalReason
}

// Ledger mutates item quantities through the item store. Every call is an
// independent find-then-update round trip; nothing is batched, and a crash
// between two calls leaves the earlier ones applied.
type Ledger struct {
	items    port.RecordStore[domain.ItemRecord]
	journal  port.ReservationJournal
	log      logger.Logger
	negative atomic.Int64
	now      func() time.Time
}

func NewLedger(items port.RecordStore[domain.ItemRecord], journal port.ReservationJournal, log logger.Logger) *Ledger {
	return &Ledger{
		items:   items,
		journal: journal,
		log:     log.With("component", "ledger"),
		now:     time.Now,
	}
}

// Adjust adds delta to the quantity of itemCode. It returns false if the item
// does not exist. The quantity is not floored at zero.
func (l *Ledger) Adjust(ctx context.Context, itemCode string, delta int) (bool, error) {
	return l.apply(ctx, itemCode, delta, nil)
}

// AdjustFor is Adjust with the adjustment recorded in the reservation journal.
func (l *Ledger) AdjustFor(ctx context.Context, adj Adjustment, itemCode string, delta int) (bool, error) {
	return l.apply(ctx, itemCode, delta, &adj)
}

// NegativeEvents counts adjustments that left an item below zero.
func (l *Ledger) NegativeEvents() int64 {
	return l.negative.Load()
}

func (l *Ledger) apply(ctx context.Context, itemCode string, delta int, adj *Adjustment) (bool, error) {
	item, found, err := l.items.FindByKey(ctx, itemCode)
	if err != nil {
		return false, fmt.Errorf("find item %s: %w", itemCode, err)
	}
	if !found {
		return false, nil
	}

	updated := item.WithQuantity(item.Quantity + delta)
	ok, err := l.items.Update(ctx, itemCode, updated)
	if err != nil {
		return false, fmt.Errorf("update item %s: %w", itemCode, err)
	}
	if !ok {
		return false, nil
	}

	if updated.Quantity < 0 {
		l.negative.Add(1)
		l.log.WarnContext(ctx, "inventory below zero",
			"item", itemCode,
			"quantity", updated.Quantity,
			"delta", delta,
		)
	}

	if adj != nil {
		l.record(ctx, *adj, itemCode, delta)
	}
	return true, nil
}

func (l *Ledger) record(ctx context.Context, adj Adjustment, itemCode string, delta int) {
	entry := domain.JournalEntry{
		ID:          uuid.New(),
		RunID:       adj.RunID,
		OrderNumber: adj.OrderNumber,
		ItemCode:    itemCode,
		Delta:       delta,
		Reason:      adj.Reason,
		CreatedAt:   l.now().UTC(),
	}
	if err := l.journal.Append(ctx, entry); err != nil {
		l.log.ErrorContext(ctx, "journal append failed",
			"run_id", adj.RunID,
			"order", adj.OrderNumber,
			"item", itemCode,
			"error", err,
		)
	}
}

// applyLines adjusts every line by sign × quantity. Lines whose item no
// longer exists are skipped. The first I/O error stops the walk and is
// returned without undoing the lines already applied.
func (l *Ledger) applyLines(ctx context.Context, adj Adjustment, lines []domain.OrderLine, sign int) error {
	for _, line := range lines {
		ok, err := l.AdjustFor(ctx, adj, line.ItemCode, sign*line.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			l.log.DebugContext(ctx, "skipped adjustment for missing item",
				"order", adj.OrderNumber,
				"item", line.ItemCode,
			)
		}
	}
	return nil
}
