package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
)

type UpdateState int

const (
	StateLocated UpdateState = iota + 1
	StateReleasing
	StateCollecting
	StateCancelled
	StateCommitting
	StateCommitted
	StateRolledBack
)

var updateStateNames = map[UpdateState]string{
	StateLocated:    "located",
	StateReleasing:  "releasing",
	StateCollecting: "collecting",
	StateCancelled:  "cancelled",
	StateCommitting: "committing",
	StateCommitted:  "committed",
	StateRolledBack: "rolled_back",
}

func (s UpdateState) String() string {
	if name, ok := updateStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UpdateState(%d)", int(s))
}

// UpdateResult describes how an order update ended.
type UpdateResult struct {
	// State is the last state entered.
	State UpdateState
	// History lists every state entered, in order.
	History []UpdateState
	// Order is the saved order when committed, otherwise the original.
	Order domain.OrderRecord
}

// orderUpdate walks one update through
//
//	located → releasing → collecting → cancelled
//	                                 → committing → committed | rolled_back
//
// The original reservation is released before new lines are collected so the
// user sees true stock. New lines are reserved only after the order write has
// succeeded. Cancelled and rolled_back both re-reserve the original lines.
type orderUpdate struct {
	orders    port.RecordStore[domain.OrderRecord]
	ledger    *Ledger
	collector port.LineCollector
	log       logger.Logger
	runID     uuid.UUID

	state      UpdateState
	history    []UpdateState
	original   domain.OrderRecord
	newLines   []domain.OrderLine
	updated    domain.OrderRecord
	collectErr error
	commitErr  error
}

func (s *OrderService) newOrderUpdate(collector port.LineCollector) *orderUpdate {
	runID := uuid.New()
	return &orderUpdate{
		orders:    s.orders,
		ledger:    s.ledger,
		collector: collector,
		log:       s.log.With("run_id", runID),
		runID:     runID,
	}
}

func (u *orderUpdate) run(ctx context.Context, number string) (UpdateResult, error) {
	next := StateLocated
	for {
		u.enter(next)

		var err error
		switch next {
		case StateLocated:
			next, err = u.locate(ctx, number)
		case StateReleasing:
			next, err = u.release(ctx)
		case StateCollecting:
			next, err = u.collect(ctx)
		case StateCommitting:
			next, err = u.commit(ctx)
		case StateCancelled:
			return u.result(), u.cancel(ctx)
		case StateCommitted:
			return u.result(), u.reserveNew(ctx)
		case StateRolledBack:
			return u.result(), u.rollback(ctx)
		default:
			return u.result(), fmt.Errorf("unknown update state %s", next)
		}
		if err != nil {
			u.log.ErrorContext(ctx, "order update stopped", "state", u.state, "error", err)
			return u.result(), err
		}
	}
}

func (u *orderUpdate) enter(s UpdateState) {
	u.state = s
	u.history = append(u.history, s)
}

func (u *orderUpdate) result() UpdateResult {
	order := u.original
	if u.state == StateCommitted {
		order = u.updated
	}
	return UpdateResult{
		State:   u.state,
		History: append([]UpdateState(nil), u.history...),
		Order:   order,
	}
}

func (u *orderUpdate) adjustment(reason domain.JournalReason) Adjustment {
	return Adjustment{RunID: u.runID, OrderNumber: u.original.Number, Reason: reason}
}

func (u *orderUpdate) locate(ctx context.Context, number string) (UpdateState, error) {
	order, found, err := u.orders.FindByKey(ctx, number)
	if err != nil {
		return u.state, fmt.Errorf("find order %s: %w", number, err)
	}
	if !found {
		return u.state, ErrOrderNotFound
	}
	u.original = order
	return StateReleasing, nil
}

func (u *orderUpdate) release(ctx context.Context) (UpdateState, error) {
	adj := u.adjustment(domain.JournalReasonRelease)
	if err := u.ledger.applyLines(ctx, adj, u.original.Lines, +1); err != nil {
		return u.state, fmt.Errorf("release reservation for %s: %w", u.original.Number, err)
	}
	return StateCollecting, nil
}

func (u *orderUpdate) collect(ctx context.Context) (UpdateState, error) {
	current := u.original
	lines, err := u.collector.CollectLines(ctx, &current)
	if err != nil {
		u.collectErr = err
		return StateCancelled, nil
	}
	if len(lines) == 0 {
		return StateCancelled, nil
	}
	u.newLines = lines
	return StateCommitting, nil
}

// cancel puts the original reservation back. Nothing is written to the order
// file.
func (u *orderUpdate) cancel(ctx context.Context) error {
	if err := u.reReserveOriginal(ctx); err != nil {
		return err
	}
	if u.collectErr != nil {
		return fmt.Errorf("collect lines for %s: %w", u.original.Number, u.collectErr)
	}
	u.log.InfoContext(ctx, "order update cancelled", "order", u.original.Number)
	return nil
}

func (u *orderUpdate) commit(ctx context.Context) (UpdateState, error) {
	u.updated = domain.NewOrderRecord(u.original.Number, u.original.Date, u.newLines)

	ok, err := u.orders.Update(ctx, u.original.Number, u.updated)
	if err != nil {
		u.commitErr = err
		return StateRolledBack, nil
	}
	if !ok {
		return StateRolledBack, nil
	}
	return StateCommitted, nil
}

func (u *orderUpdate) reserveNew(ctx context.Context) error {
	adj := u.adjustment(domain.JournalReasonReserve)
	if err := u.ledger.applyLines(ctx, adj, u.newLines, -1); err != nil {
		return fmt.Errorf("reserve new lines for %s: %w", u.original.Number, err)
	}
	u.log.InfoContext(ctx, "order updated",
		"order", u.updated.Number,
		"lines", len(u.updated.Lines),
		"total", u.updated.Total.String(),
	)
	return nil
}

// rollback re-reserves the original lines after the order write failed and
// always reports ErrUpdateFailed.
func (u *orderUpdate) rollback(ctx context.Context) error {
	if err := u.reReserveOriginal(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	u.log.WarnContext(ctx, "order update rolled back", "order", u.original.Number, "error", u.commitErr)
	if u.commitErr != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, u.commitErr)
	}
	return ErrUpdateFailed
}

func (u *orderUpdate) reReserveOriginal(ctx context.Context) error {
	adj := u.adjustment(domain.JournalReasonReReserve)
	if err := u.ledger.applyLines(context.WithoutCancel(ctx), adj, u.original.Lines, -1); err != nil {
		return fmt.Errorf("re-reserve original lines for %s: %w", u.original.Number, err)
	}
	return nil
}
