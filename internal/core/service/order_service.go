package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
)

type OrderService struct {
	orders port.RecordStore[domain.OrderRecord]
	items  port.RecordStore[domain.ItemRecord]
	ledger *Ledger
	lock   port.WriterLock
	log    logger.Logger
	now    func() time.Time
}

func NewOrderService(
	orders port.RecordStore[domain.OrderRecord],
	items port.RecordStore[domain.ItemRecord],
	ledger *Ledger,
	lock port.WriterLock,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		orders: orders,
		items:  items,
		ledger: ledger,
		lock:   lock,
		log:    log.With("component", "orders"),
		now:    time.Now,
	}
}

// PriceLine builds an order line for qty units of itemCode at the item's
// current price. The subtotal is frozen from here on.
func (s *OrderService) PriceLine(ctx context.Context, itemCode string, qty int) (domain.OrderLine, error) {
	if qty <= 0 {
		return domain.OrderLine{}, ErrInvalidQuantity
	}
	item, found, err := s.items.FindByKey(ctx, itemCode)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("find item %s: %w", itemCode, err)
	}
	if !found {
		return domain.OrderLine{}, ErrItemNotFound
	}
	return domain.NewOrderLine(item, qty), nil
}

// CreateOrder saves a new order and then reserves inventory for each line.
// The order is written first so a failed write touches no inventory. A
// reservation failure part way through is not rolled back: the order stays
// saved and the error is returned alongside it.
func (s *OrderService) CreateOrder(ctx context.Context, number string, lines []domain.OrderLine) (domain.OrderRecord, error) {
	var order domain.OrderRecord
	err := withLock(ctx, s.lock, s.log, func() error {
		_, exists, err := s.orders.FindByKey(ctx, number)
		if err != nil {
			return fmt.Errorf("find order %s: %w", number, err)
		}
		if exists {
			return ErrAlreadyExists
		}
		if len(lines) == 0 {
			return ErrNoItems
		}
		for _, l := range lines {
			if l.Quantity <= 0 {
				return fmt.Errorf("%w: %s x %d", ErrInvalidQuantity, l.ItemCode, l.Quantity)
			}
		}

		candidate := domain.NewOrderRecord(number, s.now().Format(domain.DateLayout), lines)
		ok, err := s.orders.Add(ctx, candidate)
		if err != nil {
			return fmt.Errorf("save order %s: %w", number, err)
		}
		if !ok {
			return ErrPersistFailed
		}
		order = candidate

		adj := Adjustment{RunID: uuid.New(), OrderNumber: number, Reason: domain.JournalReasonReserve}
		if err := s.ledger.applyLines(ctx, adj, lines, -1); err != nil {
			s.log.ErrorContext(ctx, "partial reservation after order saved",
				"run_id", adj.RunID,
				"order", number,
				"error", err,
			)
			return fmt.Errorf("reserve inventory for %s: %w", number, err)
		}

		s.log.InfoContext(ctx, "order created",
			"run_id", adj.RunID,
			"order", number,
			"lines", len(lines),
			"total", order.Total.String(),
		)
		return nil
	})
	return order, err
}

func (s *OrderService) FindOrder(ctx context.Context, number string) (domain.OrderRecord, error) {
	order, found, err := s.orders.FindByKey(ctx, number)
	if err != nil {
		return domain.OrderRecord{}, fmt.Errorf("find order %s: %w", number, err)
	}
	if !found {
		return domain.OrderRecord{}, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.OrderRecord, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// DeleteOrder removes the order record only; reserved inventory is not
// given back.
func (s *OrderService) DeleteOrder(ctx context.Context, number string) error {
	return withLock(ctx, s.lock, s.log, func() error {
		ok, err := s.orders.Delete(ctx, number)
		if err != nil {
			return fmt.Errorf("delete order %s: %w", number, err)
		}
		if !ok {
			return ErrOrderNotFound
		}
		s.log.InfoContext(ctx, "order deleted", "order", number)
		return nil
	})
}

func (s *OrderService) CountOrders(ctx context.Context) (int, error) {
	n, err := s.orders.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// UpdateOrder replaces the lines of an existing order, see orderUpdate for
// the sequence of inventory adjustments.
func (s *OrderService) UpdateOrder(ctx context.Context, number string, collector port.LineCollector) (UpdateResult, error) {
	var res UpdateResult
	err := withLock(ctx, s.lock, s.log, func() error {
		u := s.newOrderUpdate(collector)
		var err error
		res, err = u.run(ctx, number)
		return err
	})
	return res, err
}
