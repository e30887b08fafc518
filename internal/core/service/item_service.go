package service

import (
	"context"
	"fmt"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
	"github.com/rl1809/pharmacy-records/internal/validator"
)

type ItemService struct {
	items port.RecordStore[domain.ItemRecord]
	lock  port.WriterLock
	log   logger.Logger
}

func NewItemService(items port.RecordStore[domain.ItemRecord], lock port.WriterLock, log logger.Logger) *ItemService {
	return &ItemService{
		items: items,
		lock:  lock,
		log:   log.With("component", "items"),
	}
}

func validateItem(item domain.ItemRecord) error {
	if err := validator.Validate(&item); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, validator.FormatErrors(err))
	}
	if kind, _ := domain.KindForCode(item.Code); kind != item.Kind() {
		return fmt.Errorf("%w: code %s does not match kind %s", ErrInvalidItem, item.Code, item.Kind())
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("%w: negative price", ErrInvalidItem)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity", ErrInvalidItem)
	}
	return nil
}

func (s *ItemService) AddItem(ctx context.Context, item domain.ItemRecord) error {
	if err := validateItem(item); err != nil {
		return err
	}

	_, taken, err := s.items.FindByKey(ctx, item.Code)
	if err != nil {
		return fmt.Errorf("find item %s: %w", item.Code, err)
	}
	if taken {
		return ErrItemCodeTaken
	}

	ok, err := s.items.Add(ctx, item)
	if err != nil {
		return fmt.Errorf("save item %s: %w", item.Code, err)
	}
	if !ok {
		return ErrPersistFailed
	}
	s.log.InfoContext(ctx, "item added", "item", item.Code, "kind", item.Kind())
	return nil
}

func (s *ItemService) FindItem(ctx context.Context, code string) (domain.ItemRecord, error) {
	item, found, err := s.items.FindByKey(ctx, code)
	if err != nil {
		return domain.ItemRecord{}, fmt.Errorf("find item %s: %w", code, err)
	}
	if !found {
		return domain.ItemRecord{}, ErrItemNotFound
	}
	return item, nil
}

func (s *ItemService) ListItems(ctx context.Context) ([]domain.ItemRecord, error) {
	items, err := s.items.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// UpdateItem replaces the item stored under oldCode. The code may change as
// long as the new one is not used by another item.
func (s *ItemService) UpdateItem(ctx context.Context, oldCode string, item domain.ItemRecord) error {
	if err := validateItem(item); err != nil {
		return err
	}

	return withLock(ctx, s.lock, s.log, func() error {
		if item.Code != oldCode {
			_, taken, err := s.items.FindByKey(ctx, item.Code)
			if err != nil {
				return fmt.Errorf("find item %s: %w", item.Code, err)
			}
			if taken {
				return ErrItemCodeTaken
			}
		}

		ok, err := s.items.Update(ctx, oldCode, item)
		if err != nil {
			return fmt.Errorf("update item %s: %w", oldCode, err)
		}
		if !ok {
			return ErrItemNotFound
		}
		s.log.InfoContext(ctx, "item updated", "item", oldCode, "new_code", item.Code)
		return nil
	})
}

func (s *ItemService) DeleteItem(ctx context.Context, code string) error {
	return withLock(ctx, s.lock, s.log, func() error {
		ok, err := s.items.Delete(ctx, code)
		if err != nil {
			return fmt.Errorf("delete item %s: %w", code, err)
		}
		if !ok {
			return ErrItemNotFound
		}
		s.log.InfoContext(ctx, "item deleted", "item", code)
		return nil
	})
}

// CountItems replaces the old process-wide "items created" counter.
func (s *ItemService) CountItems(ctx context.Context) (int, error) {
	n, err := s.items.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}
