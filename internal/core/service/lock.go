package service

import (
	"context"
	"fmt"

	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
)

// withLock runs fn while holding the writer lock. The lock is released with a
// context that outlives ctx so a cancelled operation still gives it back.
func withLock(ctx context.Context, lock port.WriterLock, log logger.Logger, fn func() error) error {
	release, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire writer lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.WarnContext(ctx, "release writer lock failed", "error", err)
		}
	}()

	return fn()
}
