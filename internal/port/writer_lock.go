package port

import (
	"context"
	"errors"
)

var (
	ErrLockHeld = errors.New("writer lock held by another process")
	// ErrLockLost is returned on release when the lock expired or was taken
	// over while it was held.
	ErrLockLost = errors.New("writer lock lost before release")
)

// ReleaseFunc gives back a lock obtained from WriterLock.Acquire.
type ReleaseFunc func(ctx context.Context) error

type WriterLock interface {
	// Acquire takes the single-writer lock, fails with ErrLockHeld if another writer owns it
	Acquire(ctx context.Context) (ReleaseFunc, error)
}
