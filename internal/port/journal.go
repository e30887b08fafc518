package port

import (
	"context"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

type ReservationJournal interface {
	// Append records an inventory adjustment that has already been applied
	Append(ctx context.Context, entry domain.JournalEntry) error
}
