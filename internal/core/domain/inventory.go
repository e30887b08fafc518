package domain

import (
	"time"

	"github.com/google/uuid"
)

type JournalReason string

const (
	JournalReasonReserve   JournalReason = "reserve"
	JournalReasonRelease   JournalReason = "release"
	JournalReasonReReserve JournalReason = "re-reserve"
)

// JournalEntry records one applied inventory adjustment.
type JournalEntry struct {
	ID          uuid.UUID
	RunID       uuid.UUID // groups the adjustments of one order operation
	OrderNumber string
	ItemCode    string
	Delta       int
	Reason      JournalReason
	CreatedAt   time.Time
}
