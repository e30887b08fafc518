package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

const createJournalTable = `
CREATE TABLE IF NOT EXISTS reservation_journal (
	id           CHAR(36)    NOT NULL PRIMARY KEY,
	run_id       CHAR(36)    NOT NULL,
	order_number VARCHAR(32) NOT NULL,
	item_code    VARCHAR(16) NOT NULL,
	delta        INT         NOT NULL,
	reason       VARCHAR(16) NOT NULL,
	created_at   DATETIME(6) NOT NULL,
	INDEX idx_journal_order (order_number, created_at)
)`

// MySQLJournal keeps an audit trail of applied inventory adjustments. It is
// written after the item file, so it never participates in the file rewrite.
type MySQLJournal struct {
	db *sql.DB
}

func NewMySQLJournal(db *sql.DB) *MySQLJournal {
	return &MySQLJournal{db: db}
}

func (m *MySQLJournal) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createJournalTable); err != nil {
		return fmt.Errorf("create journal table: %w", err)
	}
	return nil
}

func (m *MySQLJournal) Append(ctx context.Context, e domain.JournalEntry) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO reservation_journal (id, run_id, order_number, item_code, delta, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.RunID.String(), e.OrderNumber, e.ItemCode, e.Delta, string(e.Reason), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (m *MySQLJournal) ListByOrder(ctx context.Context, orderNumber string) ([]domain.JournalEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, run_id, order_number, item_code, delta, reason, created_at
		FROM reservation_journal WHERE order_number = ?
		ORDER BY created_at`, orderNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			e         domain.JournalEntry
			id, runID string
			reason    string
		)
		if err := rows.Scan(&id, &runID, &e.OrderNumber, &e.ItemCode, &e.Delta, &reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse journal id: %w", err)
		}
		if e.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("parse journal run id: %w", err)
		}
		e.Reason = domain.JournalReason(reason)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// NoopJournal is the default ReservationJournal and records nothing.
type NoopJournal struct{}

func (NoopJournal) Append(context.Context, domain.JournalEntry) error { return nil }
