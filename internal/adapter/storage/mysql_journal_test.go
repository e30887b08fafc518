package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/pharmacy?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestMySQLJournal_AppendAndList(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	journal := NewMySQLJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	orderNumber := "O" + time.Now().Format("150405")
	db.ExecContext(ctx, `DELETE FROM reservation_journal WHERE order_number = ?`, orderNumber)

	runID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	entries := []domain.JournalEntry{
		{ID: uuid.New(), RunID: runID, OrderNumber: orderNumber, ItemCode: "M0001", Delta: -2, Reason: domain.JournalReasonReserve, CreatedAt: now},
		{ID: uuid.New(), RunID: runID, OrderNumber: orderNumber, ItemCode: "M0001", Delta: 2, Reason: domain.JournalReasonRelease, CreatedAt: now.Add(time.Millisecond)},
	}
	for _, e := range entries {
		if err := journal.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := journal.ListByOrder(ctx, orderNumber)
	if err != nil {
		t.Fatalf("ListByOrder failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != entries[0].ID || got[0].Delta != -2 || got[0].Reason != domain.JournalReasonReserve {
		t.Errorf("unexpected first entry: %+v", got[0])
	}
	if got[1].RunID != runID || got[1].Delta != 2 {
		t.Errorf("unexpected second entry: %+v", got[1])
	}

	// Cleanup
	db.ExecContext(ctx, `DELETE FROM reservation_journal WHERE order_number = ?`, orderNumber)
}

func TestMySQLJournal_ListByOrder_Empty(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	journal := NewMySQLJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	got, err := journal.ListByOrder(ctx, "O-nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}
