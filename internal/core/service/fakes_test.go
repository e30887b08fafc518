package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/port"
)

var errDiskFull = errors.New("disk full")

// Mock RecordStore
type memStore[R any] struct {
	mu      sync.Mutex
	key     func(R) string
	records []R

	missing      bool  // behave like a missing backing file
	rejectUpdate bool  // Update finds no match
	updateErr    error // returned by Update
	findErr      error // returned by FindByKey
	updateCalls  int
}

func newMemStore[R any](key func(R) string, records ...R) *memStore[R] {
	return &memStore[R]{key: key, records: append([]R(nil), records...)}
}

func newItemMem(items ...domain.ItemRecord) *memStore[domain.ItemRecord] {
	return newMemStore(func(r domain.ItemRecord) string { return r.Code }, items...)
}

func newOrderMem(orders ...domain.OrderRecord) *memStore[domain.OrderRecord] {
	return newMemStore(func(r domain.OrderRecord) string { return r.Number }, orders...)
}

func (m *memStore[R]) FindAll(ctx context.Context) ([]R, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]R{}, m.records...), nil
}

func (m *memStore[R]) FindByKey(ctx context.Context, key string) (R, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero R
	if m.findErr != nil {
		return zero, false, m.findErr
	}
	for _, r := range m.records {
		if m.key(r) == key {
			return r, true, nil
		}
	}
	return zero, false, nil
}

func (m *memStore[R]) Add(ctx context.Context, r R) (bool, error) {
	if m.missing {
		return false, nil
	}
	if _, found, _ := m.FindByKey(ctx, m.key(r)); found {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return true, nil
}

func (m *memStore[R]) Update(ctx context.Context, oldKey string, r R) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return false, m.updateErr
	}
	if m.missing || m.rejectUpdate {
		return false, nil
	}
	found := false
	for i := range m.records {
		if m.key(m.records[i]) == oldKey {
			m.records[i] = r
			found = true
		}
	}
	return found, nil
}

func (m *memStore[R]) Delete(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	found := false
	for _, r := range m.records {
		if m.key(r) == key {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return found, nil
}

func (m *memStore[R]) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *memStore[R]) get(key string) (R, bool) {
	r, ok, _ := m.FindByKey(context.Background(), key)
	return r, ok
}

// Mock LineCollector
type fakeCollector struct {
	lines   []domain.OrderLine
	err     error
	calls   int
	current *domain.OrderRecord
}

func (c *fakeCollector) CollectLines(ctx context.Context, current *domain.OrderRecord) ([]domain.OrderLine, error) {
	c.calls++
	c.current = current
	return c.lines, c.err
}

// Mock ReservationJournal
type memJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
	err     error
}

func (j *memJournal) Append(ctx context.Context, e domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, e)
	return nil
}

// Mock WriterLock
type fakeLock struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLock) Acquire(ctx context.Context) (port.ReleaseFunc, error) {
	if l.held {
		return nil, port.ErrLockHeld
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

// Mock PasswordHasher
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "salt:" + plain, nil }
func (plainHasher) Verify(plain, stored string) bool {
	if h, ok := strings.CutPrefix(stored, "salt:"); ok {
		return h == plain
	}
	return stored == plain
}
func (plainHasher) IsHashed(stored string) bool { return strings.HasPrefix(stored, "salt:") }

func medicine(code string, price int64, qty int) domain.ItemRecord {
	return domain.ItemRecord{
		Code:        code,
		Description: "Item " + code,
		Price:       decimal.NewFromInt(price),
		Quantity:    qty,
		Details:     domain.Medicine{ForDisease: "Fever", DaysPerDose: 2},
	}
}

func line(item domain.ItemRecord, qty int) domain.OrderLine {
	return domain.NewOrderLine(item, qty)
}

func quantities(s *memStore[domain.ItemRecord]) map[string]int {
	out := map[string]int{}
	all, _ := s.FindAll(context.Background())
	for _, it := range all {
		out[it.Code] = it.Quantity
	}
	return out
}
