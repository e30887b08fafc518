package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rl1809/pharmacy-records/internal/core/domain"
)

func newItemStore(t *testing.T, lines ...string) *FileStore[domain.ItemRecord] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Item.txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return NewFileStore[domain.ItemRecord](path, ItemCodec{})
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func medicine(code string, qty int) domain.ItemRecord {
	return domain.ItemRecord{
		Code:        code,
		Description: "Panadol",
		Price:       decimal.NewFromInt(3),
		Quantity:    qty,
		Details:     domain.Medicine{ForDisease: "Fever", DaysPerDose: 2},
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "absent.txt")
	s := NewFileStore[domain.ItemRecord](path, ItemCodec{})

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	_, found, err := s.FindByKey(ctx, "M0001")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := s.Add(ctx, medicine("M0001", 1))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Update(ctx, "M0001", medicine("M0001", 2))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, "M0001")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "store must not create its file")
}

func TestFileStore_AddAndFind(t *testing.T) {
	ctx := context.Background()
	s := newItemStore(t)

	ok, err := s.Add(ctx, medicine("M0001", 43))
	require.NoError(t, err)
	require.True(t, ok)

	got, found, err := s.FindByKey(ctx, "M0001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 43, got.Quantity)
	assert.Equal(t, "M0001||Panadol||3.0||43||Fever||2\n", readFile(t, s.Path()))
}

func TestFileStore_AddDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newItemStore(t, "M0001||Panadol||3.0||43||Fever||2")

	ok, err := s.Add(ctx, medicine("M0001", 1))
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileStore_FindByKeyFirstMatchWins(t *testing.T) {
	s := newItemStore(t,
		"M0001||First||3.0||1||Fever||2",
		"M0001||Second||3.0||2||Fever||2",
	)

	got, found, err := s.FindByKey(context.Background(), "M0001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "First", got.Description)
}

func TestFileStore_FindAllSkipsMalformed(t *testing.T) {
	s := newItemStore(t,
		"M0001||Panadol||3.0||43||Fever||2",
		"garbage",
		"M0002||Short||3.0",
		"S0001||Fish Oil||20.0||5||Heart||20271231",
	)

	all, err := s.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "M0001", all[0].Code)
	assert.Equal(t, "S0001", all[1].Code)
}

func TestFileStore_Update(t *testing.T) {
	ctx := context.Background()
	s := newItemStore(t,
		"M0001||Panadol||3.0||43||Fever||2",
		"garbage",
		"S0001||Fish Oil||20.0||5||Heart||20271231",
	)

	ok, err := s.Update(ctx, "M0001", medicine("M0009", 41))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t,
		"M0009||Panadol||3.0||41||Fever||2\ngarbage\nS0001||Fish Oil||20.0||5||Heart||20271231\n",
		readFile(t, s.Path()))

	_, err = os.Stat(s.Path() + tempFileSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_RewriteKeepsPermissions(t *testing.T) {
	ctx := context.Background()
	s := newItemStore(t, "M0001||Panadol||3.0||43||Fever||2", "M0002||Panadol||3.0||9||Fever||2")
	require.NoError(t, os.Chmod(s.Path(), 0o600))

	ok, err := s.Update(ctx, "M0001", medicine("M0001", 41))
	require.NoError(t, err)
	require.True(t, ok)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ok, err = s.Delete(ctx, "M0002")
	require.NoError(t, err)
	require.True(t, ok)

	info, err = os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_UpdateNoMatchLeavesFile(t *testing.T) {
	ctx := context.Background()
	s := newItemStore(t, "M0001||Panadol||3.00||43||Fever||2", "garbage")
	before := readFile(t, s.Path())

	ok, err := s.Update(ctx, "M0404", medicine("M0404", 1))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, readFile(t, s.Path()))

	_, err = os.Stat(s.Path() + tempFileSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_UpdateReplacesEveryMatch(t *testing.T) {
	s := newItemStore(t,
		"M0001||First||3.0||1||Fever||2",
		"M0001||Second||3.0||2||Fever||2",
	)

	ok, err := s.Update(context.Background(), "M0001", medicine("M0001", 7))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t,
		"M0001||Panadol||3.0||7||Fever||2\nM0001||Panadol||3.0||7||Fever||2\n",
		readFile(t, s.Path()))
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newItemStore(t,
		"M0001||Panadol||3.0||43||Fever||2",
		"garbage",
		"S0001||Fish Oil||20.0||5||Heart||20271231",
	)

	ok, err := s.Delete(ctx, "M0001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "garbage\nS0001||Fish Oil||20.0||5||Heart||20271231\n", readFile(t, s.Path()))

	ok, err = s.Delete(ctx, "M0001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newItemStore(t, "M0001||Panadol||3.0||43||Fever||2")

	_, err := s.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Update(ctx, "M0001", medicine("M0001", 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_CRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Item.txt")
	require.NoError(t, os.WriteFile(path, []byte("M0001||Panadol||3.0||43||Fever||2\r\n"), 0o644))
	s := NewFileStore[domain.ItemRecord](path, ItemCodec{})

	got, found, err := s.FindByKey(context.Background(), "M0001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, got.Details.(domain.Medicine).DaysPerDose)
}

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Order.txt")
	require.NoError(t, EnsureFile(path))
	require.NoError(t, os.WriteFile(path, []byte("keep\n"), 0o644))
	require.NoError(t, EnsureFile(path))
	assert.Equal(t, "keep\n", readFile(t, path))
}

func TestFileStore_RoundTripProperty(t *testing.T) {
	dir := t.TempDir()
	n := 0

	rapid.Check(t, func(rt *rapid.T) {
		n++
		path := filepath.Join(dir, fmt.Sprintf("items-%d.txt", n))
		if err := EnsureFile(path); err != nil {
			rt.Fatal(err)
		}
		s := NewFileStore[domain.ItemRecord](path, ItemCodec{})

		var details domain.ItemDetails
		prefix := rapid.SampledFrom([]string{"M", "S"}).Draw(rt, "prefix")
		extra1 := rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,15}`).Draw(rt, "extra1")
		extra2 := rapid.IntRange(0, 99999999).Draw(rt, "extra2")
		if prefix == "M" {
			details = domain.Medicine{ForDisease: extra1, DaysPerDose: extra2}
		} else {
			details = domain.Supplement{Function: extra1, ExpiryDate: extra2}
		}
		rec := domain.ItemRecord{
			Code:        prefix + rapid.StringMatching(`[0-9]{4}`).Draw(rt, "digits"),
			Description: rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,20}`).Draw(rt, "desc"),
			Price:       decimal.New(rapid.Int64Range(0, 1000000).Draw(rt, "cents"), -2),
			Quantity:    rapid.IntRange(-100, 10000).Draw(rt, "qty"),
			Details:     details,
		}

		ctx := context.Background()
		ok, err := s.Add(ctx, rec)
		if err != nil || !ok {
			rt.Fatalf("add: ok=%v err=%v", ok, err)
		}
		got, found, err := s.FindByKey(ctx, rec.Code)
		if err != nil || !found {
			rt.Fatalf("find: found=%v err=%v", found, err)
		}
		if got.Code != rec.Code || got.Description != rec.Description || got.Quantity != rec.Quantity ||
			!got.Price.Equal(rec.Price) || got.Details != rec.Details {
			rt.Fatalf("round trip mismatch: %+v != %+v", got, rec)
		}
	})
}
