package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/pharmacy-records/internal/adapter/storage"
	"github.com/rl1809/pharmacy-records/internal/config"
	"github.com/rl1809/pharmacy-records/internal/core/domain"
	"github.com/rl1809/pharmacy-records/internal/core/service"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
)

const (
	initialStock  = 50
	totalRequests = 20
	lockName      = "pharmacy-records-check"
)

type lines []domain.OrderLine

func (l lines) CollectLines(context.Context, *domain.OrderRecord) ([]domain.OrderLine, error) {
	return l, nil
}

// rejectingOrders refuses every order rewrite, forcing the update into rollback.
type rejectingOrders struct {
	port.RecordStore[domain.OrderRecord]
}

func (rejectingOrders) Update(context.Context, string, domain.OrderRecord) (bool, error) {
	return false, nil
}

type checker struct {
	ctx    context.Context
	failed bool
}

func (c *checker) expect(name string, ok bool, format string, args ...any) {
	if ok {
		fmt.Printf("PASS: %s\n", name)
		return
	}
	c.failed = true
	fmt.Printf("FAIL: %s: %s\n", name, fmt.Sprintf(format, args...))
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	dir, err := os.MkdirTemp("", "pharmacy-check-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create scratch dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	itemPath := filepath.Join(dir, cfg.ItemFile)
	orderPath := filepath.Join(dir, cfg.OrderFile)
	for _, p := range []string{itemPath, orderPath} {
		if err := storage.EnsureFile(p); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	items := storage.NewFileStore(itemPath, storage.ItemCodec{})
	orders := storage.NewFileStore(orderPath, storage.OrderCodec{})

	seed := []domain.ItemRecord{
		{Code: "M0001", Description: "Panadol", Price: decimal.NewFromInt(3), Quantity: initialStock,
			Details: domain.Medicine{ForDisease: "Fever", DaysPerDose: 2}},
		{Code: "S0001", Description: "Vitamin C", Price: decimal.NewFromInt(12), Quantity: initialStock,
			Details: domain.Supplement{Function: "Immunity", ExpiryDate: 2027}},
	}
	for _, it := range seed {
		if _, err := items.Add(ctx, it); err != nil {
			fmt.Fprintf(os.Stderr, "seed %s: %v\n", it.Code, err)
			os.Exit(1)
		}
	}

	var lock port.WriterLock = storage.NoopLock{}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect redis: %v\n", err)
			os.Exit(1)
		}
		defer rdb.Close()
		lock = storage.NewRedisLock(rdb, lockName, cfg.LockTTL)
	}

	var journal port.ReservationJournal = storage.NoopJournal{}
	var mysqlJournal *storage.MySQLJournal
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open mysql: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		mysqlJournal = storage.NewMySQLJournal(db)
		if err := mysqlJournal.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create journal table: %v\n", err)
			os.Exit(1)
		}
		journal = mysqlJournal
	}

	ledger := service.NewLedger(items, journal, log)
	svc := service.NewOrderService(orders, items, ledger, lock, log)
	c := &checker{ctx: ctx}

	// Order numbers are unique per run so a shared journal table stays readable.
	prefix := fmt.Sprintf("O%d", time.Now().UnixNano()%1_000_000)

	// 1. Create reserves stock.
	created := prefix + "1"
	m1, _ := svc.PriceLine(ctx, "M0001", 5)
	s1, _ := svc.PriceLine(ctx, "S0001", 2)
	_, err = svc.CreateOrder(ctx, created, []domain.OrderLine{m1, s1})
	c.expect("create", err == nil, "%v", err)
	c.stock(items, "create reserves", initialStock-5, initialStock-2)

	// 2. A duplicate number is rejected and leaves stock alone.
	_, err = svc.CreateOrder(ctx, created, []domain.OrderLine{m1})
	c.expect("duplicate rejected", errors.Is(err, service.ErrAlreadyExists), "got %v", err)
	c.stock(items, "duplicate leaves stock", initialStock-5, initialStock-2)

	// 3. Cancelled update restores the original reservation.
	res, err := svc.UpdateOrder(ctx, created, lines(nil))
	c.expect("update cancel", err == nil && res.State == service.StateCancelled, "state %s err %v", res.State, err)
	c.stock(items, "cancel keeps reservation", initialStock-5, initialStock-2)

	// 4. Committed update swaps the reservation.
	m2, _ := svc.PriceLine(ctx, "M0001", 1)
	res, err = svc.UpdateOrder(ctx, created, lines{m2})
	c.expect("update commit", err == nil && res.State == service.StateCommitted, "state %s err %v", res.State, err)
	c.stock(items, "commit swaps reservation", initialStock-1, initialStock)

	// 5. A failed write rolls back to the committed reservation.
	rollbackSvc := service.NewOrderService(rejectingOrders{orders}, items, ledger, lock, log)
	s2, _ := svc.PriceLine(ctx, "S0001", 7)
	res, err = rollbackSvc.UpdateOrder(ctx, created, lines{s2})
	c.expect("update rollback", errors.Is(err, service.ErrUpdateFailed) && res.State == service.StateRolledBack,
		"state %s err %v", res.State, err)
	c.stock(items, "rollback restores reservation", initialStock-1, initialStock)

	// 6. Concurrent creates under the writer lock.
	if rdb != nil {
		c.concurrent(svc, items, prefix)
	}

	if mysqlJournal != nil {
		entries, err := mysqlJournal.ListByOrder(ctx, created)
		c.expect("journal", err == nil && len(entries) > 0, "%d entries, err %v", len(entries), err)
	}

	fmt.Println("==========================================")
	if c.failed {
		fmt.Println("FAIL")
		os.Exit(1)
	}
	fmt.Println("PASS")
}

func (c *checker) stock(items port.RecordStore[domain.ItemRecord], name string, medicine, supplement int) {
	m, _, err1 := items.FindByKey(c.ctx, "M0001")
	s, _, err2 := items.FindByKey(c.ctx, "S0001")
	if err := errors.Join(err1, err2); err != nil {
		c.expect(name, false, "%v", err)
		return
	}
	c.expect(name, m.Quantity == medicine && s.Quantity == supplement,
		"want M0001=%d S0001=%d, got %d/%d", medicine, supplement, m.Quantity, s.Quantity)
}

func (c *checker) concurrent(svc *service.OrderService, items port.RecordStore[domain.ItemRecord], prefix string) {
	before, _, err := items.FindByKey(c.ctx, "M0001")
	if err != nil {
		c.expect("concurrent", false, "%v", err)
		return
	}

	var success, held atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			line, err := svc.PriceLine(c.ctx, "M0001", 1)
			if err != nil {
				return
			}
			_, err = svc.CreateOrder(c.ctx, fmt.Sprintf("%s%d", prefix, 100+n), []domain.OrderLine{line})
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, service.ErrLockHeld):
				held.Add(1)
			}
		}(i)
	}
	wg.Wait()

	after, _, _ := items.FindByKey(c.ctx, "M0001")
	fmt.Printf("Requests: %d  Created: %d  Lock held: %d  Duration: %v\n",
		totalRequests, success.Load(), held.Load(), time.Since(start))
	c.expect("concurrent creates", int(success.Load())+int(held.Load()) == totalRequests,
		"%d requests unaccounted for", totalRequests-int(success.Load())-int(held.Load()))
	c.expect("concurrent stock", before.Quantity-after.Quantity == int(success.Load()),
		"stock fell by %d for %d orders", before.Quantity-after.Quantity, success.Load())
}
