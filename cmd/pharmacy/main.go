package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/pharmacy-records/internal/adapter/handler"
	"github.com/rl1809/pharmacy-records/internal/adapter/security"
	"github.com/rl1809/pharmacy-records/internal/adapter/storage"
	"github.com/rl1809/pharmacy-records/internal/config"
	"github.com/rl1809/pharmacy-records/internal/core/service"
	"github.com/rl1809/pharmacy-records/internal/logger"
	"github.com/rl1809/pharmacy-records/internal/port"
)

const (
	lockName        = "pharmacy-records"
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	// Data files
	if cfg.InitFiles {
		for _, path := range cfg.DataFiles() {
			if err := storage.EnsureFile(path); err != nil {
				fatal(log, "failed to create data file", err)
			}
		}
	}

	items := storage.NewFileStore(cfg.Path(cfg.ItemFile), storage.ItemCodec{})
	orders := storage.NewFileStore(cfg.Path(cfg.OrderFile), storage.OrderCodec{})
	staff := storage.NewFileStore(cfg.Path(cfg.StaffFile), storage.StaffCodec{})
	transactions := storage.NewFileStore(cfg.Path(cfg.TransactionFile), storage.TransactionCodec{})

	// Writer lock
	var lock port.WriterLock = storage.NoopLock{}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			fatal(log, "failed to connect redis", err)
		}
		lock = storage.NewRedisLock(rdb, lockName, cfg.LockTTL)
		log.Info("connected to redis", "addr", cfg.RedisAddr)
	}

	// Reservation journal
	var journal port.ReservationJournal = storage.NoopJournal{}
	var db *sql.DB
	if cfg.MySQLDSN != "" {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			fatal(log, "failed to open mysql", err)
		}
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			fatal(log, "failed to ping mysql", err)
		}

		mysqlJournal := storage.NewMySQLJournal(db)
		if err := mysqlJournal.EnsureSchema(ctx); err != nil {
			fatal(log, "failed to create journal table", err)
		}
		journal = mysqlJournal
		log.Info("connected to mysql")
	}

	// Services
	ledger := service.NewLedger(items, journal, log)
	svc := handler.Services{
		Staff:    service.NewStaffService(staff, security.Hasher{}, log),
		Items:    service.NewItemService(items, lock, log),
		Orders:   service.NewOrderService(orders, items, ledger, lock, log),
		Payments: service.NewPaymentService(transactions, cfg.TaxPercent, log),
	}

	prompter := handler.NewLinerPrompter()
	console := handler.NewConsoleHandler(prompter, os.Stdout, svc, cfg.MaxLoginAttempts, log)

	done := make(chan error, 1)
	go func() {
		done <- console.Run(ctx)
	}()

	err = awaitConsole(ctx, done, shutdownTimeout, log)
	prompter.Close()

	if n := ledger.NegativeEvents(); n > 0 {
		log.Warn("inventory went below zero during session", "events", n)
	}

	// Close connections
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// awaitConsole waits for the console to return. After ctx is cancelled it
// gives an in-flight operation up to timeout to finish its compensation.
func awaitConsole(ctx context.Context, done <-chan error, timeout time.Duration, log logger.Logger) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		log.Warn("console did not stop in time", "timeout", timeout)
		return nil
	}
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
