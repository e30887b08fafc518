package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the console application
type Config struct {
	// Data files
	DataDir         string `conf:"default:.,env:DATA_DIR"`
	ItemFile        string `conf:"default:Item.txt,env:ITEM_FILE"`
	OrderFile       string `conf:"default:Order.txt,env:ORDER_FILE"`
	StaffFile       string `conf:"default:staff.txt,env:STAFF_FILE"`
	TransactionFile string `conf:"default:Transaction.txt,env:TRANSACTION_FILE"`
	InitFiles       bool   `conf:"default:true,env:INIT_FILES"`

	// Application
	LogLevel         string `conf:"default:warn,env:LOG_LEVEL"`
	MaxLoginAttempts int    `conf:"default:3,env:MAX_LOGIN_ATTEMPTS"`
	TaxPercent       int    `conf:"default:6,env:TAX_PERCENT"`

	// Redis writer lock, disabled when empty
	RedisAddr string        `conf:"env:REDIS_ADDR"`
	LockTTL   time.Duration `conf:"default:30s,env:LOCK_TTL"`

	// MySQL reservation journal, disabled when empty
	MySQLDSN string `conf:"env:MYSQL_DSN,noprint"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()
	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Path returns name resolved against the data directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

// DataFiles lists every data file the application reads and writes.
func (c *Config) DataFiles() []string {
	return []string{
		c.Path(c.ItemFile),
		c.Path(c.OrderFile),
		c.Path(c.StaffFile),
		c.Path(c.TransactionFile),
	}
}
