package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/attribution-io/ledger-core/internal/config"
	"github.com/attribution-io/ledger-core/internal/logger"
)

// ConnectConfig describes how to open the database
type ConnectConfig struct {
	DSN             string
	ReadDSN         string // optional read replica, routed by dbresolver
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration // total time spent retrying the first ping
	Debug           bool
}

// ConnectConfigFrom builds a ConnectConfig from the database section of a service config
func ConnectConfigFrom(cfg *config.DatabaseConfig, debug bool) ConnectConfig {
	return ConnectConfig{
		DSN:             cfg.DSN(),
		ReadDSN:         cfg.ReplicaDSN(),
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnectTimeout:  cfg.ConnectTimeout,
		Debug:           debug,
	}
}

// Open connects to PostgreSQL, retrying until the first ping succeeds or ConnectTimeout elapses.
// Writes and refresh transactions always go to the primary; plain reads go to the replica when one is set.
func Open(ctx context.Context, cfg ConnectConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if cfg.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(logLevel),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.ReadDSN != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.ReadDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to register read replica: %w", err)
		}
	}

	if err := ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		return nil, err
	}

	if err := pingWithRetry(ctx, db, cfg.ConnectTimeout); err != nil {
		Close(db)
		return nil, err
	}

	return db, nil
}

// Close closes the connection pool behind db
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}
}

func pingWithRetry(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if timeout <= 0 {
		timeout = time.Minute
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = timeout

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Database not reachable, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	operation := func() error {
		return sqlDB.PingContext(ctx)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return fmt.Errorf("failed to connect to database after %d attempts: %w", attemptCount+1, err)
	}
	return nil
}
