package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/config"
	"github.com/AlShabiliBadia/Shorter-links/pkg/logging"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dbConnectTimeout bounds the startup wait for the database.
const dbConnectTimeout = 15 * time.Second

func dialector(cfg config.DB) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("repository: unsupported driver %q", cfg.Driver)
	}
}

// OpenDB connects to the configured database and waits until it answers a ping.
func OpenDB(ctx context.Context, cfg config.DB, l *zap.Logger, level logger.LogLevel) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logging.NewGormLogger(l, level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("repository: open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("repository: underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite has a single writer; one connection keeps :memory: databases shared and
		// serializes transactions instead of failing them with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
	defer cancel()
	if err := waitFor(ctx, l, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	l.Info("successfully connected to db", zap.String("driver", cfg.Driver))
	return db, nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func waitFor(ctx context.Context, l *zap.Logger, p pinger) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		err := p.PingContext(ctx)
		if err == nil {
			return nil
		}

		l.Warn("unable to establish connection, retrying...", zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("db connection timed out or was cancelled: %w (last error: %v)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// CloseDB releases the pool behind db.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
