package main

import (
	"context"
	"fmt"

	"github.com/AlShabiliBadia/Shorter-links/internal/config"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/AlShabiliBadia/Shorter-links/pkg/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds what every command needs: logger and an open database, migrated when both the
// caller and db.auto_migrate ask for it.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func newApp(ctx context.Context, autoMigrate bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := repository.OpenDB(ctx, cfg.DB, logger, logging.ToGormLogLevel(level.Level()))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	if autoMigrate && cfg.DB.AutoMigrate {
		if err := repository.Migrate(cfg.DB, db, 0); err != nil {
			_ = repository.CloseDB(db)
			_ = logger.Sync()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) Close() {
	if err := repository.CloseDB(a.db); err != nil {
		a.logger.Warn("DB close failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}
