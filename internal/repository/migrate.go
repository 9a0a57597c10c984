package repository

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"

	"github.com/AlShabiliBadia/Shorter-links/internal/config"
	"github.com/AlShabiliBadia/Shorter-links/internal/model"
)

//go:embed migrations
var migrationFS embed.FS

// sqlDriverNames maps config drivers to their database/sql registrations.
var sqlDriverNames = map[string]string{
	"mysql":    "mysql",
	"postgres": "pgx",
}

// AutoMigrate creates or updates the schema from the gorm models. Used for sqlite, where no
// versioned migrations are kept.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.ShortLink{}); err != nil {
		return fmt.Errorf("repository: auto migrate: %w", err)
	}
	return nil
}

// Migrate brings the schema to the newest version. steps < 0 rolls back that many versions.
func Migrate(cfg config.DB, db *gorm.DB, steps int) error {
	if cfg.Driver == "sqlite" {
		if steps < 0 {
			return errors.New("repository: sqlite schema is managed by AutoMigrate and cannot roll back")
		}
		return AutoMigrate(db)
	}

	m, closeFn, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	var runErr error
	if steps == 0 {
		runErr = m.Up()
	} else {
		runErr = m.Steps(steps)
	}
	if runErr != nil && !errors.Is(runErr, migrate.ErrNoChange) {
		return fmt.Errorf("repository: run migrations: %w", runErr)
	}
	return nil
}

// newMigrator opens a dedicated connection for golang-migrate; migrate's drivers close the
// *sql.DB they are given, so the service pool is never handed over.
func newMigrator(cfg config.DB) (*migrate.Migrate, func(), error) {
	driverName, ok := sqlDriverNames[cfg.Driver]
	if !ok {
		return nil, nil, fmt.Errorf("repository: no migrations for driver %q", cfg.Driver)
	}

	migrationDB, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("repository: open migration db: %w", err)
	}

	var dbDriver database.Driver
	switch cfg.Driver {
	case "mysql":
		dbDriver, err = migratemysql.WithInstance(migrationDB, &migratemysql.Config{})
	case "postgres":
		dbDriver, err = pgxv5.WithInstance(migrationDB, &pgxv5.Config{})
	}
	if err != nil {
		_ = migrationDB.Close()
		return nil, nil, fmt.Errorf("repository: create migrate driver: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations/"+cfg.Driver)
	if err != nil {
		_ = dbDriver.Close()
		return nil, nil, fmt.Errorf("repository: open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		return nil, nil, fmt.Errorf("repository: create migrate instance: %w", err)
	}

	closeFn := func() {
		_, _ = m.Close()
		_ = migrationDB.Close()
	}
	return m, closeFn, nil
}
