// Package database is the storage layer of the task status API.
// This file has two responsibilities:
//  1. Opening a database connection using GORM for the configured driver
//  2. Applying the embedded SQL migrations that create the statuses table
//
// store.go builds the StatusStore on top of these helpers.
package database

import (
	"embed"
	"errors"
	"fmt"

	// The migrate package reads and applies versioned SQL migration files.
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	// iofs lets migrate read .sql files from an embed.FS, so the binary
	// carries its own schema instead of depending on a migrations/ directory on disk.
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trentd187/task-status/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrUnsupportedDriver is returned when DB_DRIVER names something we can't open.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Connect opens a new connection to the database described by cfg.
// gorm.Open pings the server before returning, so an unreachable database
// surfaces here as an error rather than on the first query.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.DBDriver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger(cfg.Debug),
	})
}

// Close releases the physical connection(s) behind a *gorm.DB.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogger(debug bool) logger.Interface {
	if debug {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Silent)
}

// RunMigrations applies any pending "up" migrations for the given driver.
// The migrate library records what it has applied in a schema_migrations table,
// and the statuses migration itself uses CREATE ... IF NOT EXISTS, so calling
// this on every process start is safe.
func RunMigrations(db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	switch driver {
	case config.DriverPostgres:
		m, err = newMigrator(driver, "migrations/postgres", func() (migratedb.Driver, error) {
			return migratepg.WithInstance(sqlDB, &migratepg.Config{})
		})
	case config.DriverSQLite:
		m, err = newMigrator("sqlite3", "migrations/sqlite3", func() (migratedb.Driver, error) {
			return migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return err
	}
	// Close releases the migrate source and database drivers. The caller still
	// owns sqlDB and closes it; sql.DB.Close is idempotent, so a driver that
	// already closed it is harmless.
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			zap.L().Debug("Closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	// migrate.ErrNoChange means everything is already applied and is not a real error.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func newMigrator(name, dir string, open func() (migratedb.Driver, error)) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	drv, err := open()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, name, drv)
}
