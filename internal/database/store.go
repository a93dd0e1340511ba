package database

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/task-status/internal/config"
	"github.com/trentd187/task-status/internal/models"
)

// ErrConnectionFailed wraps any failure to open a database connection. Handlers
// check for it with errors.Is to tell "database unreachable" apart from query errors.
var ErrConnectionFailed = errors.New("database connection failed")

// StatusStore is everything the HTTP layer needs from storage. Handlers depend on
// this interface only, so the per-request Store below can be swapped for a pooled
// or transactional implementation without touching them.
type StatusStore interface {
	ListStatuses(ctx context.Context) ([]models.Status, error)
	CreateStatus(ctx context.Context, taskID int64, name string) (*models.Status, error)
}

// Connector opens a brand new database connection each time it is called.
type Connector func() (*gorm.DB, error)

// NewConnector returns a Connector for the database described by cfg.
func NewConnector(cfg *config.Config) Connector {
	return func() (*gorm.DB, error) {
		return Connect(cfg)
	}
}

// Store is the StatusStore backed by a relational database.
//
// Every operation opens its own connection, runs a single statement and closes the
// connection before returning. Nothing is shared between requests, so the store
// itself needs no locking.
type Store struct {
	connect Connector
	driver  string
}

var _ StatusStore = (*Store)(nil)

// NewStore creates a Store. driver selects which embedded migrations Initialize
// applies ("postgres" or "sqlite").
func NewStore(connect Connector, driver string) *Store {
	return &Store{connect: connect, driver: driver}
}

// Initialize makes sure the statuses table exists. It is idempotent and meant to
// be called on every start; callers log the error and keep running on failure.
func (s *Store) Initialize(ctx context.Context) error {
	return s.withConn(ctx, "initialize", func(db *gorm.DB) error {
		if err := RunMigrations(db, s.driver); err != nil {
			return fmt.Errorf("failed to initialize statuses table: %w", err)
		}
		return nil
	})
}

// ListStatuses returns every status row in insertion (id) order.
// The result is never nil, so an empty table serialises as [].
func (s *Store) ListStatuses(ctx context.Context) ([]models.Status, error) {
	statuses := make([]models.Status, 0)
	err := s.withConn(ctx, "list statuses", func(db *gorm.DB) error {
		if err := db.Order("id").Find(&statuses).Error; err != nil {
			return fmt.Errorf("failed to list statuses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// CreateStatus inserts one (task_id, status) row and returns it with the generated id.
// created_at/updated_at are left to the database defaults and are not read back.
func (s *Store) CreateStatus(ctx context.Context, taskID int64, name string) (*models.Status, error) {
	status := &models.Status{TaskID: taskID, Status: name}
	err := s.withConn(ctx, "create status", func(db *gorm.DB) error {
		// GORM wraps a single Create in its own transaction and commits it on success.
		if err := db.Select("task_id", "status").Create(status).Error; err != nil {
			return fmt.Errorf("failed to create status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// withConn opens a connection, hands it to fn and closes it again, logging failures
// with the operation name.
func (s *Store) withConn(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	db, err := s.connect()
	if err != nil {
		zap.L().Error("Failed to connect to database", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer func() {
		if err := Close(db); err != nil {
			zap.L().Warn("Error closing database connection", zap.String("op", op), zap.Error(err))
		}
	}()

	if err := fn(db.WithContext(ctx)); err != nil {
		zap.L().Error("Database operation failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}
