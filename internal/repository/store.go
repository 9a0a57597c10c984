package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store is the transactional handle services work against. Repositories obtained from the
// Store passed to a Transaction callback run inside that transaction.
type Store interface {
	Links() LinkRepository
	Users() UserRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type GormStore struct {
	db      *gorm.DB
	metrics *Metrics
}

var _ Store = (*GormStore)(nil)

func NewStore(db *gorm.DB, metrics *Metrics) *GormStore {
	if db == nil {
		panic("nil *gorm.DB passed to NewStore")
	}
	return &GormStore{db: db, metrics: metrics}
}

func (s *GormStore) Links() LinkRepository {
	return &GormLinkRepository{db: s.db, metrics: s.metrics}
}

func (s *GormStore) Users() UserRepository {
	return &GormUserRepository{db: s.db, metrics: s.metrics}
}

// Transaction commits when fn returns nil and rolls back otherwise, including when ctx is
// cancelled mid-way.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, metrics: s.metrics})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// supportsRowLocks reports whether SELECT ... FOR UPDATE is meaningful for the dialect.
// sqlite locks the whole database for writers instead.
func supportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}
