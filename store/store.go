// Package store is the persistence layer for users, posts and tags.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/blogly/metrics"
)

// Store provides CRUD and relationship traversal over the blog schema.
// A Store returned by Transaction is bound to that transaction.
type Store struct {
	db *gorm.DB
}

// New wraps an initialized gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a single database transaction. The transaction
// commits when fn returns nil and rolls back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func observe(operation string, err error) error {
	metrics.ObserveStore(operation, err)
	return err
}
