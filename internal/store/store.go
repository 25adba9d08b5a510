// Package store is the persistence boundary. All reads and writes go through
// Queries, either bound to the shared pool or to one transaction.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"workspace-service/prometheus"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// Store owns the database handle.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and shutdown.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Read returns queries that run outside any transaction.
func (s *Store) Read(ctx context.Context) *Queries {
	return &Queries{db: s.db.WithContext(ctx)}
}

// Tx runs fn inside one transaction. The transaction commits when fn returns
// nil and rolls back otherwise; fn's error is returned unchanged.
func (s *Store) Tx(ctx context.Context, operation string, fn func(q *Queries) error) error {
	defer prometheus.TrackDBOperation(operation)(time.Now())
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Queries{db: tx})
	})
	return translate(err)
}

// Queries is the fixed query set. Every method that touches tenant-owned rows
// takes the tenant id and filters on it.
type Queries struct {
	db *gorm.DB
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
