package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Extraction model related methods.
	CreateExtraction(ctx context.Context, create *Extraction) (*Extraction, error)
	ListExtractions(ctx context.Context, find *FindExtraction) ([]*Extraction, error)
	DeleteExtraction(ctx context.Context, delete *DeleteExtraction) error
}
