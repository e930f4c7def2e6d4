package store

import (
	"context"
	"errors"
	"time"

	"storepos/checkout"
	"storepos/models"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrVersionConflict means another request changed the session after it was loaded.
	ErrVersionConflict = errors.New("checkout session was changed concurrently")
	ErrCacheMiss       = errors.New("cache miss")
)

// SessionStore keeps open checkout sessions. Update succeeds only when the
// stored version equals s.Version and then increments it.
type SessionStore interface {
	Create(ctx context.Context, s *checkout.Session) error
	Get(ctx context.Context, id string) (*checkout.Session, error)
	Update(ctx context.Context, s *checkout.Session) error
	Delete(ctx context.Context, id string) error
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}

// SalesJournal is the local record of sales the storefront accepted.
type SalesJournal interface {
	Record(ctx context.Context, r models.SaleRecord) error
	Recent(ctx context.Context, cashierID string, limit int) ([]models.SaleRecord, error)
}

// CustomerCache caches customer lookups by phone.
type CustomerCache interface {
	Get(ctx context.Context, phone string) (*models.CustomerRecord, error)
	Set(ctx context.Context, phone string, c *models.CustomerRecord) error
	Delete(ctx context.Context, phone string) error
}
