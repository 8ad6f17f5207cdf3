// Package store keeps the history of reports produced by the HTTP server.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dhamidi/giftlint/diagnose"
)

var (
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
)

// Record is a stored report. The report's Source is not kept.
type Record struct {
	ID      uuid.UUID       `json:"id"`
	Created time.Time       `json:"created"`
	Report  diagnose.Report `json:"report"`
}

type Repository interface {
	// Create stores report under a new ID.
	Create(ctx context.Context, report diagnose.Report) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	// GetAll returns every record, oldest first.
	GetAll(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id uuid.UUID) (Record, error)
	Close() error
}
