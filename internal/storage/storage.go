package storage

import (
	"context"
	"errors"
	"time"

	"leadbot/internal/models"
)

// ErrNoSession is returned when no live session exists for an ID
var ErrNoSession = errors.New("session not found")

// SessionStore keeps in-progress form sessions
type SessionStore interface {
	// Get returns ErrNoSession if the session is missing or idle past its TTL
	Get(ctx context.Context, id int64) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	// Delete is a no-op for a missing session
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Evicter is implemented by session stores that need an explicit idle sweep
type Evicter interface {
	EvictIdle(now time.Time) int
}

// RowStore appends finished leads as rows with a fixed column order
type RowStore interface {
	AppendRow(ctx context.Context, columns []string) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
