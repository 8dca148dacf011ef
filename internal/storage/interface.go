package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Read when no snapshot has been persisted yet.
var ErrNotFound = errors.New("rate snapshot not found")

// Store persists exactly one raw rate snapshot. Write replaces the record wholesale.
type Store interface {
	Exists(ctx context.Context) (bool, error)
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Locker is implemented by stores that can be shared between processes.
// The refresh path (fetch + write) runs while the lock is held.
type Locker interface {
	Lock(ctx context.Context, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, owner string) error
}

type StoreOptions struct {
	// DefaultTTL bounds how long a shared snapshot may live without being refreshed.
	DefaultTTL time.Duration
	LockTTL    time.Duration
}

func DefaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		DefaultTTL: 48 * time.Hour,
		LockTTL:    30 * time.Second,
	}
}
