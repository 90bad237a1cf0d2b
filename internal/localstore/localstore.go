// Package localstore is the durable client-side store: a small key-value
// layer where a single key is written atomically.
package localstore

import (
	"context"
	"errors"
)

var ErrNoKey = errors.New("localstore: key not found")

type Store interface {
	// Get returns the value for key, or ErrNoKey if it was never written.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value for key in one atomic step.
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
