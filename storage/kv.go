// Package storage holds the ledger store and the key-value media it persists through.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// UpdateFunc receives the current value (nil when the key is absent) and
// returns the value to store. Returning an error aborts the update.
type UpdateFunc func(current []byte) ([]byte, error)

// KV is the persistence port behind the ledger store.
type KV interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	// Update is an atomic read-modify-write of one key. No other Update or
	// Set on the same key may interleave between the read and the write.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	Close() error
}
