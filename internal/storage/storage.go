// Package storage is the durable key-value store that cart and favorites
// snapshots are written through to. It plays the role browser local
// storage plays for a single-tab client.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage key not found")

// Storage keeps opaque values under string keys. Save overwrites.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
