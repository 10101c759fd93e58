// Package metadata is a small key/value store for client state such as the
// last connected account and keystore location.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value of key, or nil when it is not set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
