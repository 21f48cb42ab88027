package persist

import (
	"context"
	"errors"
)

// KV is the durable key-value facility backing the local cart mode.
// Values are opaque JSON documents; callers own the encoding.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
