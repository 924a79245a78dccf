package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services. A miss returns
// ("", nil) rather than an error so callers can fall through to the
// backing store without type checks.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
