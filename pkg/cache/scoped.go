package cache

import (
	"context"
	"time"
)

// ScopedCache prefixes every key before handing it to the wrapped cache.
type ScopedCache struct {
	inner  Cache
	prefix string
}

// Scoped returns a view of inner whose keys live under prefix. Closing the
// view does not close inner.
//
//	svgs := cache.Scoped(shared, "canvas:orders:")
func Scoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NullCache{}
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

func (s *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *ScopedCache) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *ScopedCache) Close() error { return nil }
