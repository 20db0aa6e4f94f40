package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type noopBuilder[K comparable, V any] struct {
	opts options
}

// NewNoopBuilder returns a builder for caches that retain nothing. Every read
// calls the loader. Size and expiry settings are accepted and ignored, so
// caching can be switched off without touching call sites.
func NewNoopBuilder[K comparable, V any](opts ...Option) Builder[K, V] {
	return &noopBuilder[K, V]{opts: newOptions(opts)}
}

func (b *noopBuilder[K, V]) MaxSize(int) Builder[K, V]                     { return b }
func (b *noopBuilder[K, V]) ExpireAfterAccess(time.Duration) Builder[K, V] { return b }
func (b *noopBuilder[K, V]) InitialCapacity(int) Builder[K, V]             { return b }

func (b *noopBuilder[K, V]) Build() (Cache[K, V], error) {
	return b.build(nil), nil
}

func (b *noopBuilder[K, V]) BuildWithLoader(loader Loader[K, V]) (Cache[K, V], error) {
	if loader == nil {
		return nil, errNilLoader()
	}
	return b.build(loader), nil
}

func (b *noopBuilder[K, V]) build(loader Loader[K, V]) *noopCache[K, V] {
	_, logger := b.opts.resolve("noop")
	logger.Debug().Bool("default_loader", loader != nil).Msg("cache built")
	return &noopCache[K, V]{loader: loader, logger: logger}
}

type noopCache[K comparable, V any] struct {
	loader Loader[K, V]
	logger zerolog.Logger
}

func (c *noopCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if c.loader == nil {
		var zero V
		return zero, ErrUnboundLoader
	}
	return c.loader.Load(ctx, key)
}

func (c *noopCache[K, V]) GetWithLoader(ctx context.Context, key K, loader Loader[K, V]) (V, error) {
	if loader == nil {
		var zero V
		return zero, errNilLoader()
	}
	return loader.Load(ctx, key)
}

func (c *noopCache[K, V]) Invalidate(context.Context, K) error { return nil }

func (c *noopCache[K, V]) Stats() Stats { return NoopStats }
