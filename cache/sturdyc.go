package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-loading-cache/internal/cacheinfra"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

// SturdycConfig configures the sturdyc backend.
type SturdycConfig = cacheinfra.Config

// EarlyRefreshConfig enables sturdyc background refreshes.
type EarlyRefreshConfig = cacheinfra.EarlyRefreshConfig

// DefaultSturdycConfig returns sturdyc settings that behave like a plain
// bounded TTL cache.
func DefaultSturdycConfig() SturdycConfig {
	return cacheinfra.DefaultConfig()
}

// maxKeyLength caps backend keys. Longer serialized keys keep a readable
// prefix and end in their xxh3 digest.
const maxKeyLength = 256

func compactKey(key string) string {
	if len(key) <= maxKeyLength {
		return key
	}
	sum := xxh3.HashString128(key)
	digest := fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
	return key[:maxKeyLength-len(digest)-1] + "#" + digest
}

type sturdycBuilder[K comparable, V any] struct {
	settings
	cfg  SturdycConfig
	opts options
}

// NewSturdycBuilder returns a builder backed by sturdyc. MaxSize overrides
// cfg.Capacity and ExpireAfterAccess overrides cfg.TTL. sturdyc measures TTL
// from the write and evicts a percentage of a full shard, so expiry is
// absolute rather than sliding and Stats may briefly report fewer entries
// than the limit after an eviction.
func NewSturdycBuilder[K comparable, V any](cfg SturdycConfig, opts ...Option) Builder[K, V] {
	return &sturdycBuilder[K, V]{cfg: cfg, opts: newOptions(opts)}
}

func (b *sturdycBuilder[K, V]) MaxSize(n int) Builder[K, V] {
	b.setMaxSize(n)
	return b
}

func (b *sturdycBuilder[K, V]) ExpireAfterAccess(d time.Duration) Builder[K, V] {
	b.setExpireAfterAccess(d)
	return b
}

// InitialCapacity is validated but unused; sturdyc sizes its shards itself.
func (b *sturdycBuilder[K, V]) InitialCapacity(n int) Builder[K, V] {
	b.setInitialCapacity(n)
	return b
}

func (b *sturdycBuilder[K, V]) Build() (Cache[K, V], error) {
	return b.build(nil)
}

func (b *sturdycBuilder[K, V]) BuildWithLoader(loader Loader[K, V]) (Cache[K, V], error) {
	if loader == nil {
		return nil, errNilLoader()
	}
	return b.build(loader)
}

func (b *sturdycBuilder[K, V]) build(loader Loader[K, V]) (*sturdycCache[K, V], error) {
	s := b.settings
	if err := s.validate(); err != nil {
		return nil, err
	}

	cfg := b.cfg
	if cfg.EarlyRefresh != nil {
		refresh := *cfg.EarlyRefresh
		cfg.EarlyRefresh = &refresh
	}
	if s.maxSizeSet {
		cfg.Capacity = s.maxSize
		if cfg.NumShards > cfg.Capacity {
			cfg.NumShards = cfg.Capacity
		}
	}
	if s.expireAfterAccessSet {
		cfg.TTL = s.expireAfterAccess
	}

	store, err := cacheinfra.NewStore[V](cfg)
	if err != nil {
		return nil, err
	}

	_, logger := b.opts.resolve("sturdyc")
	logger.Debug().
		Int("capacity", cfg.Capacity).
		Int("num_shards", cfg.NumShards).
		Dur("ttl", cfg.TTL).
		Bool("default_loader", loader != nil).
		Msg("cache built")

	return &sturdycCache[K, V]{
		store:      store,
		loader:     loader,
		serializer: b.opts.serializer,
		logger:     logger,
	}, nil
}

type sturdycCache[K comparable, V any] struct {
	store      *cacheinfra.Store[V]
	loader     Loader[K, V]
	serializer KeySerializer
	logger     zerolog.Logger
}

func (c *sturdycCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if c.loader == nil {
		var zero V
		return zero, ErrUnboundLoader
	}
	return c.GetWithLoader(ctx, key, c.loader)
}

// GetWithLoader relies on sturdyc to share one fetch between concurrent
// misses for the same key.
func (c *sturdycCache[K, V]) GetWithLoader(ctx context.Context, key K, loader Loader[K, V]) (V, error) {
	if loader == nil {
		var zero V
		return zero, errNilLoader()
	}

	return c.store.GetOrFetch(ctx, c.storeKey(key), func(ctx context.Context) (V, error) {
		value, err := loader.Load(ctx, key)
		if err != nil {
			c.logger.Debug().Err(err).Interface("key", key).Msg("load failed")
		}
		return value, err
	})
}

func (c *sturdycCache[K, V]) Invalidate(_ context.Context, key K) error {
	c.store.Delete(c.storeKey(key))
	return nil
}

func (c *sturdycCache[K, V]) Stats() Stats {
	return CacheStats{CacheSize: c.store.Size(), MaxSize: c.store.Capacity()}
}

// storeKey renders key through the serializer. String and scalar keys map
// onto themselves with the default serializer.
func (c *sturdycCache[K, V]) storeKey(key K) string {
	return compactKey(c.serializer.SerializeKey(key))
}
