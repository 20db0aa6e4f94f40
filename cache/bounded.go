package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-loading-cache/internal/engine"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

type boundedBuilder[K comparable, V any] struct {
	settings
	opts      options
	newEngine func(engine.Options[K, V]) engine.Engine[K, V]
}

func newLRUEngine[K comparable, V any](opts engine.Options[K, V]) engine.Engine[K, V] {
	return engine.NewLRU(opts)
}

// NewBuilder returns a builder for the in-process cache: least recently used
// eviction once MaxSize is reached and sliding expiry after ExpireAfterAccess.
// Without MaxSize the cache is unbounded.
func NewBuilder[K comparable, V any](opts ...Option) Builder[K, V] {
	return &boundedBuilder[K, V]{opts: newOptions(opts), newEngine: newLRUEngine[K, V]}
}

func (b *boundedBuilder[K, V]) MaxSize(n int) Builder[K, V] {
	b.setMaxSize(n)
	return b
}

func (b *boundedBuilder[K, V]) ExpireAfterAccess(d time.Duration) Builder[K, V] {
	b.setExpireAfterAccess(d)
	return b
}

func (b *boundedBuilder[K, V]) InitialCapacity(n int) Builder[K, V] {
	b.setInitialCapacity(n)
	return b
}

func (b *boundedBuilder[K, V]) Build() (Cache[K, V], error) {
	return b.build(nil)
}

func (b *boundedBuilder[K, V]) BuildWithLoader(loader Loader[K, V]) (Cache[K, V], error) {
	if loader == nil {
		return nil, errNilLoader()
	}
	return b.build(loader)
}

func (b *boundedBuilder[K, V]) build(loader Loader[K, V]) (*boundedCache[K, V], error) {
	s := b.settings
	if err := s.validate(); err != nil {
		return nil, err
	}

	_, logger := b.opts.resolve("bounded")
	c := &boundedCache[K, V]{
		loader:   loader,
		inflight: xsync.NewMapOf[K, *loadCall[V]](),
		logger:   logger,
	}
	c.engine = b.newEngine(engine.Options[K, V]{
		MaxSize:           s.maxSize,
		ExpireAfterAccess: s.expireAfterAccess,
		InitialCapacity:   s.initialCapacity,
		Clock:             b.opts.clock,
		OnEvict:           c.onEvict,
	})

	logger.Debug().
		Int("max_size", s.maxSize).
		Dur("expire_after_access", s.expireAfterAccess).
		Bool("default_loader", loader != nil).
		Msg("cache built")

	return c, nil
}

// loadCall is an in-flight load. value and err are written once, before done
// is closed.
type loadCall[V any] struct {
	done  chan struct{}
	value V
	err   error
}

func (l *loadCall[V]) wait(ctx context.Context) (V, error) {
	select {
	case <-l.done:
		return l.value, l.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

type boundedCache[K comparable, V any] struct {
	engine   engine.Engine[K, V]
	loader   Loader[K, V]
	inflight *xsync.MapOf[K, *loadCall[V]]
	logger   zerolog.Logger
}

func (c *boundedCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if c.loader == nil {
		var zero V
		return zero, ErrUnboundLoader
	}
	return c.GetWithLoader(ctx, key, c.loader)
}

// GetWithLoader runs loader at most once per key at a time. Concurrent
// callers for the same key wait for that load and share its value or error.
// A waiter whose ctx ends stops waiting; the load itself keeps running.
func (c *boundedCache[K, V]) GetWithLoader(ctx context.Context, key K, loader Loader[K, V]) (V, error) {
	if loader == nil {
		var zero V
		return zero, errNilLoader()
	}

	if v, ok := c.engine.Get(key); ok {
		return v, nil
	}

	call := &loadCall[V]{done: make(chan struct{})}
	if existing, loaded := c.inflight.LoadOrStore(key, call); loaded {
		return existing.wait(ctx)
	}

	return c.load(ctx, key, loader, call)
}

func (c *boundedCache[K, V]) load(ctx context.Context, key K, loader Loader[K, V], call *loadCall[V]) (V, error) {
	settled := false
	settle := func(value V, err error) {
		settled = true
		call.value, call.err = value, err
		c.inflight.Delete(key)
		close(call.done)
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("key", key).Interface("panic", r).Msg("loader panicked")
			if !settled {
				var zero V
				settle(zero, fmt.Errorf("%w: %v", ErrLoaderPanicked, r))
			}
			panic(r)
		}
	}()

	// another load may have stored the value between the miss and LoadOrStore
	if v, ok := c.engine.Get(key); ok {
		settle(v, nil)
		return v, nil
	}

	value, err := loader.Load(ctx, key)
	if err != nil {
		c.logger.Debug().Err(err).Interface("key", key).Msg("load failed")
		var zero V
		settle(zero, err)
		return zero, err
	}

	c.engine.Put(key, value)
	settle(value, nil)
	return value, nil
}

func (c *boundedCache[K, V]) Invalidate(_ context.Context, key K) error {
	c.engine.Remove(key)
	return nil
}

func (c *boundedCache[K, V]) Stats() Stats {
	maxSize := c.engine.MaxSize()
	if maxSize == 0 {
		maxSize = Unbounded
	}
	return CacheStats{CacheSize: c.engine.Len(), MaxSize: maxSize}
}

func (c *boundedCache[K, V]) onEvict(key K, _ V, reason engine.EvictionReason) {
	c.logger.Trace().Interface("key", key).Stringer("reason", reason).Msg("entry evicted")
}
