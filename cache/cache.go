package cache

import "context"

// Loader computes the value for a key on a miss.
type Loader[K comparable, V any] interface {
	Load(ctx context.Context, key K) (V, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Load calls f(ctx, key).
func (f LoaderFunc[K, V]) Load(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}

// Cache is the contract every backend implements. Call sites depend on it
// without knowing whether values are actually retained.
type Cache[K comparable, V any] interface {
	// Get returns the value for key, loading it with the default loader on a
	// miss. It fails with ErrUnboundLoader when the cache was built without one.
	Get(ctx context.Context, key K) (V, error)

	// GetWithLoader behaves like Get but uses loader for a miss, ignoring any
	// default loader.
	GetWithLoader(ctx context.Context, key K, loader Loader[K, V]) (V, error)

	// Invalidate drops the entry for key. Missing keys are not an error.
	Invalidate(ctx context.Context, key K) error

	// Stats returns a point in time snapshot. It never blocks on a load.
	Stats() Stats
}
