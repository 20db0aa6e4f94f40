package cache

import "context"

// FetchFn computes a typed value for a read-through lookup.
type FetchFn[T any] func(ctx context.Context) (T, error)

// GetOrFetch reads key from a heterogeneous cache and loads it with fetchFn on
// a miss. A cached nil yields the zero T. A cached value of another type
// fails with ErrInvalidResultType.
func GetOrFetch[T any](ctx context.Context, c Cache[string, any], key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	if fetchFn == nil {
		return zero, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	result, err := c.GetWithLoader(ctx, key, LoaderFunc[string, any](func(ctx context.Context, _ string) (any, error) {
		value, err := fetchFn(ctx)
		if err != nil {
			return nil, err
		}
		return value, nil
	}))
	if err != nil {
		return zero, err
	}

	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
