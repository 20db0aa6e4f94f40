package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   string
	Name string
}

func newServiceCache(t *testing.T) Cache[string, any] {
	t.Helper()
	c, err := NewBuilder[string, any]().MaxSize(100).Build()
	require.NoError(t, err)
	return c
}

func TestGetOrFetch_CachesTypedValue(t *testing.T) {
	ctx := context.Background()
	c := newServiceCache(t)

	calls := 0
	fetch := func(context.Context) (user, error) {
		calls++
		return user{ID: "1", Name: "Ada"}, nil
	}

	first, err := GetOrFetch(ctx, c, "GetByID::1", fetch)
	require.NoError(t, err)
	second, err := GetOrFetch(ctx, c, "GetByID::1", fetch)
	require.NoError(t, err)

	assert.Equal(t, user{ID: "1", Name: "Ada"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_NilResult(t *testing.T) {
	c := newServiceCache(t)

	got, err := GetOrFetch(context.Background(), c, "maybe", func(context.Context) (*user, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetOrFetch_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	c := newServiceCache(t)

	_, err := GetOrFetch(ctx, c, "key", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)

	_, err = GetOrFetch(ctx, c, "key", func(context.Context) (string, error) { return "seven", nil })
	assert.ErrorIs(t, err, ErrInvalidResultType)
}

func TestGetOrFetch_Errors(t *testing.T) {
	ctx := context.Background()
	c := newServiceCache(t)

	boom := errors.New("boom")
	_, err := GetOrFetch(ctx, c, "key", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, err = GetOrFetch[int](ctx, c, "key", nil)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestGetOrFetch_NoopBackend(t *testing.T) {
	c, err := NewNoopBuilder[string, any]().Build()
	require.NoError(t, err)

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := GetOrFetch(context.Background(), c, "key", func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestCacheStats_String(t *testing.T) {
	assert.Equal(t, "CacheStats{size=1, max=5}", CacheStats{CacheSize: 1, MaxSize: 5}.String())
	assert.Equal(t, "CacheStats{size=3, max=unbounded}", CacheStats{CacheSize: 3, MaxSize: Unbounded}.String())
}
