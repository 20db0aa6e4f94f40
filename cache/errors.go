package cache

import (
	"errors"

	"github.com/goliatone/go-loading-cache/internal/cacheinfra"
)

var (
	// ErrUnboundLoader is returned by Get on a cache built without a default loader.
	ErrUnboundLoader = errors.New("cache: no default loader bound, use GetWithLoader or BuildWithLoader")

	// ErrInvalidResultType is returned by GetOrFetch when a cached value has
	// a different type than the one requested.
	ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

	// ErrLoaderPanicked is handed to callers waiting on a load whose loader panicked.
	ErrLoaderPanicked = errors.New("cache: loader panicked")
)

// ConfigError reports an invalid builder or config value. Use errors.As to
// read the offending field.
type ConfigError = cacheinfra.ConfigError

func errNilLoader() error {
	return &ConfigError{Field: "Loader", Message: "cannot be nil"}
}
