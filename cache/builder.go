package cache

import "time"

// Builder accumulates configuration and produces a Cache. A builder is owned
// by one goroutine. Changing it after Build does not affect caches it
// already produced.
type Builder[K comparable, V any] interface {
	// MaxSize bounds the number of resident entries. n must be positive.
	MaxSize(n int) Builder[K, V]

	// ExpireAfterAccess drops entries not read or written for d. d must be positive.
	ExpireAfterAccess(d time.Duration) Builder[K, V]

	// InitialCapacity presizes internal storage. n must not be negative.
	InitialCapacity(n int) Builder[K, V]

	// Build returns a cache without a default loader.
	Build() (Cache[K, V], error)

	// BuildWithLoader returns a cache whose Get uses loader.
	BuildWithLoader(loader Loader[K, V]) (Cache[K, V], error)
}

// settings is the value snapshot shared by the builders. It is copied on
// Build, so built caches never see later mutation.
type settings struct {
	maxSize    int
	maxSizeSet bool

	expireAfterAccess    time.Duration
	expireAfterAccessSet bool

	initialCapacity int
}

func (s *settings) setMaxSize(n int) {
	s.maxSize = n
	s.maxSizeSet = true
}

func (s *settings) setExpireAfterAccess(d time.Duration) {
	s.expireAfterAccess = d
	s.expireAfterAccessSet = true
}

func (s *settings) setInitialCapacity(n int) {
	s.initialCapacity = n
}

// validate reports the first invalid value, checked in declaration order.
func (s settings) validate() error {
	if s.maxSizeSet && s.maxSize <= 0 {
		return &ConfigError{Field: "MaxSize", Message: "must be greater than 0"}
	}

	if s.expireAfterAccessSet && s.expireAfterAccess <= 0 {
		return &ConfigError{Field: "ExpireAfterAccess", Message: "must be greater than 0"}
	}

	if s.initialCapacity < 0 {
		return &ConfigError{Field: "InitialCapacity", Message: "must be non-negative"}
	}

	return nil
}
