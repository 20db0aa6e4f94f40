package cache

import (
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Option customizes the ambient collaborators of a built cache.
type Option func(*options)

type options struct {
	name       string
	logger     zerolog.Logger
	clock      clock.Clock
	serializer KeySerializer
}

func newOptions(opts []Option) options {
	o := options{
		logger:     zerolog.Nop(),
		clock:      clock.New(),
		serializer: NewDefaultKeySerializer(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithName labels the cache in log output. Unnamed caches get a random
// "cache-<uuid>" name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger. Caches log nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces the wall clock used for expiry. Tests pass clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithKeySerializer sets how non-string keys are turned into backend keys.
// Only the sturdyc backend needs string keys.
func WithKeySerializer(s KeySerializer) Option {
	return func(o *options) {
		if s != nil {
			o.serializer = s
		}
	}
}

// resolve fixes the cache name and returns a logger tagged with it.
func (o options) resolve(backend string) (string, zerolog.Logger) {
	name := o.name
	if name == "" {
		name = "cache-" + uuid.NewString()
	}
	logger := o.logger.With().
		Str("cache", name).
		Str("backend", backend).
		Logger()
	return name, logger
}
