package di

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-loading-cache/cache"
	"github.com/goliatone/go-loading-cache/repositorycache"
	"github.com/rs/zerolog"
)

// Container wires a shared cache, key serializer and logger for cached
// repositories. One Container usually backs every repository of a service.
type Container struct {
	cache         cache.Cache[string, any]
	keySerializer cache.KeySerializer
	config        cache.Config
	logger        zerolog.Logger
}

// NewContainer validates config and builds the shared cache from it.
// opts are forwarded to the cache builder.
func NewContainer(config cache.Config, opts ...cache.Option) (*Container, error) {
	builder, err := cache.NewBuilderFromConfig[string, any](config, opts...)
	if err != nil {
		return nil, err
	}

	shared, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return &Container{
		cache:         shared,
		keySerializer: cache.NewDefaultKeySerializer(),
		config:        config,
		logger:        zerolog.Nop(),
	}, nil
}

// NewContainerWithDefaults creates a container from cache.DefaultConfig.
func NewContainerWithDefaults(opts ...cache.Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// NewContainerFromFile loads a YAML cache config and builds a container from it.
func NewContainerFromFile(path string, opts ...cache.Option) (*Container, error) {
	config, err := cache.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewContainer(config, opts...)
}

// WithLogger sets the logger handed to repositories created afterwards.
func (c *Container) WithLogger(logger zerolog.Logger) *Container {
	c.logger = logger
	return c
}

// Cache returns the shared cache instance.
func (c *Container) Cache() cache.Cache[string, any] {
	return c.cache
}

// KeySerializer returns the shared key serializer.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns the configuration the container was built from.
func (c *Container) Config() cache.Config {
	return c.config
}

// Stats is a snapshot of the shared cache.
func (c *Container) Stats() cache.Stats {
	return c.cache.Stats()
}

// NewCachedRepository wraps base with the container's cache.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedRepository[User](container, baseUserRepository)
func NewCachedRepository[T any](container *Container, base repository.Repository[T]) *repositorycache.CachedRepository[T] {
	return repositorycache.New(base, container.cache, container.keySerializer).
		WithLogger(container.logger)
}
