package cache

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Backend selects the Cache implementation built from a Config.
type Backend string

const (
	BackendNoop    Backend = "noop"
	BackendBounded Backend = "bounded"
	BackendSturdyc Backend = "sturdyc"
)

// Config is the declarative form of a Builder, suitable for YAML files.
// Zero numeric values leave the corresponding builder option unset.
type Config struct {
	Backend           Backend        `yaml:"backend"`
	MaxSize           int            `yaml:"max_size"`
	ExpireAfterAccess time.Duration  `yaml:"expire_after_access"`
	InitialCapacity   int            `yaml:"initial_capacity"`
	Sturdyc           *SturdycConfig `yaml:"sturdyc"`
}

// DefaultConfig returns a bounded cache holding up to 1000 entries.
func DefaultConfig() Config {
	return Config{
		Backend: BackendBounded,
		MaxSize: 1000,
	}
}

// Validate returns a *ConfigError naming the first invalid field.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.In(BackendNoop, BackendBounded, BackendSturdyc)),
		validation.Field(&c.MaxSize, validation.Min(0)),
		validation.Field(&c.ExpireAfterAccess, validation.Min(time.Duration(0))),
		validation.Field(&c.InitialCapacity, validation.Min(0)),
		validation.Field(&c.Sturdyc),
	)
	return toConfigError(err)
}

// toConfigError flattens ozzo field errors into a single *ConfigError.
func toConfigError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	field := fields[0]
	fieldErr := errs[field]

	var nested *ConfigError
	if errors.As(fieldErr, &nested) {
		return &ConfigError{Field: field + "." + nested.Field, Message: nested.Message}
	}
	return &ConfigError{Field: field, Message: fieldErr.Error()}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// A sturdyc block is merged over DefaultSturdycConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read cache config %s: %w", path, err)
	}

	sturdycDefaults := DefaultSturdycConfig()
	cfg := DefaultConfig()
	cfg.Sturdyc = &sturdycDefaults

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse cache config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// NewBuilderFromConfig validates cfg and returns the matching builder with
// its options applied. An empty Backend means bounded.
func NewBuilderFromConfig[K comparable, V any](cfg Config, opts ...Option) (Builder[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var b Builder[K, V]
	switch cfg.Backend {
	case BackendNoop:
		return NewNoopBuilder[K, V](opts...), nil
	case BackendSturdyc:
		sc := DefaultSturdycConfig()
		if cfg.Sturdyc != nil {
			sc = *cfg.Sturdyc
		}
		b = NewSturdycBuilder[K, V](sc, opts...)
	default:
		b = NewBuilder[K, V](opts...)
	}

	if cfg.MaxSize > 0 {
		b = b.MaxSize(cfg.MaxSize)
	}
	if cfg.ExpireAfterAccess > 0 {
		b = b.ExpireAfterAccess(cfg.ExpireAfterAccess)
	}
	if cfg.InitialCapacity > 0 {
		b = b.InitialCapacity(cfg.InitialCapacity)
	}

	return b, nil
}
