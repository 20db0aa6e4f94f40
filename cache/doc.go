// Package cache provides a pluggable, generic read-through cache.
//
// # Overview
//
// Call sites depend on the Cache interface and never on a backend:
//
//   - Cache: Get, GetWithLoader, Invalidate and Stats over keys K and values V
//   - Loader: computes a value for a key on a miss
//   - Builder: accumulates options and builds a Cache, optionally bound to a default Loader
//
// Three backends implement the contract:
//
//   - NewNoopBuilder: retains nothing, every read calls the loader, Stats returns NoopStats
//   - NewBuilder: in-process cache with least recently used eviction and sliding expiry
//   - NewSturdycBuilder: sharded cache on top of github.com/viccon/sturdyc with absolute TTL
//
// # Basic Usage
//
//	users, err := cache.NewBuilder[string, User]().
//		MaxSize(1000).
//		ExpireAfterAccess(10 * time.Minute).
//		BuildWithLoader(cache.LoaderFunc[string, User](func(ctx context.Context, id string) (User, error) {
//			return repo.GetByID(ctx, id)
//		}))
//	if err != nil {
//		return err
//	}
//
//	u, err := users.Get(ctx, "user-123")
//
// A cache built with Build has no default loader. Its Get fails with
// ErrUnboundLoader and callers use GetWithLoader instead.
//
// # Concurrency
//
// All caches are safe for concurrent use. The bounded and sturdyc backends run
// at most one load per key at a time: concurrent misses wait for the running
// load and receive its value or its error. Loads for different keys never
// block each other. Failed loads are not cached.
//
// The cache imposes no timeout of its own. A waiter whose context ends
// returns ctx.Err() while the load it was waiting on keeps running.
//
// # Configuration
//
// Config mirrors the builder options and can be read from YAML with LoadConfig:
//
//	backend: bounded
//	max_size: 5000
//	expire_after_access: 10m
//
// Invalid values surface as *ConfigError from Build, Validate or LoadConfig,
// never on first use.
//
// # Key Serialization
//
// KeySerializer turns keys and key parts into strings. The sturdyc backend
// uses it for its keys and the repositorycache package uses it to join a
// namespace, a method name and the call arguments. With the default
// serializer string and scalar keys map onto themselves, composite values are
// walked deterministically, and functions render by address, which is stable
// only within a single process.
package cache
