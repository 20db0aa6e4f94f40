// Package repositorycache provides cached repository decorators for go-repository-bun.
//
// # Overview
//
// CachedRepository[T] wraps a repository.Repository[T] and serves its reads
// through a cache.Cache[string, any]. Writes go straight to the base
// repository and then drop the cached reads they may have made stale.
//
// # Basic Usage
//
//	store, err := cache.NewBuilder[string, any]().
//		MaxSize(10_000).
//		ExpireAfterAccess(5 * time.Minute).
//		Build()
//	if err != nil {
//		return err
//	}
//
//	cached := repositorycache.New(base, store, cache.NewDefaultKeySerializer())
//
//	user, err := cached.GetByID(ctx, "user-123")
//	users, total, err := cached.List(ctx)
//
// # Cached vs Pass-through Operations
//
// Cached: Get, GetByID, GetByIdentifier, List and Count.
//
// Pass-through: every write, every *Tx method and Raw. Transactional reads
// skip the cache so uncommitted rows are never shared.
//
// # Keys
//
// Keys are "<namespace>::<method>::<args>" where the namespace is the snake
// case name of T. The cache.KeySerializer renders every segment, so
// GetByID("42") reads "user::GetByID::42::[]". Several repositories can
// share one cache without collisions.
//
// # Invalidation
//
// Every read key is tracked. After a successful write:
//
//   - Create and bulk creates drop Get, List and Count entries
//   - Update, Upsert and Delete also drop GetByID entries for the record ID
//     and all GetByIdentifier entries
//   - criteria based deletes drop every read
//
// Reads made with a context from WithCacheTags are also registered under those
// tags and can be dropped with InvalidateTags. InvalidateAll clears the
// namespace. Invalidation failures are logged, never returned from writes.
//
// # Integration with Dependency Injection
//
//	container, err := di.NewContainer(cacheConfig)
//	if err != nil {
//		return err
//	}
//	cachedRepo := di.NewCachedRepository(container, baseRepo)
package repositorycache
