package repositorycache

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-loading-cache/cache"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ repository.Repository[any] = (*CachedRepository[any])(nil)

// listResult wraps the tuple result from List operations for caching
type listResult[T any] struct {
	Records []T `json:"records"`
	Total   int `json:"total"`
}

// CachedRepository decorates a base repository with read-through caching.
// Keys are prefixed with a namespace derived from T, so several repositories
// can share one cache.
type CachedRepository[T any] struct {
	base          repository.Repository[T]
	cache         cache.Cache[string, any]
	keySerializer cache.KeySerializer
	namespace     string
	keyRegistry   *xsync.MapOf[string, struct{}]
	tagRegistry   *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
	logger        zerolog.Logger

	// writes counts invalidation passes. A read that sees it move while
	// loading drops what it stored, since the load may predate the write.
	writes atomic.Uint64
}

// New creates a new CachedRepository that wraps the base repository with caching
func New[T any](base repository.Repository[T], c cache.Cache[string, any], keySerializer cache.KeySerializer) *CachedRepository[T] {
	if keySerializer == nil {
		keySerializer = cache.NewDefaultKeySerializer()
	}
	return &CachedRepository[T]{
		base:          base,
		cache:         c,
		keySerializer: keySerializer,
		namespace:     namespaceFor[T](),
		keyRegistry:   xsync.NewMapOf[string, struct{}](),
		tagRegistry:   xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
		logger:        zerolog.Nop(),
	}
}

// WithLogger sets the logger used to report failed invalidations.
func (c *CachedRepository[T]) WithLogger(logger zerolog.Logger) *CachedRepository[T] {
	c.logger = logger.With().Str("namespace", c.namespace).Logger()
	return c
}

// Namespace is the key prefix shared by every entry of this repository.
func (c *CachedRepository[T]) Namespace() string {
	return c.namespace
}

func namespaceFor[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return toSnake(name)
}

// Get retrieves a single record using the provided criteria, with caching
func (c *CachedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return cachedRead(ctx, c, func(ctx context.Context) (T, error) {
		return c.base.Get(ctx, criteria...)
	}, "Get", criteria)
}

// GetByID retrieves a record by ID with optional criteria, with caching
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	return cachedRead(ctx, c, func(ctx context.Context) (T, error) {
		return c.base.GetByID(ctx, id, criteria...)
	}, "GetByID", id, criteria)
}

// List retrieves multiple records using the provided criteria, with caching
func (c *CachedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	res, err := cachedRead(ctx, c, func(ctx context.Context) (listResult[T], error) {
		records, total, err := c.base.List(ctx, criteria...)
		return listResult[T]{Records: records, Total: total}, err
	}, "List", criteria)
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Total, nil
}

// Count returns the number of records matching the criteria, with caching
func (c *CachedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	return cachedRead(ctx, c, func(ctx context.Context) (int, error) {
		return c.base.Count(ctx, criteria...)
	}, "Count", criteria)
}

// GetByIdentifier retrieves a record by identifier with optional criteria, with caching
func (c *CachedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return cachedRead(ctx, c, func(ctx context.Context) (T, error) {
		return c.base.GetByIdentifier(ctx, identifier, criteria...)
	}, "GetByIdentifier", identifier, criteria)
}

// Create creates a new record. Write operations pass through to base repository
func (c *CachedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := c.base.Create(ctx, record, criteria...)
	if err == nil {
		c.invalidateAfterCreate(ctx)
	}
	return result, err
}

// CreateTx creates a new record within a transaction
func (c *CachedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := c.base.CreateTx(ctx, tx, record, criteria...)
	if err == nil {
		c.invalidateAfterCreate(ctx)
	}
	return result, err
}

// CreateMany creates multiple records
func (c *CachedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := c.base.CreateMany(ctx, records, criteria...)
	if err == nil {
		c.invalidateAfterCreate(ctx)
	}
	return result, err
}

// CreateManyTx creates multiple records within a transaction
func (c *CachedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := c.base.CreateManyTx(ctx, tx, records, criteria...)
	if err == nil {
		c.invalidateAfterCreate(ctx)
	}
	return result, err
}

// GetOrCreate gets a record or creates it if it doesn't exist
func (c *CachedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	result, err := c.base.GetOrCreate(ctx, record)
	if err == nil {
		// GetOrCreate may have created a new record, so invalidate create-related caches
		c.invalidateAfterCreate(ctx)
	}
	return result, err
}

// GetOrCreateTx gets a record or creates it if it doesn't exist within a transaction
func (c *CachedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	result, err := c.base.GetOrCreateTx(ctx, tx, record)
	if err == nil {
		c.invalidateAfterCreate(ctx)
	}
	return result, err
}

// Update updates a record
func (c *CachedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Update(ctx, record, criteria...)
	if err == nil {
		c.invalidateAfterUpdate(ctx, result)
	}
	return result, err
}

// UpdateTx updates a record within a transaction
func (c *CachedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.UpdateTx(ctx, tx, record, criteria...)
	if err == nil {
		c.invalidateAfterUpdate(ctx, result)
	}
	return result, err
}

// UpdateMany updates multiple records
func (c *CachedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpdateMany(ctx, records, criteria...)
	if err == nil {
		c.invalidateAfterBulkUpdate(ctx, result)
	}
	return result, err
}

// UpdateManyTx updates multiple records within a transaction
func (c *CachedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpdateManyTx(ctx, tx, records, criteria...)
	if err == nil {
		c.invalidateAfterBulkUpdate(ctx, result)
	}
	return result, err
}

// Upsert inserts or updates a record
func (c *CachedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Upsert(ctx, record, criteria...)
	if err == nil {
		// Upsert can either insert or update, so we need to invalidate like an update
		c.invalidateAfterUpdate(ctx, result)
	}
	return result, err
}

// UpsertTx inserts or updates a record within a transaction
func (c *CachedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.UpsertTx(ctx, tx, record, criteria...)
	if err == nil {
		c.invalidateAfterUpdate(ctx, result)
	}
	return result, err
}

// UpsertMany inserts or updates multiple records
func (c *CachedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpsertMany(ctx, records, criteria...)
	if err == nil {
		c.invalidateAfterBulkUpdate(ctx, result)
	}
	return result, err
}

// UpsertManyTx inserts or updates multiple records within a transaction
func (c *CachedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpsertManyTx(ctx, tx, records, criteria...)
	if err == nil {
		c.invalidateAfterBulkUpdate(ctx, result)
	}
	return result, err
}

// Delete deletes a record
func (c *CachedRepository[T]) Delete(ctx context.Context, record T) error {
	err := c.base.Delete(ctx, record)
	if err == nil {
		c.invalidateAfterDelete(ctx, record)
	}
	return err
}

// DeleteTx deletes a record within a transaction
func (c *CachedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := c.base.DeleteTx(ctx, tx, record)
	if err == nil {
		c.invalidateAfterDelete(ctx, record)
	}
	return err
}

// DeleteMany deletes multiple records based on criteria
func (c *CachedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteMany(ctx, criteria...)
	if err == nil {
		// Since we don't have the actual records, invalidate all relevant caches
		c.invalidateAfterCriteriaOperation(ctx)
	}
	return err
}

// DeleteManyTx deletes multiple records based on criteria within a transaction
func (c *CachedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteManyTx(ctx, tx, criteria...)
	if err == nil {
		c.invalidateAfterCriteriaOperation(ctx)
	}
	return err
}

// DeleteWhere deletes records based on criteria
func (c *CachedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteWhere(ctx, criteria...)
	if err == nil {
		// Since we don't have the actual records, invalidate all relevant caches
		c.invalidateAfterCriteriaOperation(ctx)
	}
	return err
}

// DeleteWhereTx deletes records based on criteria within a transaction
func (c *CachedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteWhereTx(ctx, tx, criteria...)
	if err == nil {
		c.invalidateAfterCriteriaOperation(ctx)
	}
	return err
}

// ForceDelete force deletes a record (bypassing soft delete)
func (c *CachedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	err := c.base.ForceDelete(ctx, record)
	if err == nil {
		c.invalidateAfterDelete(ctx, record)
	}
	return err
}

// ForceDeleteTx force deletes a record within a transaction (bypassing soft delete)
func (c *CachedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := c.base.ForceDeleteTx(ctx, tx, record)
	if err == nil {
		c.invalidateAfterDelete(ctx, record)
	}
	return err
}

// GetTx retrieves a single record using the provided criteria within a transaction
func (c *CachedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetTx(ctx, tx, criteria...)
}

// GetByIDTx retrieves a record by ID with optional criteria within a transaction
func (c *CachedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIDTx(ctx, tx, id, criteria...)
}

// ListTx retrieves multiple records using the provided criteria within a transaction
func (c *CachedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return c.base.ListTx(ctx, tx, criteria...)
}

// CountTx returns the number of records matching the criteria within a transaction
func (c *CachedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return c.base.CountTx(ctx, tx, criteria...)
}

// GetByIdentifierTx retrieves a record by identifier with optional criteria within a transaction
func (c *CachedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

// Raw executes a raw SQL query and returns the results
func (c *CachedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return c.base.Raw(ctx, sql, args...)
}

// RawTx executes a raw SQL query within a transaction and returns the results
func (c *CachedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return c.base.RawTx(ctx, tx, sql, args...)
}

// Handlers returns the model handlers from the base repository
func (c *CachedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return c.base.Handlers()
}

// cachedRead serves a read through the cache. The key is tracked only after
// the value is stored, and if a write invalidated this repository while the
// load ran the value may predate that write, so it is dropped again.
func cachedRead[T, R any](ctx context.Context, c *CachedRepository[T], fetch cache.FetchFn[R], method string, args ...any) (R, error) {
	key := c.readKey(method, args...)
	seen := c.writes.Load()

	result, err := cache.GetOrFetch(ctx, c.cache, key, fetch)
	c.track(ctx, key)
	if c.writes.Load() != seen {
		c.invalidateKey(ctx, key)
	}
	return result, err
}

// readKey builds the namespaced key for a read.
func (c *CachedRepository[T]) readKey(method string, args ...any) string {
	parts := make([]any, 0, len(args)+2)
	parts = append(parts, c.namespace, method)
	return c.keySerializer.SerializeKey(append(parts, args...)...)
}

// track registers key, together with any tags carried by ctx, for later
// invalidation.
func (c *CachedRepository[T]) track(ctx context.Context, key string) {
	c.keyRegistry.Store(key, struct{}{})

	for _, tag := range cacheTagsFromContext(ctx) {
		keys, _ := c.tagRegistry.LoadOrCompute(tag, func() *xsync.MapOf[string, struct{}] {
			return xsync.NewMapOf[string, struct{}]()
		})
		keys.Store(key, struct{}{})
	}
}

// methodPrefix is the key prefix of a read method, optionally narrowed by
// its leading arguments.
func (c *CachedRepository[T]) methodPrefix(method string, args ...string) string {
	parts := append([]string{c.namespace, method}, args...)
	return strings.Join(parts, cache.KeySeparator)
}

// invalidateByPrefix removes every tracked key equal to prefix or extending
// it by whole key segments. "ns::Get" does not match "ns::GetByID::1".
func (c *CachedRepository[T]) invalidateByPrefix(ctx context.Context, prefix string) {
	c.writes.Add(1)

	var keysToDelete []string
	c.keyRegistry.Range(func(key string, _ struct{}) bool {
		if key == prefix || strings.HasPrefix(key, prefix+cache.KeySeparator) {
			keysToDelete = append(keysToDelete, key)
		}
		return true
	})

	for _, key := range keysToDelete {
		c.invalidateKey(ctx, key)
	}
}

// invalidateKey untracks key before dropping it, so a read that tracks the
// same key concurrently stays tracked.
func (c *CachedRepository[T]) invalidateKey(ctx context.Context, key string) {
	c.keyRegistry.Delete(key)
	if err := c.cache.Invalidate(ctx, key); err != nil {
		// keep it tracked so a later write retries it
		c.keyRegistry.Store(key, struct{}{})
		c.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}

// InvalidateTags drops every entry read under one of tags via WithCacheTags.
func (c *CachedRepository[T]) InvalidateTags(ctx context.Context, tags ...string) error {
	c.writes.Add(1)
	for _, tag := range dedupeStrings(tags) {
		keys, ok := c.tagRegistry.LoadAndDelete(tag)
		if !ok {
			continue
		}
		keys.Range(func(key string, _ struct{}) bool {
			c.invalidateKey(ctx, key)
			return true
		})
	}
	return nil
}

// InvalidateAll drops every entry this repository has cached.
func (c *CachedRepository[T]) InvalidateAll(ctx context.Context) error {
	c.invalidateByPrefix(ctx, c.namespace)
	c.tagRegistry.Clear()
	return nil
}

// extractID attempts to extract an ID field from a record using reflection
func (c *CachedRepository[T]) extractID(record T) (string, error) {
	return extractField(record, "ID", "Id", "id")
}

func extractField(record any, names ...string) (string, error) {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", fmt.Errorf("record is nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("record of kind %s has no fields", v.Kind())
	}

	for _, fieldName := range names {
		field := v.FieldByName(fieldName)
		if field.IsValid() && field.CanInterface() {
			return fmt.Sprintf("%v", field.Interface()), nil
		}
	}
	return "", fmt.Errorf("none of %v found in record", names)
}

// invalidateAfterCreate invalidates query result caches after create operations
func (c *CachedRepository[T]) invalidateAfterCreate(ctx context.Context) {
	// new records change pagination and totals
	c.invalidateByPrefix(ctx, c.methodPrefix("List"))
	c.invalidateByPrefix(ctx, c.methodPrefix("Count"))
	c.invalidateByPrefix(ctx, c.methodPrefix("Get"))
}

// invalidateAfterUpdate invalidates all relevant caches after update operations
func (c *CachedRepository[T]) invalidateAfterUpdate(ctx context.Context, record T) {
	if id, err := c.extractID(record); err == nil {
		c.invalidateByPrefix(ctx, c.methodPrefix("GetByID", id))
	} else {
		c.invalidateByPrefix(ctx, c.methodPrefix("GetByID"))
	}

	// identifier lookups may use any unique column, so they all go
	c.invalidateByPrefix(ctx, c.methodPrefix("GetByIdentifier"))

	c.invalidateAfterCreate(ctx)
}

// invalidateAfterDelete invalidates all relevant caches after delete operations
func (c *CachedRepository[T]) invalidateAfterDelete(ctx context.Context, record T) {
	c.invalidateAfterUpdate(ctx, record)
}

// invalidateAfterBulkUpdate invalidates caches after bulk update operations
func (c *CachedRepository[T]) invalidateAfterBulkUpdate(ctx context.Context, records []T) {
	for _, record := range records {
		c.invalidateAfterUpdate(ctx, record)
	}
}

// invalidateAfterCriteriaOperation invalidates caches after operations that use criteria instead of records
func (c *CachedRepository[T]) invalidateAfterCriteriaOperation(ctx context.Context) {
	// the affected records are unknown
	c.invalidateByPrefix(ctx, c.methodPrefix("GetByID"))
	c.invalidateByPrefix(ctx, c.methodPrefix("GetByIdentifier"))
	c.invalidateAfterCreate(ctx)
}
