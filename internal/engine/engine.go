// Package engine holds the eviction engines backing the bounded cache.
//
// An engine owns storage and eviction bookkeeping only. It never computes
// values: load deduplication and loader invocation live one level up, in the
// cache package, so engine locks are held just long enough to touch the map
// and the recency list.
package engine

import (
	"time"

	"github.com/benbjohnson/clock"
)

// EvictionReason tells a listener why an entry left the engine.
type EvictionReason int

const (
	// ReasonSize means the entry was the least recently used one when the size bound was exceeded.
	ReasonSize EvictionReason = iota
	// ReasonExpired means the entry was not accessed within the expiry window.
	ReasonExpired
	// ReasonExplicit means the entry was removed by a caller.
	ReasonExplicit
)

func (r EvictionReason) String() string {
	switch r {
	case ReasonSize:
		return "size"
	case ReasonExpired:
		return "expired"
	case ReasonExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// EvictionListener is notified after an entry is removed. It runs outside engine locks.
type EvictionListener[K comparable, V any] func(key K, value V, reason EvictionReason)

// Engine is the create/read/evict capability a bounded cache delegates to.
type Engine[K comparable, V any] interface {
	// Get returns the live value for key and marks it as accessed.
	Get(key K) (V, bool)
	// Put inserts or replaces the value for key, evicting as needed.
	Put(key K, value V)
	// Remove drops key and reports whether it was present.
	Remove(key K) bool
	// Len is the number of resident entries, expired ones included until purged.
	Len() int
	// MaxSize is the size bound, zero when unbounded.
	MaxSize() int
}

// Options configures an engine.
type Options[K comparable, V any] struct {
	MaxSize           int
	ExpireAfterAccess time.Duration
	InitialCapacity   int
	Clock             clock.Clock
	OnEvict           EvictionListener[K, V]
}
