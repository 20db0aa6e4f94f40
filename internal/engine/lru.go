package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

var _ Engine[string, any] = (*LRU[string, any])(nil)

// LRU is a size bounded, expire-after-access engine ordered by recency.
//
// Access times only grow from head to tail, so expired entries always sit at
// the tail of the list and purging never scans live entries.
type LRU[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*Node[K, V]
	order *List[K, V]
	size  atomic.Int64

	maxSize           int
	expireAfterAccess time.Duration
	clock             clock.Clock
	onEvict           EvictionListener[K, V]
}

type eviction[K comparable, V any] struct {
	node   *Node[K, V]
	reason EvictionReason
}

// NewLRU builds an engine from opts. A non-positive MaxSize or
// ExpireAfterAccess disables that bound.
func NewLRU[K comparable, V any](opts Options[K, V]) *LRU[K, V] {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	capacity := opts.InitialCapacity
	if capacity < 0 {
		capacity = 0
	}
	if opts.MaxSize > 0 && capacity > opts.MaxSize {
		capacity = opts.MaxSize
	}

	maxSize := opts.MaxSize
	if maxSize < 0 {
		maxSize = 0
	}

	expireAfterAccess := opts.ExpireAfterAccess
	if expireAfterAccess < 0 {
		expireAfterAccess = 0
	}

	return &LRU[K, V]{
		items:             make(map[K]*Node[K, V], capacity),
		order:             NewList[K, V](),
		maxSize:           maxSize,
		expireAfterAccess: expireAfterAccess,
		clock:             clk,
		onEvict:           opts.OnEvict,
	}
}

func (e *LRU[K, V]) Get(key K) (V, bool) {
	var zero V

	e.mu.Lock()
	n, ok := e.items[key]
	if !ok {
		e.mu.Unlock()
		return zero, false
	}

	now := e.clock.Now()
	if e.expired(n, now) {
		e.removeLocked(n)
		e.mu.Unlock()
		e.notify([]eviction[K, V]{{node: n, reason: ReasonExpired}})
		return zero, false
	}

	n.AccessedAt = now
	e.order.MoveToHead(n)
	value := n.Value
	e.mu.Unlock()

	return value, true
}

func (e *LRU[K, V]) Put(key K, value V) {
	e.mu.Lock()
	now := e.clock.Now()
	evicted := e.purgeLocked(now)

	if n, ok := e.items[key]; ok {
		n.Value = value
		n.AccessedAt = now
		e.order.MoveToHead(n)
	} else {
		n = NewNode(key, value)
		n.AccessedAt = now
		_ = e.order.AddHead(n)
		e.items[key] = n
		e.size.Add(1)
	}

	for e.maxSize > 0 && e.order.Len() > e.maxSize {
		tail := e.order.RemoveTail()
		e.forgetLocked(tail)
		evicted = append(evicted, eviction[K, V]{node: tail, reason: ReasonSize})
	}
	e.mu.Unlock()

	e.notify(evicted)
}

func (e *LRU[K, V]) Remove(key K) bool {
	e.mu.Lock()
	n, ok := e.items[key]
	if ok {
		e.removeLocked(n)
	}
	e.mu.Unlock()

	if ok {
		e.notify([]eviction[K, V]{{node: n, reason: ReasonExplicit}})
	}
	return ok
}

func (e *LRU[K, V]) Len() int     { return int(e.size.Load()) }
func (e *LRU[K, V]) MaxSize() int { return e.maxSize }

func (e *LRU[K, V]) expired(n *Node[K, V], now time.Time) bool {
	return e.expireAfterAccess > 0 && now.Sub(n.AccessedAt) > e.expireAfterAccess
}

// purgeLocked walks the tail while entries are expired. Caller holds e.mu.
func (e *LRU[K, V]) purgeLocked(now time.Time) []eviction[K, V] {
	if e.expireAfterAccess <= 0 {
		return nil
	}

	var evicted []eviction[K, V]
	for tail := e.order.Tail(); tail != nil && e.expired(tail, now); tail = e.order.Tail() {
		e.removeLocked(tail)
		evicted = append(evicted, eviction[K, V]{node: tail, reason: ReasonExpired})
	}
	return evicted
}

func (e *LRU[K, V]) removeLocked(n *Node[K, V]) {
	if e.order.Remove(n) == nil {
		return
	}
	e.forgetLocked(n)
}

// forgetLocked drops an already unlinked node from the index.
func (e *LRU[K, V]) forgetLocked(n *Node[K, V]) {
	delete(e.items, n.Key)
	e.size.Add(-1)
}

func (e *LRU[K, V]) notify(evicted []eviction[K, V]) {
	if e.onEvict == nil {
		return
	}
	for _, ev := range evicted {
		e.onEvict(ev.node.Key, ev.node.Value, ev.reason)
	}
}
