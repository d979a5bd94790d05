package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/seqstore/resource"
)

// CostFunc returns the cost of a cached value.
type CostFunc[V any] func(V) int64

// UnitCost charges every entry 1, bounding the cache by entry count.
func UnitCost[V any](V) int64 { return 1 }

// ByteCost charges a byte slice its length.
func ByteCost(b []byte) int64 { return int64(len(b)) }

// LRU is a least-recently-used cache bounded by total cost.
// All operations are serialized by a single mutex.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	cost      CostFunc[V]
	items     map[K]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
}

// NewLRU creates a cache holding entries up to a total cost of capacity.
// If rc is non-nil, entry costs are charged to it as memory.
func NewLRU[K comparable, V any](capacity int64, cost CostFunc[V], rc *resource.Controller) *LRU[K, V] {
	if cost == nil {
		cost = UnitCost[V]
	}
	return &LRU[K, V]{
		capacity:  capacity,
		cost:      cost,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches a value, evicting least recently used entries as needed.
// Values costing more than the capacity are not cached.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	newCost := c.cost(value)

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		c.evictList.MoveToFront(el)
		if newCost > c.capacity {
			c.removeElement(el)
			return
		}
		if c.rc != nil && newCost > e.cost {
			// global budget denies growth: keep the old value
			if !c.rc.TryAcquireMemory(newCost - e.cost) {
				return
			}
		} else if c.rc != nil && newCost < e.cost {
			c.rc.ReleaseMemory(e.cost - newCost)
		}
		c.size += newCost - e.cost
		e.value, e.cost = value, newCost
		c.evict()
		return
	}

	if newCost > c.capacity {
		return
	}

	// make room locally first; evictions release memory to rc
	for c.size+newCost > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			break
		}
		c.removeElement(el)
	}

	if c.rc != nil && !c.rc.TryAcquireMemory(newCost) {
		return
	}

	el := c.evictList.PushFront(&entry[K, V]{key: key, value: value, cost: newCost})
	c.items[key] = el
	c.size += newCost
}

// Remove drops a single entry.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Invalidate removes entries matching the predicate.
func (c *LRU[K, V]) Invalidate(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, el := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		c.removeElement(el)
	}
}

// Purge removes all entries and returns their memory to the controller.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.evictList.Back(); el != nil; el = c.evictList.Back() {
		c.removeElement(el)
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the total cost of the cached entries.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Capacity returns the configured capacity.
func (c *LRU[K, V]) Capacity() int64 {
	return c.capacity
}

// Stats returns hit and miss counters.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRU[K, V]) evict() {
	for c.size > c.capacity {
		el := c.evictList.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
	}
}

func (c *LRU[K, V]) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	e := el.Value.(*entry[K, V])
	delete(c.items, e.key)
	c.size -= e.cost
	if c.rc != nil {
		c.rc.ReleaseMemory(e.cost)
	}
}
