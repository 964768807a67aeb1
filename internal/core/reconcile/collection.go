// Package reconcile implements the bounded, id-deduplicated ordered
// collection that every live view maintains from push envelopes.
package reconcile

// Entity is anything with a stable integer identity.
type Entity interface {
	EntityID() int
}

// Collection is an ordered sequence of entities keyed by id, optionally
// capped at a maximum retained length. It holds two invariants at all times:
// no two entries share an id, and eviction under the cap always drops the
// tail (oldest) entries, never an arbitrary one.
//
// Collection is not safe for concurrent use; each view mutates its own
// instance from a single message-handling goroutine.
type Collection[T Entity] struct {
	max   int // 0 = unbounded
	items []T
	index map[int]int // id → position in items
}

// New returns an empty Collection retaining at most max entries.
// max <= 0 means unbounded.
func New[T Entity](max int) *Collection[T] {
	if max < 0 {
		max = 0
	}
	return &Collection[T]{max: max, index: make(map[int]int)}
}

// Upsert applies the "changed" merge rule: if an entity with the same id
// exists it is replaced in place, preserving its position; otherwise the
// entity is prepended and the tail is truncated down to the cap. It reports
// whether a new entry was inserted (false = in-place replace).
//
// Replaying the same envelope is idempotent: the second application is an
// in-place replace at the position fixed by the first.
func (c *Collection[T]) Upsert(e T) bool {
	id := e.EntityID()
	if pos, ok := c.index[id]; ok {
		c.items[pos] = e
		return false
	}

	c.items = append(c.items, e)
	copy(c.items[1:], c.items)
	c.items[0] = e
	c.reindex(0)

	if c.max > 0 && len(c.items) > c.max {
		for _, evicted := range c.items[c.max:] {
			delete(c.index, evicted.EntityID())
		}
		c.items = c.items[:c.max]
	}
	return true
}

// Remove applies the "removed" merge rule: delete the entity with the
// matching id if present. Absence is not an error; the call is a no-op and
// reports false.
func (c *Collection[T]) Remove(id int) bool {
	pos, ok := c.index[id]
	if !ok {
		return false
	}
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, id)
	c.reindex(pos)
	return true
}

// Replace swaps the entire contents for an authoritative snapshot (a full
// refetch). Server order is preserved; duplicate ids keep the first
// occurrence; the cap is applied to the tail.
func (c *Collection[T]) Replace(items []T) {
	c.items = c.items[:0]
	clear(c.index)
	for _, e := range items {
		id := e.EntityID()
		if _, dup := c.index[id]; dup {
			continue
		}
		if c.max > 0 && len(c.items) == c.max {
			break
		}
		c.index[id] = len(c.items)
		c.items = append(c.items, e)
	}
}

// Get returns the entity with the given id, if present.
func (c *Collection[T]) Get(id int) (T, bool) {
	if pos, ok := c.index[id]; ok {
		return c.items[pos], true
	}
	var zero T
	return zero, false
}

// Len returns the number of retained entities.
func (c *Collection[T]) Len() int { return len(c.items) }

// Snapshot returns a copy of the current contents in order, safe for the
// caller to render while the collection keeps mutating.
func (c *Collection[T]) Snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many retained entities satisfy pred.
func (c *Collection[T]) Count(pred func(T) bool) int {
	n := 0
	for _, e := range c.items {
		if pred(e) {
			n++
		}
	}
	return n
}

func (c *Collection[T]) reindex(from int) {
	for i := from; i < len(c.items); i++ {
		c.index[c.items[i].EntityID()] = i
	}
}
