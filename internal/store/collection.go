// Package store persists named collections as flat JSON files, one file per
// collection. Every mutation rewrites the whole file; a missing or corrupt
// file loads as an empty collection. A mutex per collection serializes the
// read-modify-flush sequence of every mutating operation.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"human-ai-chat/backend/pkg/logger"
	"human-ai-chat/backend/pkg/metrics"

	json "github.com/goccy/go-json"
)

// Collection is an ordered, file-backed sequence of entities of one type.
// Identifiers come from a monotonic counter seeded past the largest loaded
// identifier, never from wall-clock time.
type Collection[T any] struct {
	mu     sync.Mutex
	name   string
	path   string
	items  []T
	nextID int64

	id      func(T) int64
	log     *logger.Logger
	metrics *metrics.Metrics
}

// Open loads the collection file <dir>/<name>.json. A file that is absent
// or fails to parse yields an empty collection, not an error.
func Open[T any](dir, name string, id func(T) int64, log *logger.Logger, m *metrics.Metrics) *Collection[T] {
	c := &Collection[T]{
		name:    name,
		path:    filepath.Join(dir, name+".json"),
		id:      id,
		log:     log,
		metrics: m,
		nextID:  1,
	}

	data, err := os.ReadFile(c.path)
	if err == nil {
		var items []T
		if uerr := json.Unmarshal(data, &items); uerr != nil {
			log.Warn("collection file unreadable, starting empty",
				"collection", name, "error", uerr.Error())
		} else {
			c.items = items
		}
	} else if !os.IsNotExist(err) {
		log.Warn("collection file unreadable, starting empty",
			"collection", name, "error", err.Error())
	}

	for _, item := range c.items {
		if v := id(item); v >= c.nextID {
			c.nextID = v + 1
		}
	}

	return c
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Len returns the number of stored entities.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// All returns a copy of the collection in insertion order.
func (c *Collection[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the entity with the given identifier.
func (c *Collection[T]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Append adds a new entity built by fn, which receives the assigned
// identifier and a snapshot of the current contents so callers can make
// decisions that must be atomic with the insert (uniqueness checks, the
// first-entity rule). Returning an error from fn aborts the insert. On
// success the whole collection is flushed to disk before returning.
func (c *Collection[T]) Append(fn func(id int64, existing []T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	item, err := fn(c.nextID, c.items)
	if err != nil {
		return zero, err
	}

	c.items = append(c.items, item)
	c.nextID++

	if err := c.flush(); err != nil {
		return zero, err
	}
	return item, nil
}

// Update locates the entity with the given identifier, applies fn to it in
// place and flushes. The returned bool reports whether the entity exists;
// when it does not, no flush happens and the error is nil.
func (c *Collection[T]) Update(id int64, fn func(*T)) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	for i := range c.items {
		if c.id(c.items[i]) == id {
			fn(&c.items[i])
			if err := c.flush(); err != nil {
				return zero, true, err
			}
			return c.items[i], true, nil
		}
	}
	return zero, false, nil
}

// flush serializes the entire collection pretty-printed and rewrites the
// backing file. Callers must hold the mutex.
func (c *Collection[T]) flush() error {
	data, err := json.MarshalIndent(c.items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %s: %w", c.name, err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		if c.metrics != nil {
			c.metrics.StoreFlushErrors.WithLabelValues(c.name).Inc()
		}
		c.log.LogError(err, "collection flush failed", "collection", c.name)
		return fmt.Errorf("flush collection %s: %w", c.name, err)
	}

	if c.metrics != nil {
		c.metrics.StoreFlushes.WithLabelValues(c.name).Inc()
	}
	return nil
}
