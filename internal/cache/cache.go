// Package cache implements the read cache the UI layer works against:
// reads are keyed by operation identity, concurrent reads for the same
// key share one in-flight fetch, and a successful mutation invalidates
// the whole namespace of the affected entity type. Invalidation is
// deliberately coarse; the next read re-fetches.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Namespaces, one per cached entity type.
const (
	NamespaceRules         = "alert-rules"
	NamespaceNotifications = "alert-notifications"
	NamespaceSources       = "source-configurations"
	NamespaceQueries       = "saved-queries"
)

// Key identifies a cached read: the entity namespace plus the
// parameters that shape the result (e.g. the owning user id).
type Key struct {
	Namespace string
	Arg       string
}

type Store struct {
	mu      sync.RWMutex
	entries map[Key]interface{}
	gens    map[string]uint64
	group   singleflight.Group
}

func New() *Store {
	return &Store{
		entries: make(map[Key]interface{}),
		gens:    make(map[string]uint64),
	}
}

// GetOrFetch returns the cached value for key, or runs fetch and
// caches its result. Concurrent callers for the same key coalesce into
// a single fetch. A failed fetch caches nothing.
func (c *Store) GetOrFetch(ctx context.Context, key Key, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	value, ok := c.entries[key]
	gen := c.gens[key.Namespace]
	c.mu.RUnlock()

	if ok {
		return value, nil
	}

	// The namespace generation is part of the flight key so a read
	// issued after an invalidation never joins (or is served by) a
	// fetch that started before it.
	flightKey := fmt.Sprintf("%s/%s#%d", key.Namespace, key.Arg, gen)

	value, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()

		if ok {
			return cached, nil
		}

		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gens[key.Namespace] == gen {
			c.entries[key] = fetched
		}
		c.mu.Unlock()

		return fetched, nil
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Invalidate drops every entry in the namespace and fences off any
// fetch still in flight for it. Called after a successful mutation of
// the corresponding entity type, and never after a failed one.
func (c *Store) Invalidate(namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[namespace]++

	for key := range c.entries {
		if key.Namespace == namespace {
			delete(c.entries, key)
		}
	}
}
