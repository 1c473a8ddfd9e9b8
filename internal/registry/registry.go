package registry

import (
	"sort"
	"sync"

	"github.com/dbsmedya/mongolens/internal/schema"
)

// Registry is the thread-safe home of published collection entries. At most
// one entry exists per collection name. Readers never observe a partially
// built entry: entries are constructed completely by the caller and swapped
// in under the write lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Publish inserts or replaces the entry for its collection.
func (r *Registry) Publish(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Name] = e
}

// PublishAll swaps in a batch of entries under a single lock acquisition.
// Used by the initial discovery pass so list callers see the new world at
// once.
func (r *Registry) PublishAll(entries []*Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.Name] = e
	}
}

// Get returns the entry for a collection, or NotFoundError.
func (r *Registry) Get(name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, &NotFoundError{Collection: name}
	}
	return e, nil
}

// List returns all entries sorted by collection name.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all registered collection names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered collections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Remove drops a collection's entry. Returns true if one existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	delete(r.entries, name)
	return ok
}

// Schemas returns a snapshot map of the current schemas, keyed by
// collection name. The map is fresh; the schemas themselves are the
// published read-only values.
func (r *Registry) Schemas() map[string]*schema.CollectionSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*schema.CollectionSchema, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.Schema
	}
	return out
}
