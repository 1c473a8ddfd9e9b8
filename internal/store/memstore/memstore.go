// Package memstore provides a deterministic in-memory Store implementation
// for tests and local development. Documents keep insertion order, sampling
// returns a stable prefix, and per-collection failures can be injected to
// exercise partial-failure paths.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dbsmedya/mongolens/internal/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]store.Document
	indexes     map[string][]store.IndexInfo
	failures    map[string]error
	listErr     error
	pingErr     error
	closed      bool
}

// New returns an empty memstore.
func New() *Store {
	return &Store{
		collections: make(map[string][]store.Document),
		indexes:     make(map[string][]store.IndexInfo),
		failures:    make(map[string]error),
	}
}

// Seed appends documents to a collection, creating it if needed.
func (s *Store) Seed(collection string, docs ...store.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], docs...)
}

// SeedIndex registers index metadata for a collection.
func (s *Store) SeedIndex(collection string, idx store.IndexInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[collection] = append(s.indexes[collection], idx)
}

// FailWith injects an error for every operation touching the collection.
func (s *Store) FailWith(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[collection] = err
}

// FailList injects an error for ListCollections.
func (s *Store) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailPing injects an error for Ping.
func (s *Store) FailPing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// ListCollections returns all collection names, sorted.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CollectionExists reports whether the collection has been seeded.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// Sample returns up to size documents from the front of the collection.
// The prefix is stable so repeated discovery passes see identical input.
func (s *Store) Sample(ctx context.Context, name string, size int) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[name]; err != nil {
		return nil, err
	}
	docs, ok := s.collections[name]
	if !ok {
		return nil, &store.NotFoundError{Collection: name}
	}
	if size > len(docs) {
		size = len(docs)
	}
	out := make([]store.Document, size)
	copy(out, docs[:size])
	return out, nil
}

// EstimatedCount returns the exact size; the in-memory store has no cheaper
// approximation to offer.
func (s *Store) EstimatedCount(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[name]; err != nil {
		return 0, err
	}
	docs, ok := s.collections[name]
	if !ok {
		return 0, &store.NotFoundError{Collection: name}
	}
	return int64(len(docs)), nil
}

// Count returns the number of documents matching the conditions and search.
func (s *Store) Count(ctx context.Context, name string, conditions []store.Condition, search *store.SearchSpec) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validateConditions(conditions); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[name]; err != nil {
		return 0, err
	}
	docs, ok := s.collections[name]
	if !ok {
		return 0, &store.NotFoundError{Collection: name}
	}
	var n int64
	for _, doc := range docs {
		if matches(doc, conditions, search) {
			n++
		}
	}
	return n, nil
}

// Find evaluates the request against the seeded documents: filter, search,
// sort, then skip/limit.
func (s *Store) Find(ctx context.Context, req store.FindRequest) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateConditions(req.Conditions); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[req.Collection]; err != nil {
		return nil, err
	}
	docs, ok := s.collections[req.Collection]
	if !ok {
		return nil, &store.NotFoundError{Collection: req.Collection}
	}

	var matched []store.Document
	for _, doc := range docs {
		if matches(doc, req.Conditions, req.Search) {
			matched = append(matched, doc)
		}
	}

	if len(req.Sort) > 0 {
		sortDocuments(matched, req.Sort)
	}

	if req.Skip >= int64(len(matched)) {
		return []store.Document{}, nil
	}
	matched = matched[req.Skip:]
	if req.Limit > 0 && req.Limit < int64(len(matched)) {
		matched = matched[:req.Limit]
	}

	out := make([]store.Document, len(matched))
	copy(out, matched)
	return out, nil
}

// ListIndexes returns seeded index metadata plus the implicit primary key
// index.
func (s *Store) ListIndexes(ctx context.Context, name string) ([]store.IndexInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures[name]; err != nil {
		return nil, err
	}
	if _, ok := s.collections[name]; !ok {
		return nil, &store.NotFoundError{Collection: name}
	}
	out := []store.IndexInfo{{Name: "_id_", Fields: []string{"_id"}, Unique: true}}
	out = append(out, s.indexes[name]...)
	return out, nil
}

// Ping reports injected connectivity failures.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pingErr
}

// Close marks the store closed.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func validateConditions(conditions []store.Condition) error {
	for _, cond := range conditions {
		if err := store.ValidateFieldName(cond.Field); err != nil {
			return err
		}
	}
	return nil
}

func matches(doc store.Document, conditions []store.Condition, search *store.SearchSpec) bool {
	for _, cond := range conditions {
		if !matchCondition(doc, cond) {
			return false
		}
	}
	if search != nil && search.Term != "" {
		if !matchSearch(doc, search) {
			return false
		}
	}
	return true
}

func matchSearch(doc store.Document, search *store.SearchSpec) bool {
	term := strings.ToLower(search.Term)
	for _, field := range search.Fields {
		if v, ok := doc[field]; ok {
			if s, isString := v.(string); isString && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
	}
	return false
}
