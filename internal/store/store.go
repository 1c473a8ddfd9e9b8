// Package store defines the document store driver contract for MongoLens.
// The engine is agnostic to the wire protocol of the store as long as the
// operations below exist; drivers live in subpackages.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Document is one schemaless record: a mapping from field name to value.
type Document map[string]interface{}

// Op identifies a filter predicate operator.
type Op int

const (
	OpEqual Op = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpIn
	OpNotIn
	OpExists
)

// String returns the short operator name used in CLI filters and errors.
func (op Op) String() string {
	switch op {
	case OpEqual:
		return "eq"
	case OpNotEqual:
		return "ne"
	case OpGreaterThan:
		return "gt"
	case OpGreaterThanOrEqual:
		return "gte"
	case OpLessThan:
		return "lt"
	case OpLessThanOrEqual:
		return "lte"
	case OpIn:
		return "in"
	case OpNotIn:
		return "nin"
	case OpExists:
		return "exists"
	default:
		return "unknown"
	}
}

// IsRange reports whether the operator compares ordered values.
func (op Op) IsRange() bool {
	switch op {
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return true
	}
	return false
}

// ParseOp converts a short operator name to an Op.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "eq", "":
		return OpEqual, nil
	case "ne":
		return OpNotEqual, nil
	case "gt":
		return OpGreaterThan, nil
	case "gte":
		return OpGreaterThanOrEqual, nil
	case "lt":
		return OpLessThan, nil
	case "lte":
		return OpLessThanOrEqual, nil
	case "in":
		return OpIn, nil
	case "nin":
		return OpNotIn, nil
	case "exists":
		return OpExists, nil
	default:
		return OpEqual, fmt.Errorf("unknown operator %q", s)
	}
}

// Condition is one per-field predicate. Conditions within a request are
// combined with AND.
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

// SortField is one (field, direction) pair of an ordered sort specification.
type SortField struct {
	Field      string
	Descending bool
}

// SearchSpec is a case-insensitive substring search across the given fields,
// combined with OR across fields and AND with the request's conditions.
type SearchSpec struct {
	Term   string
	Fields []string
}

// FindRequest describes one filter/sort/paginate query against a collection.
type FindRequest struct {
	Collection string
	Conditions []Condition
	Search     *SearchSpec
	Sort       []SortField
	Skip       int64
	Limit      int64
}

// IndexInfo describes one index on a collection.
type IndexInfo struct {
	Name   string
	Fields []string
	Unique bool
}

// Store is the document store driver contract. Every operation takes a
// context and is bounded by the driver's configured timeout; exceeding it
// fails with TimeoutError.
type Store interface {
	// ListCollections returns the names of all collections in the database.
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionExists reports whether a collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Sample returns up to size documents drawn randomly from a collection.
	// Collections holding fewer documents return everything.
	Sample(ctx context.Context, name string, size int) ([]Document, error)

	// EstimatedCount returns the approximate document count from store
	// metadata. Fast but not authoritative.
	EstimatedCount(ctx context.Context, name string) (int64, error)

	// Count returns the exact number of documents matching the conditions
	// and search.
	Count(ctx context.Context, name string, conditions []Condition, search *SearchSpec) (int64, error)

	// Find executes a filter/sort/paginate query.
	Find(ctx context.Context, req FindRequest) ([]Document, error)

	// ListIndexes returns index metadata for a collection.
	ListIndexes(ctx context.Context, name string) ([]IndexInfo, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close(ctx context.Context) error
}

// ValidateFieldName rejects field names that could be interpreted as store
// operators or paths. Drivers call this before building conditions.
func ValidateFieldName(name string) error {
	if name == "" {
		return fmt.Errorf("field name is empty")
	}
	if strings.HasPrefix(name, "$") {
		return fmt.Errorf("field name %q must not start with '$'", name)
	}
	if strings.Contains(name, ".") {
		return fmt.Errorf("field name %q must not contain '.'", name)
	}
	return nil
}
