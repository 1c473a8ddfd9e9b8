// Package query validates and executes filter/sort/search/paginate requests
// against the document store, using the published registry entry of the
// target collection. Invalid input is always surfaced as an error, never
// silently dropped.
package query

import (
	"context"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/logger"
	"github.com/dbsmedya/mongolens/internal/registry"
	"github.com/dbsmedya/mongolens/internal/schema"
	"github.com/dbsmedya/mongolens/internal/store"
)

const (
	fallbackPageSize    = 20
	fallbackMaxPageSize = 100
)

// Request describes one query against a registered collection.
type Request struct {
	Collection string
	Filters    []store.Condition
	Sort       []store.SortField
	Search     string
	Page       int
	PageSize   int

	// ExactCount forces a real count even when the request is unfiltered
	// and a metadata estimate would do.
	ExactCount bool
}

// Result is one page of documents plus pagination metadata.
type Result struct {
	Items           []store.Document `json:"items"`
	TotalCount      int64            `json:"total_count"`
	TotalIsEstimate bool             `json:"total_is_estimate"`
	Page            int              `json:"page"`
	PageSize        int              `json:"page_size"`
	TotalPages      int64            `json:"total_pages"`
	HasNext         bool             `json:"has_next"`
	HasPrev         bool             `json:"has_prev"`
}

// Engine executes validated queries.
type Engine struct {
	store           store.Store
	reg             *registry.Registry
	log             *logger.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewEngine builds an Engine. A nil QueryConfig falls back to the package
// defaults; a nil logger falls back to a no-op logger.
func NewEngine(st store.Store, reg *registry.Registry, cfg *config.QueryConfig, log *logger.Logger) *Engine {
	defaultSize := fallbackPageSize
	maxSize := fallbackMaxPageSize
	if cfg != nil {
		if cfg.DefaultPageSize > 0 {
			defaultSize = cfg.DefaultPageSize
		}
		if cfg.MaxPageSize > 0 {
			maxSize = cfg.MaxPageSize
		}
	}
	if defaultSize > maxSize {
		defaultSize = maxSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		store:           st,
		reg:             reg,
		log:             log,
		defaultPageSize: defaultSize,
		maxPageSize:     maxSize,
	}
}

// Query validates the request against the collection's registry entry and
// executes it. Filters are ANDed; search is a case-insensitive substring
// match ORed across the configured search fields; pagination is offset
// based and a page past the end returns an empty (not failed) result.
func (e *Engine) Query(ctx context.Context, req Request) (*Result, error) {
	entry, err := e.reg.Get(req.Collection)
	if err != nil {
		return nil, err
	}

	page, size := e.normalizePage(req.Page, req.PageSize)

	conditions, err := buildConditions(entry, req.Filters)
	if err != nil {
		return nil, err
	}
	search, err := buildSearch(entry, req.Search)
	if err != nil {
		return nil, err
	}
	sortSpec, err := buildSort(entry, req.Sort)
	if err != nil {
		return nil, err
	}

	docs, err := e.store.Find(ctx, store.FindRequest{
		Collection: entry.Name,
		Conditions: conditions,
		Search:     search,
		Sort:       sortSpec,
		Skip:       int64(page-1) * int64(size),
		Limit:      int64(size),
	})
	if err != nil {
		return nil, err
	}

	total, estimated, err := e.count(ctx, entry.Name, conditions, search, req.ExactCount)
	if err != nil {
		return nil, err
	}

	pages := totalPages(total, size)
	e.log.Debugw("query executed",
		"collection", entry.Name,
		"page", page,
		"page_size", size,
		"returned", len(docs),
		"total", total,
		"estimated", estimated,
	)

	return &Result{
		Items:           docs,
		TotalCount:      total,
		TotalIsEstimate: estimated,
		Page:            page,
		PageSize:        size,
		TotalPages:      pages,
		HasNext:         int64(page) < pages,
		HasPrev:         page > 1,
	}, nil
}

// Get fetches a single document by its primary key value. A string id is
// coerced to ObjectId when the primary key field holds ObjectIds. A missing
// document returns (nil, nil); missing collections still error.
func (e *Engine) Get(ctx context.Context, collection string, id interface{}) (store.Document, error) {
	entry, err := e.reg.Get(collection)
	if err != nil {
		return nil, err
	}
	pk := entry.Schema.PrimaryKey
	if f, ok := entry.Schema.Field(pk); ok {
		coerced, err := coerceValue(entry, f, store.OpEqual, id)
		if err != nil {
			return nil, err
		}
		id = coerced
	}
	docs, err := e.store.Find(ctx, store.FindRequest{
		Collection: entry.Name,
		Conditions: []store.Condition{{Field: pk, Op: store.OpEqual, Value: id}},
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (e *Engine) normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = e.defaultPageSize
	}
	if size > e.maxPageSize {
		size = e.maxPageSize
	}
	return page, size
}

// count picks the cheapest counting strategy that is still honest: filtered
// or searched requests need a real count, unfiltered ones may use the store
// metadata estimate unless the caller insisted on exactness.
func (e *Engine) count(ctx context.Context, name string, conditions []store.Condition, search *store.SearchSpec, exact bool) (int64, bool, error) {
	if len(conditions) > 0 || search != nil || exact {
		n, err := e.store.Count(ctx, name, conditions, search)
		return n, false, err
	}
	n, err := e.store.EstimatedCount(ctx, name)
	return n, true, err
}

func totalPages(total int64, size int) int64 {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}

// buildConditions validates each filter against the schema and coerces its
// operand to the field's inferred type.
func buildConditions(entry *registry.Entry, filters []store.Condition) ([]store.Condition, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	out := make([]store.Condition, 0, len(filters))
	for _, c := range filters {
		f, ok := entry.Schema.Field(c.Field)
		if !ok {
			return nil, &InvalidFieldError{
				Collection: entry.Name,
				Field:      c.Field,
				Reason:     "field not present in the inferred schema",
			}
		}
		value, err := coerceOperand(entry, f, c.Op, c.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Condition{Field: c.Field, Op: c.Op, Value: value})
	}
	return out, nil
}

func buildSearch(entry *registry.Entry, term string) (*store.SearchSpec, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if len(entry.SearchFields) == 0 {
		return nil, &InvalidFieldError{
			Collection: entry.Name,
			Reason:     "collection has no searchable fields configured",
		}
	}
	fields := make([]string, len(entry.SearchFields))
	copy(fields, entry.SearchFields)
	return &store.SearchSpec{Term: term, Fields: fields}, nil
}

func buildSort(entry *registry.Entry, sorts []store.SortField) ([]store.SortField, error) {
	if len(sorts) == 0 {
		return nil, nil
	}
	out := make([]store.SortField, 0, len(sorts))
	for _, s := range sorts {
		if _, ok := entry.Schema.Field(s.Field); !ok {
			return nil, &InvalidFieldError{
				Collection: entry.Name,
				Field:      s.Field,
				Reason:     "field not present in the inferred schema",
			}
		}
		if !entry.Sortable(s.Field) {
			return nil, &InvalidFieldError{
				Collection: entry.Name,
				Field:      s.Field,
				Reason:     "field is not sortable",
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// coerceOperand enforces the operator constraints for the field's type and
// converts the operand into the representation the store compares against.
func coerceOperand(entry *registry.Entry, f *schema.FieldSchema, op store.Op, value interface{}) (interface{}, error) {
	if op.IsRange() && !f.Type.RangeComparable() {
		return nil, &TypeMismatchError{
			Collection: entry.Name,
			Field:      f.Name,
			FieldType:  f.Type,
			Op:         op,
			Value:      value,
			Reason:     "range operators require an Integer, Float or Date field",
		}
	}

	switch op {
	case store.OpExists:
		want, ok := value.(bool)
		if !ok {
			return nil, &TypeMismatchError{
				Collection: entry.Name,
				Field:      f.Name,
				FieldType:  f.Type,
				Op:         op,
				Value:      value,
				Reason:     "exists takes a boolean operand",
			}
		}
		return want, nil

	case store.OpIn, store.OpNotIn:
		items, ok := listOperand(value)
		if !ok {
			return nil, &TypeMismatchError{
				Collection: entry.Name,
				Field:      f.Name,
				FieldType:  f.Type,
				Op:         op,
				Value:      value,
				Reason:     "set membership takes a slice operand",
			}
		}
		coerced := make([]interface{}, 0, len(items))
		for _, item := range items {
			cv, err := coerceValue(entry, f, op, item)
			if err != nil {
				return nil, err
			}
			coerced = append(coerced, cv)
		}
		return coerced, nil

	default:
		if value == nil && op.IsRange() {
			return nil, &TypeMismatchError{
				Collection: entry.Name,
				Field:      f.Name,
				FieldType:  f.Type,
				Op:         op,
				Reason:     "cannot order against a null operand",
			}
		}
		return coerceValue(entry, f, op, value)
	}
}

// coerceValue converts one scalar operand to the field's inferred type.
// Array fields compare against their element type. Null operands are legal
// for equality and membership (they match missing or null values).
func coerceValue(entry *registry.Entry, f *schema.FieldSchema, op store.Op, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	target := f.Type
	if target == schema.TypeArray {
		target = f.ElementType
	}

	mismatch := func(reason string) error {
		return &TypeMismatchError{
			Collection: entry.Name,
			Field:      f.Name,
			FieldType:  f.Type,
			Op:         op,
			Value:      value,
			Reason:     reason,
		}
	}

	switch target {
	case schema.TypeObjectID:
		switch v := value.(type) {
		case primitive.ObjectID:
			return v, nil
		case string:
			oid, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				return nil, mismatch("operand is not a valid ObjectId hex string")
			}
			return oid, nil
		default:
			return nil, mismatch("operand must be an ObjectId or its hex string")
		}

	case schema.TypeInteger:
		n, err := schema.ToInt64(value)
		if err != nil {
			return nil, mismatch("operand is not an integer")
		}
		return n, nil

	case schema.TypeFloat:
		fv, err := schema.ToFloat64(value)
		if err != nil {
			return nil, mismatch("operand is not a number")
		}
		return fv, nil

	case schema.TypeDate:
		t, err := schema.ToTime(value)
		if err != nil {
			return nil, mismatch("operand is not a date")
		}
		return t, nil

	case schema.TypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, mismatch("operand is not a boolean")
			}
			return b, nil
		default:
			return nil, mismatch("operand is not a boolean")
		}

	case schema.TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, mismatch("operand must be a string")
		}
		return s, nil

	default:
		// Null, Mixed, EmbeddedDocument and nested arrays carry the operand
		// through untouched; the store compares whatever was stored.
		return value, nil
	}
}

// listOperand flattens a slice operand of any element type.
func listOperand(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case bson.A:
		return []interface{}(v), true
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []int64:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(v))
		for i, fv := range v {
			out[i] = fv
		}
		return out, true
	case nil:
		return nil, false
	default:
		return nil, false
	}
}
