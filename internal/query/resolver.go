package query

import (
	"context"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/logger"
	"github.com/dbsmedya/mongolens/internal/registry"
	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/schema"
	"github.com/dbsmedya/mongolens/internal/store"
)

const fallbackResolverBatchSize = 100

// Resolver fetches the documents a relationship edge points at in batches,
// so consumers can join references without one lookup per source document.
type Resolver struct {
	store     store.Store
	reg       *registry.Registry
	log       *logger.Logger
	batchSize int
}

// NewResolver builds a Resolver. A nil QueryConfig falls back to the
// package default batch size.
func NewResolver(st store.Store, reg *registry.Registry, cfg *config.QueryConfig, log *logger.Logger) *Resolver {
	batch := fallbackResolverBatchSize
	if cfg != nil && cfg.ResolverBatchSize > 0 {
		batch = cfg.ResolverBatchSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{store: st, reg: reg, log: log, batchSize: batch}
}

// Resolve collects the reference values under the edge's source field
// across the given documents, de-duplicates them, and fetches the target
// documents with one IN query per batch. The result is keyed by the
// identifier rendered as a string (hex for ObjectIds), so callers can join
// each source value back to its target.
func (r *Resolver) Resolve(ctx context.Context, edge relation.Edge, docs []store.Document) (map[string]store.Document, error) {
	target, err := r.reg.Get(edge.Target)
	if err != nil {
		return nil, err
	}
	pk := target.Schema.PrimaryKey

	ids := collectIdentifiers(edge.SourceField, docs)
	resolved := make(map[string]store.Document, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}

	// Hex strings referencing an ObjectId primary key are coerced so the
	// store compares like with like.
	if f, ok := target.Schema.Field(pk); ok && f.Type == schema.TypeObjectID {
		for i, id := range ids {
			if s, ok := id.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(s); err == nil {
					ids[i] = oid
				}
			}
		}
	}

	for start := 0; start < len(ids); start += r.batchSize {
		end := start + r.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		found, err := r.store.Find(ctx, store.FindRequest{
			Collection: target.Name,
			Conditions: []store.Condition{{Field: pk, Op: store.OpIn, Value: batch}},
			Limit:      int64(len(batch)),
		})
		if err != nil {
			return nil, err
		}
		for _, doc := range found {
			resolved[IdentifierKey(doc[pk])] = doc
		}
	}

	r.log.Debugw("relationship resolved",
		"source", edge.Source,
		"field", edge.SourceField,
		"target", edge.Target,
		"identifiers", len(ids),
		"found", len(resolved),
	)
	return resolved, nil
}

// IdentifierKey renders a reference value as a lookup key: hex for
// ObjectIds, the raw string for strings.
func IdentifierKey(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprintf("%v", id)
	}
}

// collectIdentifiers gathers the distinct non-null reference values under
// the field, preserving first-seen order. Array values contribute their
// elements, scalars contribute themselves; the stored shape decides, not
// the edge kind, so forced overrides on either shape still resolve.
func collectIdentifiers(field string, docs []store.Document) []interface{} {
	var ids []interface{}
	seen := make(map[string]struct{})
	for _, doc := range docs {
		raw, ok := doc[field]
		if !ok {
			continue
		}
		for _, v := range referenceValues(raw) {
			if v == nil {
				continue
			}
			key := IdentifierKey(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			ids = append(ids, v)
		}
	}
	return ids
}

func referenceValues(raw interface{}) []interface{} {
	switch v := raw.(type) {
	case nil:
		return nil
	case bson.A:
		return []interface{}(v)
	case []interface{}:
		return v
	case primitive.ObjectID, string:
		return []interface{}{raw}
	default:
		rv := reflect.ValueOf(raw)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			out := make([]interface{}, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out[i] = rv.Index(i).Interface()
			}
			return out
		}
		return []interface{}{raw}
	}
}
