// Package schema infers field-level schemas from sampled documents.
package schema

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// DefaultPrimaryKey is the store's native identifier field.
const DefaultPrimaryKey = "_id"

// FieldType is the canonical tagged variant for an inferred field type.
// Heterogeneous observations collapse to Mixed rather than silently
// widening, so downstream consumers must handle Mixed explicitly.
type FieldType int

const (
	TypeNull FieldType = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeString
	TypeDate
	TypeObjectID
	TypeArray
	TypeEmbeddedDocument
	TypeMixed
)

// String returns the canonical type name.
func (t FieldType) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeString:
		return "String"
	case TypeDate:
		return "Date"
	case TypeObjectID:
		return "ObjectId"
	case TypeArray:
		return "Array"
	case TypeEmbeddedDocument:
		return "EmbeddedDocument"
	case TypeMixed:
		return "Mixed"
	default:
		return "Unknown"
	}
}

// ParseFieldType converts a canonical type name back to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	for t := TypeNull; t <= TypeMixed; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return TypeNull, fmt.Errorf("unknown field type %q", s)
}

// Sortable reports whether fields of this type participate in derived
// sortable-field defaults.
func (t FieldType) Sortable() bool {
	switch t {
	case TypeString, TypeInteger, TypeFloat, TypeDate:
		return true
	}
	return false
}

// RangeComparable reports whether range operators apply to this type.
func (t FieldType) RangeComparable() bool {
	switch t {
	case TypeInteger, TypeFloat, TypeDate:
		return true
	}
	return false
}

// FieldSchema describes one field of one collection.
type FieldSchema struct {
	Name string

	// Type is the dominant observed type, or Mixed when no single type
	// reaches the dominance threshold among non-null observations.
	Type FieldType

	// ElementType is set for Array fields: the dominant type of the
	// flattened elements across all sampled arrays. Null when no elements
	// were observed.
	ElementType FieldType

	// OccurrenceRate is the fraction of sampled documents containing the
	// field, computed over the sample size actually used.
	OccurrenceRate float64

	// Nullable is true when any sampled occurrence was null or the field
	// was absent from some sampled documents.
	Nullable bool

	// SampleValues holds the first observed non-null values, capped, for
	// UI hinting.
	SampleValues []interface{}

	// DistinctCount is the number of distinct non-null values seen in the
	// sample (tracking capped), for enum/filter hinting.
	DistinctCount int
}

// IsIdentifier reports whether the field holds identifier values, directly
// or as array elements. Only identifier-typed fields are relationship
// candidates.
func (f *FieldSchema) IsIdentifier() bool {
	if f.Type == TypeObjectID {
		return true
	}
	return f.Type == TypeArray && f.ElementType == TypeObjectID
}

// LowCardinality reports whether the sample suggests an enum-like value set.
func (f *FieldSchema) LowCardinality() bool {
	return f.DistinctCount > 0 && f.DistinctCount <= 10
}

// CollectionSchema owns the ordered-by-discovery field map for one
// collection. Created empty, populated once per discovery pass, and
// replaced wholesale on refresh.
type CollectionSchema struct {
	Name string

	// Fields maps field name to schema in discovery order.
	Fields *orderedmap.OrderedMap[string, *FieldSchema]

	// DocumentCount is the approximate collection size from store metadata,
	// not authoritative.
	DocumentCount int64

	// SampleSize is the number of documents actually inspected.
	SampleSize int

	// PrimaryKey is the store's native identifier field.
	PrimaryKey string
}

// NewCollectionSchema returns an empty schema for a collection.
func NewCollectionSchema(name string) *CollectionSchema {
	return &CollectionSchema{
		Name:       name,
		Fields:     orderedmap.NewOrderedMap[string, *FieldSchema](),
		PrimaryKey: DefaultPrimaryKey,
	}
}

// Field returns the schema for one field.
func (s *CollectionSchema) Field(name string) (*FieldSchema, bool) {
	return s.Fields.Get(name)
}

// FieldNames returns all field names in discovery order.
func (s *CollectionSchema) FieldNames() []string {
	return s.Fields.Keys()
}

// Len returns the number of discovered fields.
func (s *CollectionSchema) Len() int {
	return s.Fields.Len()
}
