// Package registry owns the published view of discovered collections:
// inferred schemas merged with user configuration and the relationship
// edges touching each collection. Entries are built completely before
// publication and swapped wholesale, never mutated in place.
package registry

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/schema"
)

const (
	// defaultSearchFieldLimit caps how many String fields the derived
	// search configuration picks up.
	defaultSearchFieldLimit = 5

	// defaultListFieldLimit caps how many fields the derived list view
	// shows.
	defaultListFieldLimit = 10
)

// Entry is the externally visible description of one collection. Callers
// receive entries from the registry and must treat them as read-only; all
// changes go through a rebuild-and-publish cycle.
type Entry struct {
	Name        string
	DisplayName string
	Schema      *schema.CollectionSchema

	// ListFields are the fields a table view shows, in order.
	ListFields []string

	// SearchFields take part in full-text search. Always String-typed.
	SearchFields []string

	// SortableFields may appear in sort specifications.
	SortableFields []string

	// FieldLabels maps field names to configured display labels.
	FieldLabels map[string]string

	// HiddenFields are excluded from list views regardless of defaults.
	HiddenFields map[string]struct{}

	// FilterHints suggest enum-like fields whose observed values fit a
	// dropdown.
	FilterHints []FilterHint

	// Outgoing and Incoming are the relationship edges touching this
	// collection after overrides.
	Outgoing []relation.Edge
	Incoming []relation.Edge
}

// FilterHint marks a low-cardinality field and the example values seen in
// the sample.
type FilterHint struct {
	Field  string        `json:"field"`
	Values []interface{} `json:"values"`
}

// FieldType returns the inferred type of a field.
func (e *Entry) FieldType(name string) (schema.FieldType, bool) {
	f, ok := e.Schema.Field(name)
	if !ok {
		return schema.TypeNull, false
	}
	return f.Type, true
}

// Searchable reports whether the field participates in text search.
func (e *Entry) Searchable(field string) bool {
	return containsString(e.SearchFields, field)
}

// Sortable reports whether the field may appear in a sort specification.
func (e *Entry) Sortable(field string) bool {
	return containsString(e.SortableFields, field)
}

// Hidden reports whether the field is excluded from list views.
func (e *Entry) Hidden(field string) bool {
	_, ok := e.HiddenFields[field]
	return ok
}

// Label returns the configured display label, falling back to the field
// name.
func (e *Entry) Label(field string) string {
	if label, ok := e.FieldLabels[field]; ok {
		return label
	}
	return field
}

// Relationship returns the outgoing edge rooted at the given field, if any.
func (e *Entry) Relationship(field string) (relation.Edge, bool) {
	for _, edge := range e.Outgoing {
		if edge.SourceField == field {
			return edge, true
		}
	}
	return relation.Edge{}, false
}

var displayTitler = cases.Title(language.English)

// displayName derives a human-readable name from a collection name:
// underscores become spaces and words are title-cased.
func displayName(collection string) string {
	return displayTitler.String(strings.ReplaceAll(collection, "_", " "))
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
