package registry

import (
	"fmt"
	"sort"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/schema"
)

// BuildEntry merges an inferred schema with user configuration into a
// publishable entry. Derived defaults follow the schema; explicit overrides
// win field-by-field. Overrides referencing unknown fields fail with
// ConfigurationConflictError instead of being dropped, so a typo in the
// config never silently disables a view. Relationship edges are attached
// separately once the cross-collection pass is complete.
func BuildEntry(name string, cs *schema.CollectionSchema, cfg config.CollectionConfig, minOccurrenceRate float64) (*Entry, error) {
	e := &Entry{
		Name:         name,
		DisplayName:  cfg.DisplayName,
		Schema:       cs,
		FieldLabels:  make(map[string]string),
		HiddenFields: make(map[string]struct{}),
	}
	if e.DisplayName == "" {
		e.DisplayName = displayName(name)
	}

	fieldNames := cs.FieldNames()
	overrideNames := make([]string, 0, len(cfg.Fields))
	for fname := range cfg.Fields {
		overrideNames = append(overrideNames, fname)
	}
	sort.Strings(overrideNames)

	for _, fname := range overrideNames {
		if _, ok := cs.Field(fname); !ok {
			return nil, &ConfigurationConflictError{
				Collection: name,
				Field:      fname,
				Reason:     fmt.Sprintf("field override references unknown field %q", fname),
				Suggestion: closestName(fname, fieldNames),
			}
		}
		fc := cfg.Fields[fname]
		if fc.Label != "" {
			e.FieldLabels[fname] = fc.Label
		}
		if fc.Hidden != nil && *fc.Hidden {
			e.HiddenFields[fname] = struct{}{}
		}
	}

	var err error
	if e.SearchFields, err = buildSearchFields(name, cs, cfg); err != nil {
		return nil, err
	}
	if e.SortableFields, err = buildSortableFields(name, cs, cfg); err != nil {
		return nil, err
	}
	if e.ListFields, err = buildListFields(name, cs, cfg, e.HiddenFields, minOccurrenceRate); err != nil {
		return nil, err
	}
	e.FilterHints = buildFilterHints(cs, e.HiddenFields)
	return e, nil
}

// buildSearchFields resolves the text-search field set. Explicit lists are
// taken as given after validation; otherwise the first String fields in
// discovery order form the default, adjusted by per-field flags. Search
// requires substring matching, so non-String fields are conflicts rather
// than silent no-ops.
func buildSearchFields(name string, cs *schema.CollectionSchema, cfg config.CollectionConfig) ([]string, error) {
	if cfg.SearchFields != nil {
		out := make([]string, 0, len(cfg.SearchFields))
		for _, fname := range cfg.SearchFields {
			f, ok := cs.Field(fname)
			if !ok {
				return nil, &ConfigurationConflictError{
					Collection: name,
					Field:      fname,
					Reason:     fmt.Sprintf("search_fields references unknown field %q", fname),
					Suggestion: closestName(fname, cs.FieldNames()),
				}
			}
			if f.Type != schema.TypeString {
				return nil, &ConfigurationConflictError{
					Collection: name,
					Field:      fname,
					Reason:     fmt.Sprintf("search_fields includes %q of type %s, only String fields are searchable", fname, f.Type),
				}
			}
			out = append(out, fname)
		}
		return out, nil
	}

	var out []string
	defaults := 0
	for el := cs.Fields.Front(); el != nil; el = el.Next() {
		f := el.Value
		if fc, ok := cfg.Fields[f.Name]; ok && fc.Searchable != nil {
			if !*fc.Searchable {
				continue
			}
			if f.Type != schema.TypeString {
				return nil, &ConfigurationConflictError{
					Collection: name,
					Field:      f.Name,
					Reason:     fmt.Sprintf("field %q of type %s cannot be marked searchable, only String fields are searchable", f.Name, f.Type),
				}
			}
			out = append(out, f.Name)
			continue
		}
		if f.Type == schema.TypeString && defaults < defaultSearchFieldLimit {
			out = append(out, f.Name)
			defaults++
		}
	}
	return out, nil
}

// buildSortableFields resolves the sortable field set. Defaults are gated
// by type; explicit configuration may mark any existing field sortable
// since the store orders every value form.
func buildSortableFields(name string, cs *schema.CollectionSchema, cfg config.CollectionConfig) ([]string, error) {
	if cfg.SortableFields != nil {
		out := make([]string, 0, len(cfg.SortableFields))
		for _, fname := range cfg.SortableFields {
			if _, ok := cs.Field(fname); !ok {
				return nil, &ConfigurationConflictError{
					Collection: name,
					Field:      fname,
					Reason:     fmt.Sprintf("sortable_fields references unknown field %q", fname),
					Suggestion: closestName(fname, cs.FieldNames()),
				}
			}
			out = append(out, fname)
		}
		return out, nil
	}

	var out []string
	for el := cs.Fields.Front(); el != nil; el = el.Next() {
		f := el.Value
		if fc, ok := cfg.Fields[f.Name]; ok && fc.Sortable != nil {
			if *fc.Sortable {
				out = append(out, f.Name)
			}
			continue
		}
		if f.Type.Sortable() {
			out = append(out, f.Name)
		}
	}
	return out, nil
}

// buildListFields resolves the table-view field set: an explicit list, or
// the first fields in discovery order that clear the occurrence-rate floor
// and are not hidden.
func buildListFields(name string, cs *schema.CollectionSchema, cfg config.CollectionConfig, hidden map[string]struct{}, minRate float64) ([]string, error) {
	if cfg.ListFields != nil {
		out := make([]string, 0, len(cfg.ListFields))
		for _, fname := range cfg.ListFields {
			if _, ok := cs.Field(fname); !ok {
				return nil, &ConfigurationConflictError{
					Collection: name,
					Field:      fname,
					Reason:     fmt.Sprintf("list_fields references unknown field %q", fname),
					Suggestion: closestName(fname, cs.FieldNames()),
				}
			}
			out = append(out, fname)
		}
		return out, nil
	}

	var out []string
	for el := cs.Fields.Front(); el != nil; el = el.Next() {
		f := el.Value
		if len(out) >= defaultListFieldLimit {
			break
		}
		if _, isHidden := hidden[f.Name]; isHidden {
			continue
		}
		if f.OccurrenceRate < minRate {
			continue
		}
		out = append(out, f.Name)
	}
	return out, nil
}

// buildFilterHints picks enum-like fields: String or Boolean values whose
// sampled cardinality fits a dropdown.
func buildFilterHints(cs *schema.CollectionSchema, hidden map[string]struct{}) []FilterHint {
	var hints []FilterHint
	for el := cs.Fields.Front(); el != nil; el = el.Next() {
		f := el.Value
		if _, isHidden := hidden[f.Name]; isHidden {
			continue
		}
		if f.Type != schema.TypeString && f.Type != schema.TypeBoolean {
			continue
		}
		if !f.LowCardinality() {
			continue
		}
		hints = append(hints, FilterHint{Field: f.Name, Values: f.SampleValues})
	}
	return hints
}

// MergeRelationships applies configured relationship overrides to the
// detected edges of one source collection. An override fully replaces the
// detector's output for its field: it can force an edge the detector
// missed, retarget or re-kind one, or suppress a false positive. Edges on
// fields untouched by overrides keep their detected values.
func MergeRelationships(source string, cs *schema.CollectionSchema, detected []relation.Edge, overrides []config.RelationshipConfig, collections []string) ([]relation.Edge, error) {
	known := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		known[c] = struct{}{}
	}

	overridden := make(map[string]struct{}, len(overrides))
	var out []relation.Edge
	for _, rc := range overrides {
		f, ok := cs.Field(rc.Field)
		if !ok {
			return nil, &ConfigurationConflictError{
				Collection: source,
				Field:      rc.Field,
				Reason:     fmt.Sprintf("relationship override references unknown field %q", rc.Field),
				Suggestion: closestName(rc.Field, cs.FieldNames()),
			}
		}
		overridden[rc.Field] = struct{}{}
		if rc.Suppress {
			continue
		}
		if _, ok := known[rc.Target]; !ok {
			return nil, &ConfigurationConflictError{
				Collection: source,
				Field:      rc.Field,
				Reason:     fmt.Sprintf("relationship override targets unknown collection %q", rc.Target),
				Suggestion: closestName(rc.Target, collections),
			}
		}
		kind := relation.ReferenceOne
		if rc.Kind != "" {
			parsed, err := relation.ParseKind(rc.Kind)
			if err != nil {
				return nil, &ConfigurationConflictError{
					Collection: source,
					Field:      rc.Field,
					Reason:     err.Error(),
				}
			}
			kind = parsed
		} else if f.Type == schema.TypeArray {
			kind = relation.ReferenceMany
		}
		out = append(out, relation.Edge{
			Source:      source,
			SourceField: rc.Field,
			Target:      rc.Target,
			Kind:        kind,
			Confidence:  relation.ConfidenceConfirmed,
		})
	}

	for _, e := range detected {
		if e.Source != source {
			continue
		}
		if _, ok := overridden[e.SourceField]; ok {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceField != out[j].SourceField {
			return out[i].SourceField < out[j].SourceField
		}
		return out[i].Target < out[j].Target
	})
	return out, nil
}
