package relation

import (
	"sort"
	"strings"

	"github.com/dbsmedya/mongolens/internal/schema"
)

// Detect derives reference edges from the full set of collection schemas.
// Deterministic for the same input: collections are walked in sorted name
// order and the result is sorted, so repeated discovery passes over an
// unchanged sample produce identical output.
//
// A field becomes an edge only when its inferred type (or array element
// type) is the store's identifier type. String or numeric fields never
// qualify, however suggestive their names, to keep false positives from
// unrelated codes out of the graph. Identifier fields with a recognizable
// reference name whose noun resolves to an existing collection are
// confirmed at full confidence; identifier fields without a recognizable
// name fall back to matching the bare field name against collection names
// and are emitted as lower-confidence suggestions.
func Detect(schemas map[string]*schema.CollectionSchema) []Edge {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	byLower := make(map[string]string, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := byLower[key]; !ok {
			byLower[key] = name
		}
	}

	var edges []Edge
	for _, source := range names {
		cs := schemas[source]
		for el := cs.Fields.Front(); el != nil; el = el.Next() {
			field := el.Value
			if field.Name == cs.PrimaryKey || !field.IsIdentifier() {
				continue
			}
			kind := ReferenceOne
			if field.Type == schema.TypeArray {
				kind = ReferenceMany
			}

			if stem, ok := referenceStem(field.Name); ok {
				if target, found := byLower[Pluralize(stem)]; found {
					edges = append(edges, Edge{
						Source:      source,
						SourceField: field.Name,
						Target:      target,
						Kind:        kind,
						Confidence:  ConfidenceConfirmed,
					})
				}
				continue
			}

			lower := strings.ToLower(field.Name)
			target, found := byLower[Pluralize(lower)]
			if !found {
				target, found = byLower[lower]
			}
			if found {
				edges = append(edges, Edge{
					Source:      source,
					SourceField: field.Name,
					Target:      target,
					Kind:        kind,
					Confidence:  ConfidenceSuggested,
				})
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].SourceField != edges[j].SourceField {
			return edges[i].SourceField < edges[j].SourceField
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}

// referenceStem extracts the target noun from a reference-style field name.
// Recognized suffixes are the snake forms _id/_ids in any case and the
// camel forms Id/Ids/ID/IDs. The camel forms require the uppercase letter
// so plain words like "valid" or "grid" do not match.
func referenceStem(field string) (string, bool) {
	lower := strings.ToLower(field)
	var stem string
	switch {
	case strings.HasSuffix(lower, "_ids"):
		stem = field[:len(field)-4]
	case strings.HasSuffix(lower, "_id"):
		stem = field[:len(field)-3]
	case strings.HasSuffix(field, "IDs"), strings.HasSuffix(field, "Ids"):
		stem = field[:len(field)-3]
	case strings.HasSuffix(field, "ID"), strings.HasSuffix(field, "Id"):
		stem = field[:len(field)-2]
	default:
		return "", false
	}
	stem = strings.TrimRight(strings.ToLower(stem), "_")
	if stem == "" {
		return "", false
	}
	return stem, true
}
