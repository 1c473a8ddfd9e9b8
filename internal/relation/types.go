// Package relation detects and indexes reference edges between collections.
package relation

import (
	"encoding/json"
	"fmt"
)

// Confidence scores attached to detected edges. Confirmed edges carry both
// the naming and the identifier-type signal; suggested edges carry the type
// signal only and are emitted for downstream configuration to confirm or
// reject.
const (
	ConfidenceConfirmed = 1.0
	ConfidenceSuggested = 0.6
)

// Kind distinguishes single-valued references from reference arrays.
type Kind int

const (
	// ReferenceOne is a single-valued field holding one identifier of the
	// target collection's documents.
	ReferenceOne Kind = iota

	// ReferenceMany is an array-valued field holding many such identifiers.
	ReferenceMany
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if k == ReferenceMany {
		return "many"
	}
	return "one"
}

// ParseKind converts a configuration name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "one":
		return ReferenceOne, nil
	case "many":
		return ReferenceMany, nil
	default:
		return ReferenceOne, fmt.Errorf("unknown relationship kind %q", s)
	}
}

// MarshalJSON serializes the kind as its configuration name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a kind from its configuration name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Edge is a directed reference from a source collection field to a target
// collection. Edges are derived facts recomputed from scratch on every
// discovery pass; user configuration may override or suppress them but
// never feeds back into detection.
type Edge struct {
	Source      string  `json:"source"`
	SourceField string  `json:"source_field"`
	Target      string  `json:"target"`
	Kind        Kind    `json:"kind"`
	Confidence  float64 `json:"confidence"`
}

// Confirmed reports whether both detection signals agreed on this edge.
func (e Edge) Confirmed() bool {
	return e.Confidence >= ConfidenceConfirmed
}

// SelfReference reports whether the edge points back at its own collection.
func (e Edge) SelfReference() bool {
	return e.Source == e.Target
}

// String renders the edge for logs and error messages.
func (e Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s (%s, %.2f)", e.Source, e.SourceField, e.Target, e.Kind, e.Confidence)
}
