package relation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbsmedya/mongolens/internal/schema"
)

// Mermaid renders collections and their edges as a Mermaid ER diagram.
// Confirmed edges render solid, lower-confidence suggestions dotted, so a
// reader can tell derived facts from guesses at a glance.
func Mermaid(schemas map[string]*schema.CollectionSchema, edges []Edge) string {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cs := schemas[name]
		sb.WriteString(fmt.Sprintf("    %s {\n", mermaidIdent(name)))
		for el := cs.Fields.Front(); el != nil; el = el.Next() {
			f := el.Value
			pk := ""
			if f.Name == cs.PrimaryKey {
				pk = " PK"
			}
			sb.WriteString(fmt.Sprintf("        %s %s%s\n", f.Type, mermaidIdent(f.Name), pk))
		}
		sb.WriteString("    }\n")
	}

	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range edges {
		connector := "||--o{"
		if e.Kind == ReferenceMany {
			connector = "}o--o{"
		}
		if !e.Confirmed() {
			if e.Kind == ReferenceMany {
				connector = "}o..o{"
			} else {
				connector = "||..o{"
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s : %s\n",
			mermaidIdent(e.Target), connector, mermaidIdent(e.Source), mermaidIdent(e.SourceField)))
	}
	return sb.String()
}

// mermaidIdent rewrites characters Mermaid identifiers cannot carry.
func mermaidIdent(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
