package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/store"
)

var (
	relationshipsFormat        string
	relationshipsMinConfidence float64
)

var relationshipsCmd = &cobra.Command{
	Use:   "relationships",
	Short: "Show detected relationship edges",
	Long: `Relationships lists every relationship edge across the registry with
its kind and confidence. Confirmed edges (both the naming convention and the
identifier type agreed) score 1.0; identifier-typed fields without the
naming convention are emitted as 0.6 suggestions.

The mermaid format renders the edges as an entity-relationship diagram.

Example:
  mongolens relationships --min-confidence 0.8 --format mermaid`,
	RunE: runRelationships,
}

func init() {
	relationshipsCmd.Flags().StringVar(&relationshipsFormat, "format", formatTable,
		"Output format (table, mermaid, json)")
	relationshipsCmd.Flags().Float64Var(&relationshipsMinConfidence, "min-confidence", 0,
		"Hide edges below this confidence")
	rootCmd.AddCommand(relationshipsCmd)
}

func runRelationships(cmd *cobra.Command, args []string) error {
	if err := validateFormat(relationshipsFormat, formatTable, formatMermaid, formatJSON); err != nil {
		return err
	}

	ctx := store.SetupSignalHandler()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if _, err := app.ensureRegistry(ctx); err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	var edges []relation.Edge
	for _, entry := range app.reg.List() {
		for _, e := range entry.Outgoing {
			if e.Confidence >= relationshipsMinConfidence {
				edges = append(edges, e)
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.SourceField != b.SourceField {
			return a.SourceField < b.SourceField
		}
		return a.Target < b.Target
	})

	out := cmd.OutOrStdout()
	switch relationshipsFormat {
	case formatJSON:
		return printJSON(out, edges)
	case formatMermaid:
		fmt.Fprint(out, relation.Mermaid(app.reg.Schemas(), edges))
		return nil
	}

	if len(edges) == 0 {
		fmt.Fprintln(out, "No relationships detected")
		return nil
	}

	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		mark := okMark()
		if !e.Confirmed() {
			mark = "?"
		}
		rows = append(rows, []string{
			e.Source,
			e.SourceField,
			e.Target,
			e.Kind.String(),
			fmt.Sprintf("%.2f", e.Confidence),
			mark,
		})
	}
	renderTable(out, []string{"Source", "Field", "Target", "Kind", "Confidence", ""}, rows)
	fmt.Fprintf(out, "\nTotal: %d edge(s)\n", len(edges))
	return nil
}
