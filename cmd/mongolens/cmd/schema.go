package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mongolens/internal/registry"
	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/schema"
	"github.com/dbsmedya/mongolens/internal/store"
)

var schemaFormat string

var schemaCmd = &cobra.Command{
	Use:   "schema <collection>",
	Short: "Show the inferred schema of a collection",
	Long: `Schema displays the inferred field schema of one collection: field
types, occurrence rates, nullability, array element types and sampled
example values, together with the derived view configuration and the
collection's indexes.

The registry is restored from the snapshot cache when available; otherwise
a discovery pass runs first.

Example:
  mongolens schema orders --config mongolens.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaFormat, "format", formatTable,
		"Output format (table, json)")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	if err := validateFormat(schemaFormat, formatTable, formatJSON); err != nil {
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

	name := args[0]
	entry, err := app.reg.Get(name)
	if err != nil {
		return err
	}

	indexes, idxErr := app.store.ListIndexes(ctx, name)
	if idxErr != nil {
		app.log.Warnw("index listing failed", "collection", name, "error", idxErr)
	}

	out := cmd.OutOrStdout()
	if schemaFormat == formatJSON {
		return printJSON(out, schemaOutput(entry, indexes))
	}

	fmt.Fprintf(out, "%s\n", heading(fmt.Sprintf("Collection: %s", entry.Name)))
	fmt.Fprintf(out, "Display name:   %s\n", entry.DisplayName)
	fmt.Fprintf(out, "Documents:      ~%d\n", entry.Schema.DocumentCount)
	fmt.Fprintf(out, "Sample size:    %d\n", entry.Schema.SampleSize)
	fmt.Fprintf(out, "Primary key:    %s\n\n", entry.Schema.PrimaryKey)

	rows := make([][]string, 0, entry.Schema.Len())
	for el := entry.Schema.Fields.Front(); el != nil; el = el.Next() {
		f := el.Value
		elementType := ""
		if f.Type == schema.TypeArray {
			elementType = f.ElementType.String()
		}
		rows = append(rows, []string{
			f.Name,
			f.Type.String(),
			elementType,
			fmt.Sprintf("%.0f%%", f.OccurrenceRate*100),
			fmt.Sprintf("%v", f.Nullable),
			formatValues(f.SampleValues, sampleValueWidth),
		})
	}
	renderTable(out, []string{"Field", "Type", "Element", "Occurrence", "Nullable", "Samples"}, rows)

	fmt.Fprintf(out, "\n%s\n", heading("View Configuration"))
	fmt.Fprintf(out, "List fields:     %s\n", strings.Join(entry.ListFields, ", "))
	fmt.Fprintf(out, "Search fields:   %s\n", strings.Join(entry.SearchFields, ", "))
	fmt.Fprintf(out, "Sortable fields: %s\n", strings.Join(entry.SortableFields, ", "))
	for _, hint := range entry.FilterHints {
		fmt.Fprintf(out, "Filter hint:     %s (%s)\n",
			hint.Field, formatValues(hint.Values, sampleValueWidth))
	}

	if len(entry.Outgoing)+len(entry.Incoming) > 0 {
		fmt.Fprintf(out, "\n%s\n", heading("Relationships"))
		for _, e := range entry.Outgoing {
			fmt.Fprintf(out, "-> %s\n", e)
		}
		for _, e := range entry.Incoming {
			fmt.Fprintf(out, "<- %s\n", e)
		}
	}

	if len(indexes) > 0 {
		fmt.Fprintf(out, "\n%s\n", heading("Indexes"))
		for _, idx := range indexes {
			unique := ""
			if idx.Unique {
				unique = " (unique)"
			}
			fmt.Fprintf(out, "%s: %s%s\n", idx.Name, strings.Join(idx.Fields, ", "), unique)
		}
	}
	return nil
}

// schemaOutput is the JSON shape of the schema command; the registry entry
// itself carries no JSON tags because it is an in-process view.
func schemaOutput(entry *registry.Entry, indexes []store.IndexInfo) interface{} {
	type indexOut struct {
		Name   string   `json:"name"`
		Fields []string `json:"fields"`
		Unique bool     `json:"unique"`
	}
	idx := make([]indexOut, 0, len(indexes))
	for _, i := range indexes {
		idx = append(idx, indexOut{Name: i.Name, Fields: i.Fields, Unique: i.Unique})
	}
	return struct {
		Name           string                   `json:"name"`
		DisplayName    string                   `json:"display_name"`
		Schema         *schema.CollectionSchema `json:"schema"`
		ListFields     []string                 `json:"list_fields"`
		SearchFields   []string                 `json:"search_fields"`
		SortableFields []string                 `json:"sortable_fields"`
		FilterHints    []registry.FilterHint    `json:"filter_hints,omitempty"`
		Outgoing       []relation.Edge          `json:"outgoing,omitempty"`
		Incoming       []relation.Edge          `json:"incoming,omitempty"`
		Indexes        []indexOut               `json:"indexes,omitempty"`
	}{
		Name:           entry.Name,
		DisplayName:    entry.DisplayName,
		Schema:         entry.Schema,
		ListFields:     entry.ListFields,
		SearchFields:   entry.SearchFields,
		SortableFields: entry.SortableFields,
		FilterHints:    entry.FilterHints,
		Outgoing:       entry.Outgoing,
		Incoming:       entry.Incoming,
		Indexes:        idx,
	}
}
