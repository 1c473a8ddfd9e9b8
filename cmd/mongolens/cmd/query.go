package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mongolens/internal/query"
	"github.com/dbsmedya/mongolens/internal/store"
)

var (
	queryFilters    []string
	querySearch     string
	querySort       string
	queryPage       int
	queryPageSize   int
	queryExactCount bool
	queryResolve    string
	queryFormat     string
)

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Run a validated query against a collection",
	Long: `Query validates a filter/sort/search request against the collection's
inferred schema and executes it with offset pagination.

Filters are ANDed and written as field=value or field__op=value, where op is
one of eq, ne, gt, gte, lt, lte, in, nin, exists. Operands for in and nin
are comma-separated lists; exists takes true or false. Operand types are
checked against the inferred field types before anything reaches the store.

Sort is a comma-separated field list; prefix a field with - for descending.
--resolve batch-fetches the documents referenced by a relationship field of
the result page.

Examples:
  mongolens query orders --filter status=active --sort -created_at --page 1
  mongolens query orders --filter total__gte=100 --resolve user_id
  mongolens query users --search alice --page-size 10 --exact-count`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil,
		"Filter predicate field=value or field__op=value (repeatable)")
	queryCmd.Flags().StringVarP(&querySearch, "search", "s", "",
		"Search term matched against the configured search fields")
	queryCmd.Flags().StringVar(&querySort, "sort", "",
		"Comma-separated sort fields, -field for descending")
	queryCmd.Flags().IntVar(&queryPage, "page", 1, "Page number (1-based)")
	queryCmd.Flags().IntVar(&queryPageSize, "page-size", 0,
		"Documents per page (0 uses the configured default)")
	queryCmd.Flags().BoolVar(&queryExactCount, "exact-count", false,
		"Force an exact total count instead of a metadata estimate")
	queryCmd.Flags().StringVar(&queryResolve, "resolve", "",
		"Resolve the referenced documents of a relationship field")
	queryCmd.Flags().StringVar(&queryFormat, "format", formatTable,
		"Output format (table, json)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := validateFormat(queryFormat, formatTable, formatJSON); err != nil {
		return err
	}

	filters, err := parseFilters(queryFilters)
	if err != nil {
		return err
	}
	sorts := parseSort(querySort)

	ctx := store.SetupSignalHandler()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if _, err := app.ensureRegistry(ctx); err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	collection := args[0]
	engine := query.NewEngine(app.store, app.reg, &app.cfg.Query, app.log)
	result, err := engine.Query(ctx, query.Request{
		Collection: collection,
		Filters:    filters,
		Sort:       sorts,
		Search:     querySearch,
		Page:       queryPage,
		PageSize:   queryPageSize,
		ExactCount: queryExactCount,
	})
	if err != nil {
		return err
	}

	var resolved map[string]store.Document
	var resolveTarget string
	if queryResolve != "" {
		entry, err := app.reg.Get(collection)
		if err != nil {
			return err
		}
		edge, ok := entry.Relationship(queryResolve)
		if !ok {
			return fmt.Errorf("collection %q has no relationship on field %q", collection, queryResolve)
		}
		resolver := query.NewResolver(app.store, app.reg, &app.cfg.Query, app.log)
		resolved, err = resolver.Resolve(ctx, edge, result.Items)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", queryResolve, err)
		}
		resolveTarget = edge.Target
	}

	out := cmd.OutOrStdout()
	if queryFormat == formatJSON {
		payload := struct {
			*query.Result
			Resolved map[string]store.Document `json:"resolved,omitempty"`
		}{Result: result, Resolved: resolved}
		return printJSON(out, payload)
	}

	entry, err := app.reg.Get(collection)
	if err != nil {
		return err
	}
	columns := entry.ListFields
	if len(columns) == 0 {
		columns = entry.Schema.FieldNames()
	}

	rows := make([][]string, 0, len(result.Items))
	for _, doc := range result.Items {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			v, ok := doc[col]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatValue(v, sampleValueWidth))
		}
		rows = append(rows, row)
	}
	renderTable(out, columns, rows)

	total := strconv.FormatInt(result.TotalCount, 10)
	if result.TotalIsEstimate {
		total = "~" + total
	}
	fmt.Fprintf(out, "\nPage %d/%d | %s document(s)", result.Page, result.TotalPages, total)
	if result.HasNext {
		fmt.Fprintf(out, " | more pages available")
	}
	fmt.Fprintln(out)

	if resolved != nil {
		fmt.Fprintf(out, "\n%s\n", heading(fmt.Sprintf("Resolved %s -> %s", queryResolve, resolveTarget)))
		if len(resolved) == 0 {
			fmt.Fprintln(out, "No referenced documents found")
			return nil
		}
		keys := make([]string, 0, len(resolved))
		for key := range resolved {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(out, "%s: %s\n", key, formatDocument(resolved[key]))
		}
	}
	return nil
}

// parseFilters turns repeated --filter flags into store conditions. Values
// stay strings; the query engine coerces them against the inferred types.
func parseFilters(raw []string) ([]store.Condition, error) {
	conditions := make([]store.Condition, 0, len(raw))
	for _, item := range raw {
		cond, err := parseFilter(item)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

// parseFilter parses one field=value or field__op=value predicate.
func parseFilter(raw string) (store.Condition, error) {
	key, value, found := strings.Cut(raw, "=")
	if !found || key == "" {
		return store.Condition{}, fmt.Errorf("invalid filter %q (expected field=value)", raw)
	}

	field := key
	op := store.OpEqual
	if name, opName, hasOp := strings.Cut(key, "__"); hasOp {
		parsed, err := store.ParseOp(opName)
		if err != nil {
			return store.Condition{}, fmt.Errorf("invalid filter %q: %w", raw, err)
		}
		field = name
		op = parsed
	}
	if field == "" {
		return store.Condition{}, fmt.Errorf("invalid filter %q (missing field name)", raw)
	}

	var operand interface{}
	switch op {
	case store.OpExists:
		want, err := strconv.ParseBool(value)
		if err != nil {
			return store.Condition{}, fmt.Errorf("invalid filter %q: exists takes true or false", raw)
		}
		operand = want
	case store.OpIn, store.OpNotIn:
		parts := strings.Split(value, ",")
		items := make([]interface{}, 0, len(parts))
		for _, p := range parts {
			items = append(items, strings.TrimSpace(p))
		}
		operand = items
	default:
		operand = value
	}
	return store.Condition{Field: field, Op: op, Value: operand}, nil
}

// parseSort parses a comma-separated sort list; a leading - means
// descending.
func parseSort(raw string) []store.SortField {
	if raw == "" {
		return nil
	}
	var sorts []store.SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		descending := strings.HasPrefix(part, "-")
		sorts = append(sorts, store.SortField{
			Field:      strings.TrimPrefix(part, "-"),
			Descending: descending,
		})
	}
	return sorts
}

// formatDocument renders a compact single-line view of a document.
func formatDocument(doc store.Document) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(doc[k], sampleValueWidth)))
	}
	return strings.Join(parts, " ")
}
