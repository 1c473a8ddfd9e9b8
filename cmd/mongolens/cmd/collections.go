package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mongolens/internal/store"
)

var collectionsFormat string

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List registered collections with stats",
	Long: `Collections lists every registered collection with its approximate
document count, inferred field count, relationship edge counts and the
sample size discovery used. Document counts are fresh store estimates, not
the ones captured at discovery time.

Example:
  mongolens collections --config mongolens.yaml`,
	RunE: runCollections,
}

func init() {
	collectionsCmd.Flags().StringVar(&collectionsFormat, "format", formatTable,
		"Output format (table, json)")
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, args []string) error {
	if err := validateFormat(collectionsFormat, formatTable, formatJSON); err != nil {
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

	stats, err := app.orch.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if collectionsFormat == formatJSON {
		return printJSON(out, stats)
	}

	if len(stats) == 0 {
		fmt.Fprintln(out, "No collections registered")
		return nil
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Name,
			s.DisplayName,
			strconv.FormatInt(s.DocumentCount, 10),
			strconv.Itoa(s.FieldCount),
			strconv.Itoa(s.SampleSize),
			strconv.Itoa(s.Outgoing),
			strconv.Itoa(s.Incoming),
		})
	}
	renderTable(out, []string{"Collection", "Display Name", "Documents", "Fields", "Sample", "Out", "In"}, rows)
	fmt.Fprintf(out, "\nTotal: %d collection(s)\n", len(stats))
	return nil
}
