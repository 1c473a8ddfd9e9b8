package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mongolens/internal/store"
)

var discoverFormat string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run a full schema discovery pass",
	Long: `Discover samples every eligible collection in the database, infers a
field-level schema per collection, detects relationship edges across all
schemas and publishes the merged registry entries.

Per-collection failures (unreachable or missing collections, configuration
conflicts) are reported and skipped; they never abort the rest of the pass.
When the snapshot cache is enabled the resulting registry is saved for
later invocations.

Example:
  mongolens discover --config mongolens.yaml --database shop`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverFormat, "format", formatTable,
		"Output format (table, json)")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := validateFormat(discoverFormat, formatTable, formatJSON); err != nil {
		return err
	}

	// Announce the interrupt so a partial report is not mistaken for a
	// clean pass; in-flight collections are abandoned, not published.
	ctx := store.SetupSignalHandlerWithCallback(func(sig os.Signal) {
		fmt.Fprintf(cmd.ErrOrStderr(), "received %s, aborting discovery\n", sig)
	})
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	report, err := app.orch.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if discoverFormat == formatJSON {
		return printJSON(out, report)
	}

	fmt.Fprintf(out, "%s\n", heading("Discovery"))
	fmt.Fprintf(out, "Run:         %s\n", report.RunID)
	fmt.Fprintf(out, "Database:    %s\n", app.cfg.Store.Database)
	fmt.Fprintf(out, "Collections: %d examined, %d discovered\n",
		report.Collections, report.Discovered)
	fmt.Fprintf(out, "Edges:       %d\n", report.Edges)
	fmt.Fprintf(out, "Duration:    %s\n\n", report.Duration.Round(timePrecision))

	entries := app.reg.List()
	if len(entries) > 0 {
		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, []string{
				entry.Name,
				strconv.Itoa(entry.Schema.Len()),
				strconv.Itoa(entry.Schema.SampleSize),
				strconv.Itoa(len(entry.Outgoing)),
				strconv.Itoa(len(entry.Incoming)),
			})
		}
		renderTable(out, []string{"Collection", "Fields", "Sample", "Out", "In"}, rows)
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "\n%s\n", heading("Skipped"))
		for _, f := range report.Skipped {
			fmt.Fprintf(out, "%s %s: %s\n", failMark(), f.Name, f.Err)
		}
	}
	return nil
}
