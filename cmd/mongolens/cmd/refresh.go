package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mongolens/internal/store"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <collection>",
	Short: "Re-run discovery for one collection",
	Long: `Refresh re-samples a single collection, re-runs relationship detection
across the updated schema set and republishes the affected registry
entries. Other collections keep their published entries; readers of the
refreshed collection see the old entry until the swap completes.

Example:
  mongolens refresh orders --config mongolens.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
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
	entry, err := app.orch.Refresh(ctx, name)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Refreshed %s: %d field(s), %d outgoing, %d incoming edge(s)\n",
		okMark(), entry.Name, entry.Schema.Len(), len(entry.Outgoing), len(entry.Incoming))
	return nil
}
