package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/registry"
	"github.com/dbsmedya/mongolens/internal/schema"
	"github.com/dbsmedya/mongolens/internal/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and store connectivity",
	Long: `Validate checks the configuration file and verifies it against the
live database.

Checks performed:
  - Configuration syntax and value ranges
  - Store connectivity (connect and ping)
  - Configured collections exist in the database
  - Field and relationship overrides reference real fields and collections
    (dry-run of the registry merge against a fresh sample)

Example:
  mongolens validate --config mongolens.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	out := cmd.OutOrStdout()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.URI, overrides.Database,
		overrides.SampleSize, overrides.Concurrency, overrides.NoCache)

	fmt.Fprintf(out, "%s\n", heading("Configuration Validation"))
	fmt.Fprintf(out, "Config file: %s\n", configFile)

	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, ve := range verrs {
				fmt.Fprintf(out, "%s %s: %s\n", failMark(), ve.Field, ve.Message)
			}
			return fmt.Errorf("configuration validation failed")
		}
		return err
	}
	fmt.Fprintf(out, "%s Configuration is valid\n\n", okMark())

	ctx := store.SetupSignalHandler()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	fmt.Fprintf(out, "%s\n", heading("Store Connectivity"))
	if err := app.store.Ping(ctx); err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}
	fmt.Fprintf(out, "%s Connected to %s\n\n", okMark(), app.cfg.Store.Database)

	names, err := app.store.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	existing := make(map[string]struct{}, len(names))
	for _, name := range names {
		existing[name] = struct{}{}
	}

	configured := app.cfg.ConfiguredCollections()
	if len(configured) == 0 {
		fmt.Fprintln(out, "No per-collection overrides configured")
		return nil
	}

	fmt.Fprintf(out, "%s\n", heading("Collection Overrides"))
	hasErrors := false
	for _, name := range configured {
		if _, ok := existing[name]; !ok {
			fmt.Fprintf(out, "%s %s: collection does not exist\n", failMark(), name)
			hasErrors = true
			continue
		}

		// Dry-run the override merge against a fresh sample so typos in
		// field and relationship references surface here, not mid-pass.
		docs, err := app.store.Sample(ctx, name, app.cfg.Discovery.SampleSize)
		if err != nil {
			fmt.Fprintf(out, "%s %s: sample failed: %v\n", failMark(), name, err)
			hasErrors = true
			continue
		}
		cs := schema.Infer(name, docs)
		cc, _ := app.cfg.GetCollection(name)
		if _, err := registry.BuildEntry(name, cs, cc, app.cfg.Discovery.MinOccurrenceRate); err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", failMark(), name, err)
			hasErrors = true
			continue
		}
		if _, err := registry.MergeRelationships(name, cs, nil, cc.Relationships, names); err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", failMark(), name, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(out, "%s %s\n", okMark(), name)
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more collections")
	}
	fmt.Fprintf(out, "\n%s All overrides validated successfully\n", okMark())
	return nil
}
