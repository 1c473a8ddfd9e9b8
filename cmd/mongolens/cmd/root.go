package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	logLevel    string
	logFormat   string
	storeURI    string
	database    string
	sampleSize  int
	concurrency int
	noCache     bool
)

var rootCmd = &cobra.Command{
	Use:   "mongolens",
	Short: "MongoDB Schema Introspection & Relationship Detection",
	Long: `A CLI tool for introspecting schemaless MongoDB collections: it infers
field-level schemas by statistical sampling, detects reference relationships
between collections, and runs validated filter/sort/search queries against
the inferred shapes.

Features:
  - Field schema inference with type distributions and occurrence rates
  - Relationship detection from naming conventions and identifier types
  - Confidence-scored, overridable relationship edges
  - Validated filter/sort/search/paginate queries
  - Optional Redis snapshot cache between invocations`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "mongolens.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Store overrides
	rootCmd.PersistentFlags().StringVar(&storeURI, "uri", "",
		"Override store connection URI")
	rootCmd.PersistentFlags().StringVar(&database, "database", "",
		"Override database name")

	// Discovery overrides
	rootCmd.PersistentFlags().IntVar(&sampleSize, "sample-size", 0,
		"Override documents sampled per collection")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0,
		"Override discovery worker count")

	// Cache override
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false,
		"Ignore the snapshot cache and rediscover from the store")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel    string
	LogFormat   string
	URI         string
	Database    string
	SampleSize  int
	Concurrency int
	NoCache     bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		URI:         storeURI,
		Database:    database,
		SampleSize:  sampleSize,
		Concurrency: concurrency,
		NoCache:     noCache,
	}
}
