package cmd

import (
	"fmt"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/internal/outwriter"
	"github.com/jank324/paper-lapse/internal/runstore"
	"github.com/jank324/paper-lapse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run tracking operations.
// This is used by commands that need store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get run-tracking config values
	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	connStr := viper.GetString("runs-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the run store with the loaded config
	if err := runstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	storeManager = runstore.Manager

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Width = viper.GetInt("width")
	if colors, err := contract.ParseBoolString(viper.GetString("color")); err == nil {
		cfg.UseColors = colors
	}

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads configuration for migrations without opening the store.
// Migrations manage their own database connection.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	connStr := viper.GetString("runs-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by pipeline commands. This avoids Git repo
// validation and policy parsing for simple store operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded pipeline runs",
	Long: `Manage the history of recorded pipeline runs.

Every render run is recorded with its policy, frame outcomes, and timing,
so past runs can be inspected and compared after the fact.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show recorded runs and backend connection info
  clear   - Remove all recorded runs
  export  - Export runs and frames to Parquet files
  migrate - Apply schema migrations to the run database

Examples:
  # Show recorded runs
  paperlapse runs status

  # Remove all run history
  paperlapse runs clear`,
}

// runsStatusCmd shows recorded runs and store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display recorded runs and backend details",
	Long: `Show recorded pipeline runs together with backend status.

Displays one row per run with its start time, repository, policy, and
frame counts, followed by backend connection details.

Examples:
  # Table of recorded runs
  paperlapse runs status

  # Machine-readable run history
  paperlapse runs status -o json`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetRunStore()
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run store status", err)
		}
		runs, err := store.GetAllRuns()
		if err != nil {
			contract.LogFatal("Failed to load recorded runs", err)
		}
		if err := outwriter.NewOutWriter().WriteRuns(runs, status, cfg); err != nil {
			contract.LogFatal("Failed to write runs output", err)
		}
	},
}

// runsClearCmd clears the recorded run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded run history",
	Long: `Delete all recorded runs and frame outcomes from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the runs and frames tables

Examples:
  # Clear SQLite run history (default)
  paperlapse runs clear

  # Clear PostgreSQL run history (set connection string via env variable)
  PAPERLAPSE_RUNS_BACKEND=postgresql PAPERLAPSE_RUNS_DB_CONNECT="..." paperlapse runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ClearRuns(cfg.RunsBackend, contract.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet files",
	Long: `Export all recorded runs and frame outcomes to Parquet files for
analysis with external tools (DuckDB, pandas, Spark).

Writes two files next to the given output prefix:
  <output-file>.runs.parquet   - one row per recorded run
  <output-file>.frames.parquet - one row per attempted frame

Examples:
  # Export to history.runs.parquet and history.frames.parquet
  paperlapse runs export -f history`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd applies schema migrations to the run database.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations to the run database",
	Long: `Apply versioned schema migrations to the run tracking database.

Target version semantics:
  -1 - migrate up to the latest version (default)
   0 - roll back all migrations
   N - migrate to the specific version N

Examples:
  # Migrate to the latest schema
  paperlapse runs migrate

  # Roll back everything
  paperlapse runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to migrate run database", err)
		}
	},
}
