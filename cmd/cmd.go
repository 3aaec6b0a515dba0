// Package cmd wires the command-line interface for paperlapse. It owns flag
// registration, configuration loading, and dispatch into the core pipeline.
package cmd

import (
	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)

	// Add subcommands
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Define persistent flags. Defaults here are placeholders; the real
	// defaults live in initConfig so that config file and env values win.
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ./.paperlapse.yaml then $HOME/.paperlapse.yaml)")
	rootCmd.PersistentFlags().String("paper", contract.DefaultPaper, "Document basename without extension, e.g. main for main.tex")
	rootCmd.PersistentFlags().String("out", "", "Frame output directory (default is <repo>-frames next to the repository)")
	rootCmd.PersistentFlags().String("every", string(schema.EveryCommit), "Frame selection policy: commit, day, interval")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for day boundaries, e.g. Europe/Berlin (default is the local timezone)")
	rootCmd.PersistentFlags().String("interval", "", "Minimum spacing between frames for interval mode, e.g. '30 minutes'")
	rootCmd.PersistentFlags().Int("max-frames", contract.DefaultMaxFrames, "Abort if the selection would produce more frames than this")
	rootCmd.PersistentFlags().String("timestamp", string(schema.AuthorTimestamp), "Commit timestamp source: author, commit")
	rootCmd.PersistentFlags().Int("video-width", contract.DefaultVideoWidth, "Frame and video width in pixels")
	rootCmd.PersistentFlags().Int("video-height", contract.DefaultVideoHeight, "Frame and video height in pixels")
	rootCmd.PersistentFlags().Int("fps", contract.DefaultFPS, "Frames per second for the encoded video")
	rootCmd.PersistentFlags().Bool("encode", false, "Encode the rendered frames into a video after the run")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent render workers")
	rootCmd.PersistentFlags().String("build-timeout", contract.DefaultBuildTimeout, "Timeout for each compiler invocation, e.g. '10 minutes'")
	rootCmd.PersistentFlags().String("render-timeout", contract.DefaultRenderTimeout, "Timeout for each frame render, e.g. '2 minutes'")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text, csv, json")
	rootCmd.PersistentFlags().StringP("output-file", "f", "", "Write output to file instead of stdout")
	rootCmd.PersistentFlags().IntP("width", "w", 0, "Maximum width for path columns in table output (0 = auto-detect)")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.SQLiteBackend), "Run tracking backend: sqlite, mysql, postgresql, none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Connection string for MySQL/PostgreSQL run tracking (use PAPERLAPSE_RUNS_DB_CONNECT)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in headers: yes, no")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored status labels in table output: yes, no")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling with output file prefix (e.g., 'perf' creates perf.cpu.prof and perf.mem.prof)")

	// Migration target is only meaningful for the migrate subcommand.
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 = latest, 0 = rollback all, N = specific version)")

	// Bind all flags to Viper
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Failed to bind flags", err)
	}
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Failed to bind migrate flags", err)
	}
}
