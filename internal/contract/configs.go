package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jank324/paper-lapse/schema"
)

// Default values for configuration.
const (
	DefaultPaper         = "main"
	DefaultFPS           = 2
	DefaultVideoWidth    = 3840
	DefaultVideoHeight   = 2160
	DefaultMaxFrames     = 5000
	DefaultBuildTimeout  = "10 minutes"
	DefaultRenderTimeout = "2 minutes"
)

// DefaultWorkers is the default number of concurrent render workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// Config holds the runtime configuration for a pipeline run.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath  string
	Paper     string // Document basename without extension, e.g. "main"
	OutputDir string

	Mode      schema.SelectionMode
	Timezone  *time.Location
	Interval  time.Duration
	MaxFrames int

	Timestamp schema.TimestampSource

	VideoWidth  int
	VideoHeight int
	FPS         int
	Encode      bool

	Workers       int
	BuildTimeout  time.Duration
	RenderTimeout time.Duration

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	Paper         string `mapstructure:"paper"`
	Out           string `mapstructure:"out"`
	Every         string `mapstructure:"every"`
	Timezone      string `mapstructure:"timezone"`
	Interval      string `mapstructure:"interval"`
	MaxFrames     int    `mapstructure:"max-frames"`
	Timestamp     string `mapstructure:"timestamp"`
	VideoWidth    int    `mapstructure:"video-width"`
	VideoHeight   int    `mapstructure:"video-height"`
	FPS           int    `mapstructure:"fps"`
	Encode        bool   `mapstructure:"encode"`
	Workers       int    `mapstructure:"workers"`
	BuildTimeout  string `mapstructure:"build-timeout"`
	RenderTimeout string `mapstructure:"render-timeout"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Width         int    `mapstructure:"width"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`
	Emoji         string `mapstructure:"emoji"`
	Color         string `mapstructure:"color"`
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPolicy(cfg, input); err != nil {
		return err
	}
	if err := processTimeouts(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, client, input); err != nil {
		return err
	}
	if err := resolveOutputDir(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-policy fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Encode = input.Encode

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Paper = strings.TrimSpace(input.Paper)
	if cfg.Paper == "" {
		return fmt.Errorf("paper name cannot be empty")
	}
	if strings.ContainsAny(cfg.Paper, "/\\") {
		return fmt.Errorf("paper must be a bare document name without path separators (received %q)", input.Paper)
	}

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.VideoWidth <= 0 || input.VideoHeight <= 0 {
		return fmt.Errorf("video dimensions must be positive (received %dx%d)", input.VideoWidth, input.VideoHeight)
	}
	cfg.VideoWidth = input.VideoWidth
	cfg.VideoHeight = input.VideoHeight

	if input.FPS <= 0 {
		return fmt.Errorf("fps must be greater than 0 (received %d)", input.FPS)
	}
	cfg.FPS = input.FPS

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	cfg.Timestamp = schema.TimestampSource(strings.ToLower(input.Timestamp))
	if _, ok := schema.ValidTimestampSources[cfg.Timestamp]; !ok {
		return fmt.Errorf("invalid timestamp source '%s'. must be author or commit", input.Timestamp)
	}

	return validateBackendConfigs(cfg, input)
}

// processPolicy handles the selection policy fields.
func processPolicy(cfg *Config, input *ConfigRawInput) error {
	cfg.Mode = schema.SelectionMode(strings.ToLower(input.Every))
	if _, ok := schema.ValidSelectionModes[cfg.Mode]; !ok {
		return fmt.Errorf("invalid selection mode '%s'. must be commit, day, interval", input.Every)
	}

	loc := time.Local
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", tz, err)
		}
		loc = parsed
	}
	cfg.Timezone = loc

	if cfg.Mode == schema.MinInterval {
		if strings.TrimSpace(input.Interval) == "" {
			return fmt.Errorf("--interval is required when using interval mode")
		}
		interval, err := ParseLookbackDuration(input.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval: %w", err)
		}
		cfg.Interval = interval
	}

	if input.MaxFrames <= 0 {
		return fmt.Errorf("max-frames must be greater than 0 (received %d)", input.MaxFrames)
	}
	cfg.MaxFrames = input.MaxFrames

	return nil
}

// processTimeouts parses the per-tool timeout durations.
func processTimeouts(cfg *Config, input *ConfigRawInput) error {
	buildTimeout, err := ParseLookbackDuration(input.BuildTimeout)
	if err != nil {
		return fmt.Errorf("invalid build-timeout: %w", err)
	}
	cfg.BuildTimeout = buildTimeout

	renderTimeout, err := ParseLookbackDuration(input.RenderTimeout)
	if err != nil {
		return fmt.Errorf("invalid render-timeout: %w", err)
	}
	cfg.RenderTimeout = renderTimeout

	return nil
}

// validateBackendConfigs validates the run store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	return ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// resolveRepoPath resolves the Git repository root from the positional argument.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}

	gitRoot, err := client.GetRepoRoot(ctx, filepath.Clean(absSearchPath))
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}

// resolveOutputDir resolves and creates the frame output directory. The
// output directory must live outside the repository, since the working tree
// is rewritten on every checkout.
func resolveOutputDir(cfg *Config, input *ConfigRawInput) error {
	out := strings.TrimSpace(input.Out)
	if out == "" {
		// Default to a sibling of the repository, which is always outside it.
		out = cfg.RepoPath + "-frames"
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	if strings.HasPrefix(absOut+string(os.PathSeparator), cfg.RepoPath+string(os.PathSeparator)) {
		return fmt.Errorf("output directory %q must be outside the repository %q", absOut, cfg.RepoPath)
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", absOut, err)
	}
	cfg.OutputDir = absOut
	return nil
}
