// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/jank324/paper-lapse/schema"
)

// GitClient defines the Git operations the pipeline consumes.
// This allows the core pipeline logic to be tested without a real git executable.
type GitClient interface {
	// Run executes a git command and returns the combined output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// ListCommits returns every commit reachable from HEAD, oldest first,
	// with hash, author time, commit time and subject populated.
	ListCommits(ctx context.Context, repoPath string) (schema.Timeline, error)

	// CurrentRef returns the active branch name, or the HEAD commit hash
	// when the repository is in detached-HEAD state.
	CurrentRef(ctx context.Context, repoPath string) (string, error)

	// Checkout materializes the given ref in the working tree.
	Checkout(ctx context.Context, repoPath string, ref string) error

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)
}

// ToolSpec configures one external tool invocation (compiler, layout tool,
// encoder). A zero Timeout means no deadline.
type ToolSpec struct {
	Binary  string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// ToolResult holds the output and status of a completed tool invocation.
type ToolResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int // -1 if the process was killed
	Duration time.Duration
	TimedOut bool
}

// ToolRunner executes external tools. The pipeline only interprets exit
// status and produced artifacts, never tool-specific diagnostics.
type ToolRunner interface {
	Run(ctx context.Context, spec ToolSpec) (*ToolResult, error)
}

// RunStore defines the interface for tracking pipeline runs and their
// per-frame outcomes. This allows the store to be mocked for testing.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(startTime time.Time, repoPath string, configParams map[string]any) (int64, error)

	// RecordFrame stores one frame outcome for the run.
	RecordFrame(runID int64, rec schema.FrameRecord) error

	// EndRun finalizes the run with the completed manifest counts.
	EndRun(runID int64, endTime time.Time, m *schema.Manifest) error

	// GetAllRuns returns every recorded run, oldest first.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFrames returns every recorded frame outcome.
	GetAllFrames() ([]schema.StoredFrame, error)

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// RunStoreManager defines the interface for accessing the run store.
type RunStoreManager interface {
	GetRunStore() RunStore
}
