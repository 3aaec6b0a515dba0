// Package core implements the commit-to-frame pipeline: timeline extraction,
// temporal frame selection, sequential revision builds, concurrent frame
// rendering, and the driver that ties them together.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/internal/outwriter"
)

// ExecuteRender runs the full pipeline and prints the resulting manifest.
// It serves as the main entry point for the 'render' command.
func ExecuteRender(ctx context.Context, cfg *contract.Config, mgr contract.RunStoreManager) error {
	start := time.Now()
	client := contract.NewLocalGitClient()
	runner := contract.NewLocalToolRunner()

	driver := NewDriver(cfg, client, runner, mgr.GetRunStore())
	manifest, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteManifest(manifest, cfg, duration)
}

// ExecuteTimeline selects frames without building anything and prints the
// selection. It serves as the main entry point for the 'timeline' command.
func ExecuteTimeline(ctx context.Context, cfg *contract.Config) error {
	client := contract.NewLocalGitClient()

	timeline, err := BuildTimeline(ctx, client, cfg.RepoPath)
	if err != nil {
		return err
	}
	specs, err := SelectFrames(timeline, cfg)
	if err != nil {
		return err
	}

	return outwriter.NewOutWriter().WriteTimeline(specs, cfg, len(timeline))
}

// RepositoryError is fatal: the repository cannot yield a timeline, so the
// run aborts before any build starts.
type RepositoryError struct {
	Path string
	Err  error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %q: %v", e.Path, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// PolicyError is fatal: the selection policy is unusable (non-positive
// interval, frame count over the safety ceiling). Raised before any build.
type PolicyError struct {
	Msg string
}

func (e *PolicyError) Error() string {
	return "selection policy: " + e.Msg
}
