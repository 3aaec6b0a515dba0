package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
)

// encoderBin stitches the rendered frame sequence into a video.
const encoderBin = "ffmpeg"

// videoFileName is the encoded video filename inside the output directory.
const videoFileName = "paperlapse.mp4"

// Driver owns one end-to-end pipeline run: read the timeline, select frames,
// build each selected revision sequentially on the shared working tree,
// render the survivors concurrently, and persist the manifest. A Driver is
// single-use; construct a new one per run.
type Driver struct {
	cfg    *contract.Config
	git    contract.GitClient
	runner contract.ToolRunner
	store  contract.RunStore
}

// NewDriver assembles a pipeline driver from its collaborators.
func NewDriver(cfg *contract.Config, git contract.GitClient, runner contract.ToolRunner, store contract.RunStore) *Driver {
	return &Driver{cfg: cfg, git: git, runner: runner, store: store}
}

// Run executes the pipeline. Fatal errors (unusable repository, unsatisfiable
// policy) abort before any working-tree mutation; per-frame failures are
// recorded in the manifest and never stop the run. Cancellation finishes the
// in-flight build, skips the remaining builds and the render stage, and still
// writes the manifest and restores the original ref.
func (d *Driver) Run(ctx context.Context) (*schema.Manifest, error) {
	timeline, err := BuildTimeline(ctx, d.git, d.cfg.RepoPath)
	if err != nil {
		return nil, err
	}

	specs, err := SelectFrames(timeline, d.cfg)
	if err != nil {
		return nil, err
	}

	headHash, err := d.git.GetRepoHash(ctx, d.cfg.RepoPath)
	if err != nil {
		return nil, &RepositoryError{Path: d.cfg.RepoPath, Err: err}
	}

	d.printHeader(len(timeline), len(specs))

	runID, err := d.store.BeginRun(time.Now(), d.cfg.RepoPath, d.configParams())
	tracked := err == nil
	if err != nil {
		contract.LogWarn("could not begin run tracking", err)
	}

	if err := sweepStaleFrames(d.cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to clear previous frames from %q: %w", d.cfg.OutputDir, err)
	}

	lease, err := acquireWorkingTree(ctx, d.git, d.cfg.RepoPath)
	if err != nil {
		return nil, &RepositoryError{Path: d.cfg.RepoPath, Err: err}
	}
	defer func() {
		if releaseErr := lease.Release(ctx); releaseErr != nil {
			contract.LogWarn("working tree was NOT restored", releaseErr)
		}
	}()

	outcomes, canceled := d.buildAll(ctx, lease, specs)

	// A canceled run skips the render stage entirely: builds that finished
	// stay successful in the manifest with no frame image, rather than being
	// downgraded to render failures by the dead context.
	var images []schema.FrameImage
	var grid Grid
	if maxPages := maxPageCount(outcomes); maxPages > 0 && !canceled {
		grid = ComputeGrid(d.cfg.VideoWidth, d.cfg.VideoHeight, maxPages)
		d.printRenderHeader(grid)
		outcomes, images = RenderFrames(ctx, d.cfg, d.runner, grid, outcomes)
	}

	manifest := d.assembleManifest(headHash, outcomes, images, grid, canceled)

	if d.cfg.Encode && !canceled && manifest.Succeeded > 0 {
		if videoPath, encodeErr := d.encode(ctx); encodeErr != nil {
			contract.LogWarn("video encoding failed", encodeErr)
		} else {
			manifest.VideoPath = videoPath
		}
	}

	manifestPath := filepath.Join(d.cfg.OutputDir, schema.ManifestFileName)
	if err := manifest.Write(manifestPath); err != nil {
		return manifest, err
	}

	if tracked {
		d.persistRun(runID, manifest)
	}
	return manifest, nil
}

// buildAll compiles every selected revision in order on the shared working
// tree. Cancellation is observed between frames only: each build runs on a
// context detached from the interrupt, so the in-flight build always runs to
// completion and yields a classified outcome. Per-tool timeouts still apply.
func (d *Driver) buildAll(ctx context.Context, lease *workingTreeLease, specs []schema.FrameSpec) ([]schema.BuildOutcome, bool) {
	builder := newRevisionBuilder(d.cfg, d.runner, lease)
	buildCtx := context.WithoutCancel(ctx)

	outcomes := make([]schema.BuildOutcome, 0, len(specs))
	canceled := false
	for _, spec := range specs {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		outcome := builder.Build(buildCtx, spec)
		d.printProgress(outcome, len(specs))
		outcomes = append(outcomes, outcome)
	}
	return outcomes, canceled
}

// assembleManifest folds the outcomes into the durable run record. Only
// attempted frames appear; when a run is canceled the untouched tail of the
// selection is absent rather than marked failed.
func (d *Driver) assembleManifest(headHash string, outcomes []schema.BuildOutcome, images []schema.FrameImage, grid Grid, canceled bool) *schema.Manifest {
	imagePaths := make(map[int]string, len(images))
	for _, img := range images {
		imagePaths[img.Index] = img.Path
	}

	manifest := &schema.Manifest{
		RepoPath:  d.cfg.RepoPath,
		HeadHash:  headHash,
		Policy:    d.cfg.Mode,
		CreatedAt: time.Now(),
		Canceled:  canceled,
		Attempted: len(outcomes),
		Frames:    make([]schema.FrameRecord, 0, len(outcomes)),
	}
	if d.cfg.Mode == schema.EndOfDay {
		manifest.Timezone = d.cfg.Timezone.String()
	}
	if d.cfg.Mode == schema.MinInterval {
		manifest.Interval = d.cfg.Interval.String()
	}
	if grid.Columns > 0 {
		manifest.GridLayout = grid.String()
	}

	for _, o := range outcomes {
		rec := schema.FrameRecord{
			Index:      o.Spec.Index,
			CommitHash: o.Spec.Source.Hash,
			CommitTime: o.Spec.Source.When(d.cfg.Timestamp),
			Subject:    o.Spec.Source.Subject,
			Status:     o.Status,
			Reason:     o.Reason,
			Detail:     o.Detail,
			FramePath:  imagePaths[o.Spec.Index],
			Pages:      o.Pages,
			BuildMs:    o.Duration.Milliseconds(),
		}
		if o.Succeeded() {
			manifest.Succeeded++
		} else {
			manifest.Failed++
		}
		manifest.Frames = append(manifest.Frames, rec)
	}
	return manifest
}

// encode stitches the numbered PNG sequence into an H.264 video.
func (d *Driver) encode(ctx context.Context) (string, error) {
	videoPath := filepath.Join(d.cfg.OutputDir, videoFileName)

	result, err := d.runner.Run(ctx, contract.ToolSpec{
		Binary: encoderBin,
		Args: []string{
			"-y",
			"-r", fmt.Sprintf("%d", d.cfg.FPS),
			"-i", "%04d.png",
			"-pix_fmt", "yuv420p",
			"-b", "8000k",
			"-vcodec", "libx264",
			videoPath,
		},
		Dir: d.cfg.OutputDir,
	})
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("%s exited with code %d: %s", encoderBin, result.ExitCode, tailLines(result.Stderr, 3))
	}
	return videoPath, nil
}

// persistRun records the per-frame outcomes and finalizes the run row.
// Store failures degrade to warnings; the manifest on disk is authoritative.
func (d *Driver) persistRun(runID int64, manifest *schema.Manifest) {
	for _, rec := range manifest.Frames {
		if err := d.store.RecordFrame(runID, rec); err != nil {
			contract.LogWarn(fmt.Sprintf("could not record frame %d", rec.Index), err)
			break
		}
	}
	if err := d.store.EndRun(runID, time.Now(), manifest); err != nil {
		contract.LogWarn("could not finalize run tracking", err)
	}
}

// configParams snapshots the policy-relevant configuration for the run store.
func (d *Driver) configParams() map[string]any {
	params := map[string]any{
		"paper":      d.cfg.Paper,
		"every":      string(d.cfg.Mode),
		"timestamp":  string(d.cfg.Timestamp),
		"max_frames": d.cfg.MaxFrames,
		"video":      fmt.Sprintf("%dx%d", d.cfg.VideoWidth, d.cfg.VideoHeight),
		"fps":        d.cfg.FPS,
		"workers":    d.cfg.Workers,
	}
	if d.cfg.Mode == schema.EndOfDay {
		params["timezone"] = d.cfg.Timezone.String()
	}
	if d.cfg.Mode == schema.MinInterval {
		params["interval"] = d.cfg.Interval.String()
	}
	return params
}

func (d *Driver) printHeader(commits, frames int) {
	if d.cfg.UseEmojis {
		fmt.Printf("🎞️  Building %d frames from %d commits...\n", frames, commits)
	} else {
		fmt.Printf("Building %d frames from %d commits...\n", frames, commits)
	}
}

func (d *Driver) printRenderHeader(grid Grid) {
	if d.cfg.UseEmojis {
		fmt.Printf("🖼️  Rendering frames with a %s page grid (%d workers)...\n", grid, d.cfg.Workers)
	} else {
		fmt.Printf("Rendering frames with a %s page grid (%d workers)...\n", grid, d.cfg.Workers)
	}
}

func (d *Driver) printProgress(outcome schema.BuildOutcome, total int) {
	label := contract.GetPlainStatusLabel(outcome.Status)
	if d.cfg.UseColors {
		label = contract.GetColorStatusLabel(outcome.Status)
	}
	fmt.Printf("  [%d/%d] %s %s (%s)\n",
		outcome.Spec.Index+1, total, contract.ShortHash(outcome.Spec.Source.Hash), label,
		outcome.Duration.Round(time.Millisecond))
}

// sweepStaleFrames removes numbered artifacts left over from a previous run.
// A smaller selection must not leave higher-index frames in the directory,
// since the encoder consumes whatever the listing sorts to.
func sweepStaleFrames(dir string) error {
	for _, pattern := range []string{"[0-9][0-9][0-9][0-9].png", "[0-9][0-9][0-9][0-9].pdf"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// maxPageCount returns the largest known page count among successful builds.
func maxPageCount(outcomes []schema.BuildOutcome) int {
	maxPages := 0
	for _, o := range outcomes {
		if o.Succeeded() && o.Pages > maxPages {
			maxPages = o.Pages
		}
	}
	// A successful build with an unknown page count still gets a single tile.
	if maxPages == 0 {
		for _, o := range outcomes {
			if o.Succeeded() {
				return 1
			}
		}
	}
	return maxPages
}
