package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
)

// montageBin is the ImageMagick tool that lays PDF pages out as a tile grid.
const montageBin = "montage"

// FrameRenderer rasterizes staged PDF artifacts into fixed-size PNG frames.
// Every frame uses the same grid so page positions stay stable across the
// whole sequence. Renders are independent per frame and safe to run
// concurrently.
type FrameRenderer struct {
	cfg    *contract.Config
	runner contract.ToolRunner
	grid   Grid
}

// NewFrameRenderer builds a renderer for the given shared grid.
func NewFrameRenderer(cfg *contract.Config, runner contract.ToolRunner, grid Grid) *FrameRenderer {
	return &FrameRenderer{cfg: cfg, runner: runner, grid: grid}
}

// RenderOne rasterizes a single successful build outcome into its PNG frame.
// A failed invocation or an empty output file downgrades the outcome to a
// render failure; the staged PDF is left in place either way.
func (r *FrameRenderer) RenderOne(ctx context.Context, outcome schema.BuildOutcome) schema.BuildOutcome {
	framePath := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("%04d.png", outcome.Spec.Index))

	result, err := r.runner.Run(ctx, contract.ToolSpec{
		Binary: montageBin,
		Args: []string{
			outcome.ArtifactPath,
			"-tile", r.grid.String(),
			"-background", "white",
			"-geometry", fmt.Sprintf("%dx%d", r.grid.TileWidth, r.grid.TileHeight),
			"-alpha", "remove",
			"-colorspace", "sRGB",
			framePath,
		},
		Dir:     r.cfg.OutputDir,
		Timeout: r.cfg.RenderTimeout,
	})
	if err != nil {
		return renderFailure(outcome, err.Error())
	}
	if result.TimedOut {
		return renderFailure(outcome, fmt.Sprintf("%s exceeded render timeout of %s", montageBin, r.cfg.RenderTimeout))
	}
	if result.ExitCode != 0 {
		return renderFailure(outcome, fmt.Sprintf("%s exited with code %d: %s", montageBin, result.ExitCode, tailLines(result.Stderr, 3)))
	}

	info, err := os.Stat(framePath)
	if err != nil || info.Size() == 0 {
		return renderFailure(outcome, fmt.Sprintf("%s produced no frame at %q", montageBin, framePath))
	}
	return outcome
}

// RenderFrames rasterizes all successful outcomes using a bounded worker
// pool of cfg.Workers goroutines. Failed builds pass through untouched.
// The returned slice is ordered by frame index and has the same length as
// the input; frames whose render failed come back as render failures.
// Alongside the outcomes it returns the images that exist on disk.
func RenderFrames(ctx context.Context, cfg *contract.Config, runner contract.ToolRunner, grid Grid, outcomes []schema.BuildOutcome) ([]schema.BuildOutcome, []schema.FrameImage) {
	renderer := NewFrameRenderer(cfg, runner, grid)

	outcomeCh := make(chan schema.BuildOutcome, len(outcomes))
	resultCh := make(chan schema.BuildOutcome, len(outcomes))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Go(func() {
			for o := range outcomeCh {
				resultCh <- renderer.RenderOne(ctx, o)
			}
		})
	}

	for _, o := range outcomes {
		if o.Succeeded() {
			outcomeCh <- o
		} else {
			resultCh <- o
		}
	}
	close(outcomeCh)

	wg.Wait()
	close(resultCh)

	rendered := make([]schema.BuildOutcome, 0, len(outcomes))
	for o := range resultCh {
		rendered = append(rendered, o)
	}
	sort.Slice(rendered, func(i, j int) bool {
		return rendered[i].Spec.Index < rendered[j].Spec.Index
	})

	var images []schema.FrameImage
	for _, o := range rendered {
		if o.Succeeded() {
			images = append(images, schema.FrameImage{
				Index: o.Spec.Index,
				Path:  filepath.Join(cfg.OutputDir, fmt.Sprintf("%04d.png", o.Spec.Index)),
			})
		}
	}
	return rendered, images
}

func renderFailure(outcome schema.BuildOutcome, detail string) schema.BuildOutcome {
	outcome.Status = schema.StatusFailure
	outcome.Reason = schema.ReasonRenderError
	outcome.Detail = detail
	return outcome
}
