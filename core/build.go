package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
)

// External tool binaries consumed by the builder.
const (
	compilerBin = "pdflatex"
	bibBin      = "bibtex"
	pdfInfoBin  = "pdfinfo"
)

// RevisionBuilder materializes one selected commit in the working tree,
// compiles the document and stages the resulting PDF into the output
// directory. Builds share the working-tree lease, so they must run
// sequentially; the driver enforces this.
type RevisionBuilder struct {
	cfg    *contract.Config
	runner contract.ToolRunner
	lease  *workingTreeLease
}

// newRevisionBuilder wires the builder to the run's lease and tool runner.
func newRevisionBuilder(cfg *contract.Config, runner contract.ToolRunner, lease *workingTreeLease) *RevisionBuilder {
	return &RevisionBuilder{cfg: cfg, runner: runner, lease: lease}
}

// Build produces exactly one BuildOutcome for the given FrameSpec. Failures
// are classified, recorded and returned; they never abort the run. Success
// requires a zero compiler exit AND a non-empty staged artifact.
func (b *RevisionBuilder) Build(ctx context.Context, spec schema.FrameSpec) schema.BuildOutcome {
	start := time.Now()

	if err := b.lease.CheckoutCommit(ctx, spec.Source.Hash); err != nil {
		return b.failure(spec, schema.ReasonCheckoutFailed, err.Error(), start)
	}

	outcome, ok := b.compile(ctx, spec, start)
	if !ok {
		return outcome
	}

	artifact, err := b.stageArtifact(spec)
	if err != nil {
		return b.failure(spec, schema.ReasonMissingArtifact, err.Error(), start)
	}

	pages, err := b.countPages(ctx, artifact)
	if err != nil {
		// Page count only tunes the tile grid; a frame without it still renders.
		contract.LogWarn(fmt.Sprintf("could not count pages for frame %d", spec.Index), err)
	}

	return schema.BuildOutcome{
		Spec:         spec,
		Status:       schema.StatusSuccess,
		ArtifactPath: artifact,
		Pages:        pages,
		Duration:     time.Since(start),
	}
}

// compile runs the LaTeX pass sequence against the checked-out tree:
// three pdflatex passes with bibtex between them, so cross-references and
// bibliography entries resolve. bibtex exits non-zero on documents without
// citations, so its status is ignored; the final pdflatex exit decides.
func (b *RevisionBuilder) compile(ctx context.Context, spec schema.FrameSpec, start time.Time) (schema.BuildOutcome, bool) {
	texFile := b.cfg.Paper + ".tex"
	auxFile := b.cfg.Paper + ".aux"

	passes := []contract.ToolSpec{
		{Binary: compilerBin, Args: []string{"-synctex=1", "-interaction=nonstopmode", texFile}},
		{Binary: bibBin, Args: []string{auxFile}},
		{Binary: compilerBin, Args: []string{"-synctex=1", "-interaction=nonstopmode", texFile}},
		{Binary: bibBin, Args: []string{auxFile}},
		{Binary: compilerBin, Args: []string{"-synctex=1", "-interaction=nonstopmode", texFile}},
	}

	var final *contract.ToolResult
	for _, pass := range passes {
		pass.Dir = b.cfg.RepoPath
		pass.Timeout = b.cfg.BuildTimeout

		result, err := b.runner.Run(ctx, pass)
		if err != nil {
			return b.failure(spec, schema.ReasonCompilerError, err.Error(), start), false
		}
		if result.TimedOut {
			detail := fmt.Sprintf("%s exceeded build timeout of %s", pass.Binary, b.cfg.BuildTimeout)
			return b.failure(spec, schema.ReasonTimeout, detail, start), false
		}
		if pass.Binary == compilerBin {
			final = result
		}
	}

	if final.ExitCode != 0 {
		detail := fmt.Sprintf("%s exited with code %d: %s", compilerBin, final.ExitCode, tailLines(final.Stdout, 3))
		return b.failure(spec, schema.ReasonCompilerError, detail, start), false
	}
	return schema.BuildOutcome{}, true
}

// stageArtifact moves the compiled PDF out of the working tree before the
// next checkout rewrites it. Frames are staged under their zero-padded index.
func (b *RevisionBuilder) stageArtifact(spec schema.FrameSpec) (string, error) {
	src := filepath.Join(b.cfg.RepoPath, b.cfg.Paper+".pdf")
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("compiler produced no artifact at %q", src)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("compiler produced an empty artifact at %q", src)
	}

	dst := filepath.Join(b.cfg.OutputDir, fmt.Sprintf("%04d.pdf", spec.Index))
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to stage artifact: %w", err)
	}
	return dst, nil
}

// countPages reads the artifact's page count via pdfinfo.
func (b *RevisionBuilder) countPages(ctx context.Context, artifact string) (int, error) {
	result, err := b.runner.Run(ctx, contract.ToolSpec{
		Binary:  pdfInfoBin,
		Args:    []string{artifact},
		Timeout: b.cfg.RenderTimeout,
	})
	if err != nil {
		return 0, err
	}
	if result.ExitCode != 0 {
		return 0, fmt.Errorf("%s exited with code %d", pdfInfoBin, result.ExitCode)
	}

	for _, line := range strings.Split(string(result.Stdout), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		return strconv.Atoi(fields[1])
	}
	return 0, fmt.Errorf("no page count in %s output", pdfInfoBin)
}

func (b *RevisionBuilder) failure(spec schema.FrameSpec, reason schema.FailureReason, detail string, start time.Time) schema.BuildOutcome {
	return schema.BuildOutcome{
		Spec:     spec,
		Status:   schema.StatusFailure,
		Reason:   reason,
		Detail:   detail,
		Duration: time.Since(start),
	}
}

// copyFile copies src to dst, truncating any existing file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// tailLines returns the last n non-empty lines of tool output, flattened.
func tailLines(output []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	var kept []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimSpace(line))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}
