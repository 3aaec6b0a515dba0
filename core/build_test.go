package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// buildConfig returns a config pointing at temp repo and output directories.
func buildConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		RepoPath:      t.TempDir(),
		OutputDir:     t.TempDir(),
		Paper:         "main",
		BuildTimeout:  time.Minute,
		RenderTimeout: time.Minute,
	}
}

// toolMatcher matches runner invocations by binary name.
func toolMatcher(binary string) interface{} {
	return mock.MatchedBy(func(spec contract.ToolSpec) bool {
		return spec.Binary == binary
	})
}

func buildSpec() schema.FrameSpec {
	return schema.FrameSpec{
		Index: 3,
		Source: schema.Commit{
			Hash:       "a0000000deadbeef",
			AuthorTime: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
			Ordinal:    3,
		},
	}
}

// TestBuildSuccess tests the full pass sequence with a staged artifact.
func TestBuildSuccess(t *testing.T) {
	ctx := context.Background()
	cfg := buildConfig(t)

	// The compiler writes the PDF into the working tree.
	pdfPath := filepath.Join(cfg.RepoPath, "main.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.5 fake"), 0o644))

	client := &contract.MockGitClient{}
	client.On("Checkout", ctx, cfg.RepoPath, "a0000000deadbeef").Return(nil)

	runner := &contract.MockToolRunner{}
	runner.On("Run", ctx, toolMatcher("pdflatex")).Return(&contract.ToolResult{ExitCode: 0}, nil).Times(3)
	// bibtex exits non-zero on documents without citations; that is ignored.
	runner.On("Run", ctx, toolMatcher("bibtex")).Return(&contract.ToolResult{ExitCode: 2}, nil).Times(2)
	runner.On("Run", ctx, toolMatcher("pdfinfo")).Return(&contract.ToolResult{
		ExitCode: 0,
		Stdout:   []byte("Title:          untitled\nPages:          12\n"),
	}, nil)

	lease := &workingTreeLease{client: client, repoPath: cfg.RepoPath}
	builder := newRevisionBuilder(cfg, runner, lease)

	outcome := builder.Build(ctx, buildSpec())
	require.True(t, outcome.Succeeded())
	assert.Equal(t, 12, outcome.Pages)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "0003.pdf"), outcome.ArtifactPath)

	// The artifact was copied out of the working tree.
	staged, err := os.ReadFile(outcome.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.5 fake"), staged)

	client.AssertExpectations(t)
	runner.AssertExpectations(t)
}

// TestBuildCheckoutFailed tests classification when the commit cannot be
// materialized. No tool runs in that case.
func TestBuildCheckoutFailed(t *testing.T) {
	ctx := context.Background()
	cfg := buildConfig(t)

	client := &contract.MockGitClient{}
	client.On("Checkout", ctx, cfg.RepoPath, "a0000000deadbeef").Return(errors.New("pathspec not found"))

	runner := &contract.MockToolRunner{}

	lease := &workingTreeLease{client: client, repoPath: cfg.RepoPath}
	builder := newRevisionBuilder(cfg, runner, lease)

	outcome := builder.Build(ctx, buildSpec())
	assert.Equal(t, schema.StatusFailure, outcome.Status)
	assert.Equal(t, schema.ReasonCheckoutFailed, outcome.Reason)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

// TestBuildCompilerError tests classification when the final compiler pass
// exits non-zero.
func TestBuildCompilerError(t *testing.T) {
	ctx := context.Background()
	cfg := buildConfig(t)

	client := &contract.MockGitClient{}
	client.On("Checkout", ctx, cfg.RepoPath, "a0000000deadbeef").Return(nil)

	runner := &contract.MockToolRunner{}
	runner.On("Run", ctx, toolMatcher("pdflatex")).Return(&contract.ToolResult{
		ExitCode: 1,
		Stdout:   []byte("! Undefined control sequence.\nl.42 \\badmacro\n"),
	}, nil).Times(3)
	runner.On("Run", ctx, toolMatcher("bibtex")).Return(&contract.ToolResult{ExitCode: 0}, nil).Times(2)

	lease := &workingTreeLease{client: client, repoPath: cfg.RepoPath}
	builder := newRevisionBuilder(cfg, runner, lease)

	outcome := builder.Build(ctx, buildSpec())
	assert.Equal(t, schema.StatusFailure, outcome.Status)
	assert.Equal(t, schema.ReasonCompilerError, outcome.Reason)
	assert.Contains(t, outcome.Detail, "Undefined control sequence")
}

// TestBuildTimeout tests classification when a compiler pass exceeds its
// time budget.
func TestBuildTimeout(t *testing.T) {
	ctx := context.Background()
	cfg := buildConfig(t)

	client := &contract.MockGitClient{}
	client.On("Checkout", ctx, cfg.RepoPath, "a0000000deadbeef").Return(nil)

	runner := &contract.MockToolRunner{}
	runner.On("Run", ctx, toolMatcher("pdflatex")).Return(&contract.ToolResult{TimedOut: true}, nil).Once()

	lease := &workingTreeLease{client: client, repoPath: cfg.RepoPath}
	builder := newRevisionBuilder(cfg, runner, lease)

	outcome := builder.Build(ctx, buildSpec())
	assert.Equal(t, schema.StatusFailure, outcome.Status)
	assert.Equal(t, schema.ReasonTimeout, outcome.Reason)
}

// TestBuildMissingArtifact tests classification when compilation reports
// success but leaves no usable PDF behind.
func TestBuildMissingArtifact(t *testing.T) {
	ctx := context.Background()
	cfg := buildConfig(t)

	client := &contract.MockGitClient{}
	client.On("Checkout", ctx, cfg.RepoPath, "a0000000deadbeef").Return(nil)

	runner := &contract.MockToolRunner{}
	runner.On("Run", ctx, toolMatcher("pdflatex")).Return(&contract.ToolResult{ExitCode: 0}, nil).Times(3)
	runner.On("Run", ctx, toolMatcher("bibtex")).Return(&contract.ToolResult{ExitCode: 0}, nil).Times(2)

	lease := &workingTreeLease{client: client, repoPath: cfg.RepoPath}
	builder := newRevisionBuilder(cfg, runner, lease)

	outcome := builder.Build(ctx, buildSpec())
	assert.Equal(t, schema.StatusFailure, outcome.Status)
	assert.Equal(t, schema.ReasonMissingArtifact, outcome.Reason)
}

// TestTailLines tests compiler output trimming.
func TestTailLines(t *testing.T) {
	output := []byte("first\n\nsecond\nthird\nfourth\n")
	assert.Equal(t, "third | fourth", tailLines(output, 2))
	assert.Equal(t, "first | second | third | fourth", tailLines(output, 10))
	assert.Equal(t, "", tailLines([]byte("  \n \n"), 3))
}
