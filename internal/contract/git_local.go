package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jank324/paper-lapse/schema"
)

// logFieldSep separates the pretty-format fields in ListCommits output.
// Unit separator is safe because it cannot appear in commit subjects.
const logFieldSep = "\x1f"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// ListCommits implements the GitClient interface. Commits come back oldest
// first with strictly increasing ordinals; timestamps are taken verbatim
// and may be non-monotonic.
func (c *LocalGitClient) ListCommits(ctx context.Context, repoPath string) (schema.Timeline, error) {
	args := []string{
		"log",
		"--reverse",
		"--pretty=format:%H" + logFieldSep + "%at" + logFieldSep + "%ct" + logFieldSep + "%s",
		"HEAD",
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}

	var timeline schema.Timeline
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, logFieldSep, 4)
		if len(parts) < 3 {
			continue
		}
		authorUnix, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable author timestamp for commit %s: %w", parts[0], err)
		}
		commitUnix, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable commit timestamp for commit %s: %w", parts[0], err)
		}
		subject := ""
		if len(parts) == 4 {
			subject = parts[3]
		}
		timeline = append(timeline, schema.Commit{
			Hash:       parts[0],
			Subject:    subject,
			AuthorTime: time.Unix(authorUnix, 0).UTC(),
			CommitTime: time.Unix(commitUnix, 0).UTC(),
			Ordinal:    len(timeline),
		})
	}
	return timeline, nil
}

// CurrentRef implements the GitClient interface. Branch names are preferred
// so restoration reattaches HEAD; a detached HEAD falls back to its hash.
func (c *LocalGitClient) CurrentRef(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "symbolic-ref", "--short", "HEAD")
	if err == nil {
		return strings.TrimSpace(string(out)), nil
	}
	// Detached HEAD: symbolic-ref exits non-zero, fall back to the hash.
	return c.GetRepoHash(ctx, repoPath)
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	_, err := c.Run(ctx, repoPath, "checkout", "--quiet", ref)
	return err
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
