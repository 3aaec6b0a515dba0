package core

import (
	"context"
	"errors"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
)

// BuildTimeline reads the full commit history of the repository, oldest
// first. The timeline is read once per run and treated as immutable. An
// invalid repository or one with zero commits yields a RepositoryError.
func BuildTimeline(ctx context.Context, client contract.GitClient, repoPath string) (schema.Timeline, error) {
	timeline, err := client.ListCommits(ctx, repoPath)
	if err != nil {
		return nil, &RepositoryError{Path: repoPath, Err: err}
	}
	if len(timeline) == 0 {
		return nil, &RepositoryError{Path: repoPath, Err: errors.New("no commits reachable from HEAD")}
	}
	return timeline, nil
}
