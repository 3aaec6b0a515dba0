package core

import (
	"context"
	"fmt"

	"github.com/jank324/paper-lapse/internal/contract"
)

// workingTreeLease scopes exclusive access to the repository's single working
// tree. The original ref is captured at acquisition and restored exactly once
// at release; release runs on every exit path, including cancellation, so the
// repository always returns to its pre-run state.
type workingTreeLease struct {
	client      contract.GitClient
	repoPath    string
	originalRef string
	released    bool
}

// acquireWorkingTree records the currently active ref and hands out the lease.
// Only one lease may exist per run; builds that share it run sequentially.
func acquireWorkingTree(ctx context.Context, client contract.GitClient, repoPath string) (*workingTreeLease, error) {
	ref, err := client.CurrentRef(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to record current ref: %w", err)
	}
	return &workingTreeLease{
		client:      client,
		repoPath:    repoPath,
		originalRef: ref,
	}, nil
}

// CheckoutCommit materializes the given commit in the working tree.
func (l *workingTreeLease) CheckoutCommit(ctx context.Context, hash string) error {
	return l.client.Checkout(ctx, l.repoPath, hash)
}

// Release restores the ref that was active when the lease was acquired.
// The restore runs even when the surrounding context is already canceled.
func (l *workingTreeLease) Release(ctx context.Context) error {
	if l.released {
		return nil
	}
	l.released = true

	restoreCtx := context.WithoutCancel(ctx)
	if err := l.client.Checkout(restoreCtx, l.repoPath, l.originalRef); err != nil {
		return fmt.Errorf("failed to restore ref %q: %w", l.originalRef, err)
	}
	return nil
}
