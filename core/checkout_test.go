package core

import (
	"context"
	"errors"
	"testing"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestWorkingTreeLease tests ref capture and restoration.
func TestWorkingTreeLease(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire and release", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("CurrentRef", ctx, "/repo").Return("main", nil)
		client.On("Checkout", mock.Anything, "/repo", "a0000000").Return(nil)
		client.On("Checkout", mock.Anything, "/repo", "main").Return(nil)

		lease, err := acquireWorkingTree(ctx, client, "/repo")
		require.NoError(t, err)

		require.NoError(t, lease.CheckoutCommit(ctx, "a0000000"))
		require.NoError(t, lease.Release(ctx))
		client.AssertExpectations(t)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("CurrentRef", ctx, "/repo").Return("main", nil)
		client.On("Checkout", mock.Anything, "/repo", "main").Return(nil).Once()

		lease, err := acquireWorkingTree(ctx, client, "/repo")
		require.NoError(t, err)

		require.NoError(t, lease.Release(ctx))
		require.NoError(t, lease.Release(ctx))
		client.AssertExpectations(t)
	})

	t.Run("release runs after cancellation", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("CurrentRef", mock.Anything, "/repo").Return("main", nil)
		client.On("Checkout", mock.MatchedBy(func(c context.Context) bool {
			// The restore context must survive the canceled parent.
			return c.Err() == nil
		}), "/repo", "main").Return(nil)

		lease, err := acquireWorkingTree(ctx, client, "/repo")
		require.NoError(t, err)

		canceledCtx, cancel := context.WithCancel(ctx)
		cancel()

		require.NoError(t, lease.Release(canceledCtx))
		client.AssertExpectations(t)
	})

	t.Run("acquire fails when ref unknown", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("CurrentRef", ctx, "/repo").Return("", errors.New("bad repo"))

		_, err := acquireWorkingTree(ctx, client, "/repo")
		assert.Error(t, err)
	})

	t.Run("release surfaces restore failure", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("CurrentRef", ctx, "/repo").Return("main", nil)
		client.On("Checkout", mock.Anything, "/repo", "main").Return(errors.New("disk gone"))

		lease, err := acquireWorkingTree(ctx, client, "/repo")
		require.NoError(t, err)

		assert.Error(t, lease.Release(ctx))
	})
}
