package contract

import (
	"context"

	"github.com/jank324/paper-lapse/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []interface{}
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// ListCommits implements the GitClient interface.
func (m *MockGitClient) ListCommits(ctx context.Context, repoPath string) (schema.Timeline, error) {
	ret := m.Called(ctx, repoPath)
	timeline, _ := ret.Get(0).(schema.Timeline)
	return timeline, ret.Error(1)
}

// CurrentRef implements the GitClient interface.
func (m *MockGitClient) CurrentRef(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// Checkout implements the GitClient interface.
func (m *MockGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	ret := m.Called(ctx, repoPath, ref)
	return ret.Error(0)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// MockToolRunner is a mock implementation of ToolRunner for testing.
type MockToolRunner struct {
	mock.Mock
}

var _ ToolRunner = &MockToolRunner{} // Compile-time check

// Run implements the ToolRunner interface.
func (m *MockToolRunner) Run(ctx context.Context, spec ToolSpec) (*ToolResult, error) {
	ret := m.Called(ctx, spec)
	result, _ := ret.Get(0).(*ToolResult)
	return result, ret.Error(1)
}
