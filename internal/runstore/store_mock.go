package runstore

import (
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of RunStoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.RunStoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the RunStoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, repoPath string, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, repoPath, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordFrame implements the RunStore interface.
func (m *MockRunStore) RecordFrame(runID int64, rec schema.FrameRecord) error {
	args := m.Called(runID, rec)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, manifest *schema.Manifest) error {
	args := m.Called(runID, endTime, manifest)
	return args.Error(0)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllFrames implements the RunStore interface.
func (m *MockRunStore) GetAllFrames() ([]schema.StoredFrame, error) {
	args := m.Called()
	frames, _ := args.Get(0).([]schema.StoredFrame)
	return frames, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStoreStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
