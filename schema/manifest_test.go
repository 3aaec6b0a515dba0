package schema

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *Manifest {
	return &Manifest{
		RepoPath:  "/papers/thesis",
		HeadHash:  "b0000000",
		Policy:    EndOfDay,
		Timezone:  "Europe/Berlin",
		CreatedAt: time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC),
		Attempted: 3,
		Succeeded: 2,
		Failed:    1,
		Frames: []FrameRecord{
			{Index: 0, CommitHash: "a0000000", Status: StatusSuccess, FramePath: "/frames/0000.png", Pages: 4},
			{Index: 1, CommitHash: "a1111111", Status: StatusFailure, Reason: ReasonCompilerError, Detail: "missing macro"},
			{Index: 2, CommitHash: "a2222222", Status: StatusSuccess, FramePath: "/frames/0002.png", Pages: 5},
		},
		GridLayout: "3x2",
	}
}

// TestManifestRoundTrip tests writing and re-reading a manifest.
func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	original := sampleManifest()

	require.NoError(t, original.Write(path))

	loaded, err := ReadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, original.RepoPath, loaded.RepoPath)
	assert.Equal(t, original.HeadHash, loaded.HeadHash)
	assert.Equal(t, original.Policy, loaded.Policy)
	assert.Equal(t, original.Attempted, loaded.Attempted)
	require.Len(t, loaded.Frames, 3)
	assert.Equal(t, original.Frames[1].Reason, loaded.Frames[1].Reason)
	assert.Equal(t, original.GridLayout, loaded.GridLayout)
}

// TestReadManifestErrors tests missing and malformed manifest files.
func TestReadManifestErrors(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

// TestMissingIndices tests gap reporting for frames without images.
func TestMissingIndices(t *testing.T) {
	m := sampleManifest()
	assert.Equal(t, []int{1}, m.MissingIndices())

	m.Frames[1].FramePath = "/frames/0001.png"
	assert.Empty(t, m.MissingIndices())
}

// TestFailuresByReason tests the failure tally.
func TestFailuresByReason(t *testing.T) {
	m := sampleManifest()
	m.Frames = append(m.Frames,
		FrameRecord{Index: 3, Status: StatusFailure, Reason: ReasonCompilerError},
		FrameRecord{Index: 4, Status: StatusFailure, Reason: ReasonTimeout},
	)

	counts := m.FailuresByReason()
	assert.Equal(t, 2, counts[ReasonCompilerError])
	assert.Equal(t, 1, counts[ReasonTimeout])
	assert.Equal(t, 0, counts[ReasonCheckoutFailed])
}

// TestCommitWhen tests timestamp source selection.
func TestCommitWhen(t *testing.T) {
	c := Commit{
		AuthorTime: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		CommitTime: time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, c.AuthorTime, c.When(AuthorTimestamp))
	assert.Equal(t, c.CommitTime, c.When(CommitTimestamp))
}

// TestBuildOutcomeSucceeded tests the success predicate.
func TestBuildOutcomeSucceeded(t *testing.T) {
	assert.True(t, BuildOutcome{Status: StatusSuccess}.Succeeded())
	assert.False(t, BuildOutcome{Status: StatusFailure}.Succeeded())
}
