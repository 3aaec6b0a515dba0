// Package schema has configs, models and shared types for all parts of paperlapse.
package schema

import "time"

// Commit is one revision from the repository history. Commits are read once
// at startup and never mutated afterwards.
type Commit struct {
	Hash       string    `json:"hash"`       // Full commit hash
	Subject    string    `json:"subject"`    // First line of the commit message
	AuthorTime time.Time `json:"authorTime"` // Author timestamp
	CommitTime time.Time `json:"commitTime"` // Committer timestamp
	Ordinal    int       `json:"ordinal"`    // Zero-based position in history, oldest first
}

// When returns the timestamp used for frame scheduling, according to the
// configured timestamp source.
func (c Commit) When(source TimestampSource) time.Time {
	if source == CommitTimestamp {
		return c.CommitTime
	}
	return c.AuthorTime
}

// Timeline is the full ordered commit history, oldest first. Ordinals are
// strictly increasing; timestamps may not be monotonic (clock skew, rebases)
// and must never be used to reorder commits.
type Timeline []Commit

// FrameSpec pairs a playback position with the commit that produces it.
// Indices are zero-based and contiguous across the selected subsequence.
type FrameSpec struct {
	Index  int    `json:"index"`
	Source Commit `json:"source"`
}

// BuildOutcome records the result of building one FrameSpec. It is created
// exactly once per spec and never retried or rewritten.
type BuildOutcome struct {
	Spec         FrameSpec
	Status       BuildStatus
	Reason       FailureReason
	Detail       string        // Trimmed tool stderr or error text for failed builds
	ArtifactPath string        // Staged PDF path, set on success
	Pages        int           // Page count of the artifact, 0 if unknown
	Duration     time.Duration // Wall time spent building this revision
}

// Succeeded reports whether the build produced a usable artifact.
func (o BuildOutcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// FrameImage is one rendered raster frame, produced only from successful
// build outcomes. The filename encodes the frame index so a directory
// listing sorts into playback order.
type FrameImage struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}
