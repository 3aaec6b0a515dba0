package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ManifestFileName is the manifest filename inside the frame output directory.
const ManifestFileName = "manifest.json"

// FrameRecord is one FrameSpec's final entry in the manifest: which commit it
// came from, whether it built and rendered, and where the frame lives.
type FrameRecord struct {
	Index      int           `json:"index"`
	CommitHash string        `json:"commit"`
	CommitTime time.Time     `json:"commitTime"`
	Subject    string        `json:"subject,omitempty"`
	Status     BuildStatus   `json:"status"`
	Reason     FailureReason `json:"reason,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	FramePath  string        `json:"frame,omitempty"`
	Pages      int           `json:"pages,omitempty"`
	BuildMs    int64         `json:"buildMs,omitempty"`
}

// Manifest is the durable record of one pipeline run. It enumerates every
// FrameSpec's outcome so the encoder (and a human) can tell which indices are
// present, which are missing, and why. Re-running against an unchanged
// repository with the same policy reproduces the same manifest.
type Manifest struct {
	RepoPath   string        `json:"repoPath"`
	HeadHash   string        `json:"headHash"`
	Policy     SelectionMode `json:"policy"`
	Timezone   string        `json:"timezone,omitempty"`
	Interval   string        `json:"interval,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	Canceled   bool          `json:"canceled"`
	Attempted  int           `json:"attempted"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Frames     []FrameRecord `json:"frames"`
	VideoPath  string        `json:"video,omitempty"`
	GridLayout string        `json:"grid,omitempty"`
}

// MissingIndices returns the frame indices that have no rendered image,
// in ascending order. These are the documented gaps in the sequence.
func (m *Manifest) MissingIndices() []int {
	var missing []int
	for _, f := range m.Frames {
		if f.FramePath == "" {
			missing = append(missing, f.Index)
		}
	}
	return missing
}

// FailuresByReason tallies failed frames per reason.
func (m *Manifest) FailuresByReason() map[FailureReason]int {
	counts := make(map[FailureReason]int)
	for _, f := range m.Frames {
		if f.Status == StatusFailure {
			counts[f.Reason]++
		}
	}
	return counts
}

// Write serializes the manifest as indented JSON at the given path.
func (m *Manifest) Write(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest at %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest previously written by Write.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest at %q: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// RunRecord is run-level metadata persisted by the run store.
type RunRecord struct {
	RunID        int64
	StartTime    time.Time
	EndTime      *time.Time
	RepoPath     string
	HeadHash     string
	Policy       string
	Attempted    int
	Succeeded    int
	Failed       int
	Canceled     bool
	ConfigParams *string // JSON-encoded configuration snapshot
}

// StoredFrame is one frame outcome persisted by the run store.
type StoredFrame struct {
	RunID      int64
	FrameIndex int
	CommitHash string
	CommitTime time.Time
	Status     string
	Reason     string
	FramePath  string
	Pages      int
	BuildMs    int64
}

// RunStoreStatus describes the state of the run store backend.
type RunStoreStatus struct {
	Backend     string
	Connected   bool
	TotalRuns   int
	TotalFrames int
	LastRunTime time.Time
}
