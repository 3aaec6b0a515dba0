// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteManifest prints the run manifest using the configured output format.
func (ow *OutWriter) WriteManifest(m *schema.Manifest, cfg *contract.Config, duration time.Duration) error {
	return PrintManifestResults(m, cfg, duration)
}

// WriteTimeline prints a frame selection preview using the configured output format.
func (ow *OutWriter) WriteTimeline(specs []schema.FrameSpec, cfg *contract.Config, totalCommits int) error {
	return PrintTimelinePreview(specs, cfg, totalCommits)
}

// WriteRuns prints recorded runs using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, status schema.RunStoreStatus, cfg *contract.Config) error {
	return PrintRunsStatus(runs, status, cfg)
}

// GetMaxTablePathWidth calculates the maximum width for frame paths in table
// output based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting:
	// Index + Commit + Status + Reason + Pages + Build with borders/padding
	baseWidth := 60

	// Calculate available space for path
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable path width
		return 15
	}
	if available > 70 {
		// Maximum path width to prevent overly long paths
		return 70
	}
	return available
}
