// Package parquet provides data structures and functions for exporting
// paperlapse run data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/jank324/paper-lapse/schema"
	"github.com/parquet-go/parquet-go"
)

// PipelineRun represents a single pipeline run with metadata.
// This struct maps to the paperlapse_runs database table.
type PipelineRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RepoPath is the repository the run was produced from
	RepoPath string `parquet:"repo_path,snappy"`

	// HeadHash is the HEAD commit at run time (nullable until the run finishes)
	HeadHash *string `parquet:"head_hash,optional,snappy"`

	// Policy is the selection policy used for this run
	Policy *string `parquet:"policy,optional,snappy"`

	// Attempted is the number of frames the run attempted to build
	Attempted int32 `parquet:"attempted,snappy"`

	// Succeeded is the number of frames that built and rendered
	Succeeded int32 `parquet:"succeeded,snappy"`

	// Failed is the number of frames that failed at any stage
	Failed int32 `parquet:"failed,snappy"`

	// Canceled marks a run that was interrupted before completing
	Canceled bool `parquet:"canceled,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FrameOutcome represents the outcome of one frame in a run.
// This struct maps to the paperlapse_frames database table.
type FrameOutcome struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// FrameIndex is the zero-based playback position of the frame
	FrameIndex int32 `parquet:"frame_index,snappy"`

	// CommitHash is the commit the frame was built from
	CommitHash string `parquet:"commit_hash,snappy"`

	// CommitTime is the scheduling timestamp of the source commit
	CommitTime time.Time `parquet:"commit_time,snappy"`

	// Status is "success" or "failure"
	Status string `parquet:"status,snappy"`

	// Reason classifies a failure (nullable on success)
	Reason *string `parquet:"reason,optional,snappy"`

	// FramePath is the rendered PNG location (nullable on failure)
	FramePath *string `parquet:"frame_path,optional,snappy"`

	// Pages is the page count of the compiled artifact
	Pages int32 `parquet:"pages,snappy"`

	// BuildMs is the build wall time in milliseconds
	BuildMs int64 `parquet:"build_ms,snappy"`
}

// WriteRunsParquet writes a slice of PipelineRun structs to a Parquet file.
func WriteRunsParquet(data []PipelineRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the PipelineRun struct tags
	writer := parquet.NewGenericWriter[PipelineRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteFramesParquet writes a slice of FrameOutcome structs to a Parquet file.
func WriteFramesParquet(data []FrameOutcome, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the FrameOutcome struct tags
	writer := parquet.NewGenericWriter[FrameOutcome](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to PipelineRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []PipelineRun {
	result := make([]PipelineRun, len(records))
	for i, record := range records {
		run := PipelineRun{
			RunID:        record.RunID,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			RepoPath:     record.RepoPath,
			Attempted:    int32(record.Attempted),
			Succeeded:    int32(record.Succeeded),
			Failed:       int32(record.Failed),
			Canceled:     record.Canceled,
			ConfigParams: record.ConfigParams,
		}
		if record.HeadHash != "" {
			run.HeadHash = &records[i].HeadHash
		}
		if record.Policy != "" {
			run.Policy = &records[i].Policy
		}
		result[i] = run
	}
	return result
}

// ConvertStoredFrames converts schema.StoredFrame to FrameOutcome for Parquet export.
func ConvertStoredFrames(records []schema.StoredFrame) []FrameOutcome {
	result := make([]FrameOutcome, len(records))
	for i, record := range records {
		frame := FrameOutcome{
			RunID:      record.RunID,
			FrameIndex: int32(record.FrameIndex),
			CommitHash: record.CommitHash,
			CommitTime: record.CommitTime,
			Status:     record.Status,
			Pages:      int32(record.Pages),
			BuildMs:    record.BuildMs,
		}
		if record.Reason != "" {
			frame.Reason = &records[i].Reason
		}
		if record.FramePath != "" {
			frame.FramePath = &records[i].FramePath
		}
		result[i] = frame
	}
	return result
}
