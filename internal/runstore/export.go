package runstore

import (
	"errors"
	"fmt"

	"github.com/jank324/paper-lapse/internal/parquet"
)

// ExecuteRunsExport performs the actual export of run data to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the run store
	store := Manager.GetRunStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total frame records: %d\n", status.TotalFrames)

	// Retrieve all runs
	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	// Retrieve all frame outcomes
	frames, err := store.GetAllFrames()
	if err != nil {
		return fmt.Errorf("failed to retrieve frames: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetFrames := parquet.ConvertStoredFrames(frames)

	// Write runs to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	// Write frame outcomes to Parquet
	framesFile := outputFile + ".frames.parquet"
	if err := parquet.WriteFramesParquet(parquetFrames, framesFile); err != nil {
		return fmt.Errorf("failed to write frames: %w", err)
	}
	fmt.Printf("Exported %d frame records to: %s\n", len(parquetFrames), framesFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
