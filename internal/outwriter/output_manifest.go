package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintManifestResults outputs the run manifest, dispatching based on the output format configured.
func PrintManifestResults(m *schema.Manifest, cfg *contract.Config, duration time.Duration) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONManifest(m, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVManifest(m, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printManifestTable(m, cfg, duration); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// printJSONManifest handles opening the file and calling the JSON writer.
func printJSONManifest(m *schema.Manifest, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, m)
	}, "Wrote JSON")
}

// printCSVManifest handles opening the file and calling the CSV writer.
func printCSVManifest(m *schema.Manifest, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"index", "commit", "commit_time", "status", "reason", "frame", "pages", "build_ms"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, f := range m.Frames {
				row := []string{
					strconv.Itoa(f.Index),
					f.CommitHash,
					f.CommitTime.Format(time.RFC3339),
					contract.GetPlainStatusLabel(f.Status),
					string(f.Reason),
					f.FramePath,
					strconv.Itoa(f.Pages),
					strconv.FormatInt(f.BuildMs, 10),
				}
				if err := csvWriter.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// printManifestTable prints the per-frame outcomes in the frame-centric format,
// using the tablewriter API.
func printManifestTable(m *schema.Manifest, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	// 1. Define Headers
	headers := []string{"Frame", "Commit", "Time", "Status", "Reason", "Pages", "Build"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Prepare Data Rows
	var data [][]string
	for _, f := range m.Frames {
		label := contract.GetPlainStatusLabel(f.Status)
		if cfg.UseColors {
			label = contract.GetColorStatusLabel(f.Status)
		}
		row := []string{
			fmt.Sprintf("%04d", f.Index),
			contract.ShortHash(f.CommitHash),
			f.CommitTime.Format("2006-01-02 15:04"),
			label,
			string(f.Reason),
			strconv.Itoa(f.Pages),
			(time.Duration(f.BuildMs) * time.Millisecond).String(),
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	fmt.Printf("Attempted %d frames: %d succeeded, %d failed\n", m.Attempted, m.Succeeded, m.Failed)
	if missing := m.MissingIndices(); len(missing) > 0 {
		fmt.Printf("Missing frame indices: %v\n", missing)
	}
	for reason, count := range m.FailuresByReason() {
		fmt.Printf("  %s: %d\n", reason, count)
	}
	if m.Canceled {
		canceledLabel := contract.CanceledValue
		if cfg.UseColors {
			canceledLabel = contract.CanceledColor.Sprint(canceledLabel)
		}
		fmt.Printf("Run was %s before completing; remaining frames were not attempted\n", canceledLabel)
	}
	if m.VideoPath != "" {
		fmt.Printf("Encoded video: %s\n", m.VideoPath)
	}
	fmt.Printf("Pipeline completed in %v with %d workers. Runs backend: %s\n", duration, cfg.Workers, cfg.RunsBackend)
	return nil
}
