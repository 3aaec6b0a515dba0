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

// PrintTimelinePreview outputs the frame selection without building anything,
// dispatching based on the output format configured.
func PrintTimelinePreview(specs []schema.FrameSpec, cfg *contract.Config, totalCommits int) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONTimeline(specs, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVTimeline(specs, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printTimelineTable(specs, cfg, totalCommits); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// printJSONTimeline handles opening the file and calling the JSON writer.
func printJSONTimeline(specs []schema.FrameSpec, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, specs)
	}, "Wrote JSON")
}

// printCSVTimeline handles opening the file and calling the CSV writer.
func printCSVTimeline(specs []schema.FrameSpec, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"index", "commit", "time", "subject"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, s := range specs {
				row := []string{
					strconv.Itoa(s.Index),
					s.Source.Hash,
					s.Source.When(cfg.Timestamp).Format(time.RFC3339),
					s.Source.Subject,
				}
				if err := csvWriter.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// printTimelineTable prints the selection in a frame-centric table.
func printTimelineTable(specs []schema.FrameSpec, cfg *contract.Config, totalCommits int) error {
	table := tablewriter.NewWriter(os.Stdout)

	headers := []string{"Frame", "Commit", "Time", "Subject"}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range specs {
		row := []string{
			fmt.Sprintf("%04d", s.Index),
			contract.ShortHash(s.Source.Hash),
			s.Source.When(cfg.Timestamp).In(cfg.Timezone).Format("2006-01-02 15:04"),
			contract.TruncatePath(s.Source.Subject, GetMaxTablePathWidth(cfg)),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Selected %d of %d commits with policy %q\n", len(specs), totalCommits, cfg.Mode)
	return nil
}
