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

// PrintRunsStatus outputs recorded runs plus backend status, dispatching based
// on the output format configured.
func PrintRunsStatus(runs []schema.RunRecord, status schema.RunStoreStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONRuns(runs, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVRuns(runs, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printRunsTable(runs, status, cfg); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// printJSONRuns handles opening the file and calling the JSON writer.
func printJSONRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, runs)
	}, "Wrote JSON")
}

// printCSVRuns handles opening the file and calling the CSV writer.
func printCSVRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"run_id", "start_time", "end_time", "repo_path", "policy", "attempted", "succeeded", "failed", "canceled"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, r := range runs {
				endTime := ""
				if r.EndTime != nil {
					endTime = r.EndTime.Format(time.RFC3339)
				}
				row := []string{
					strconv.FormatInt(r.RunID, 10),
					r.StartTime.Format(time.RFC3339),
					endTime,
					r.RepoPath,
					r.Policy,
					strconv.Itoa(r.Attempted),
					strconv.Itoa(r.Succeeded),
					strconv.Itoa(r.Failed),
					strconv.FormatBool(r.Canceled),
				}
				if err := csvWriter.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// printRunsTable prints the recorded runs in a run-centric table.
func printRunsTable(runs []schema.RunRecord, status schema.RunStoreStatus, cfg *contract.Config) error {
	table := tablewriter.NewWriter(os.Stdout)

	headers := []string{"Run", "Started", "Repo", "Policy", "Attempted", "Succeeded", "Failed", "Status"}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range runs {
		runStatus := "done"
		if r.EndTime == nil {
			runStatus = "running"
		}
		if r.Canceled {
			runStatus = contract.CanceledValue
			if cfg.UseColors {
				runStatus = contract.CanceledColor.Sprint(runStatus)
			}
		}
		row := []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Format("2006-01-02 15:04"),
			contract.TruncatePath(r.RepoPath, GetMaxTablePathWidth(cfg)),
			r.Policy,
			strconv.Itoa(r.Attempted),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			runStatus,
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Backend: %s (%d runs, %d frame records)\n", status.Backend, status.TotalRuns, status.TotalFrames)
	if !status.LastRunTime.IsZero() {
		fmt.Printf("Last run: %s\n", status.LastRunTime.Format(time.RFC3339))
	}
	return nil
}
