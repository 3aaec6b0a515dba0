package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jank324/paper-lapse/schema"
)

// Outcome label constants.
const (
	SuccessValue  = "OK"
	FailureValue  = "Failed"
	CanceledValue = "Canceled"
)

// Color variables for console output.
var (
	SuccessColor  = color.New(color.FgGreen)             // successColor marks a usable frame.
	FailureColor  = color.New(color.FgRed, color.Bold)   // failureColor marks a skipped frame.
	CanceledColor = color.New(color.FgYellow, color.Bold) // canceledColor marks an interrupted run.
)

// GetPlainStatusLabel returns a plain text label for a frame outcome.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainStatusLabel(status schema.BuildStatus) string {
	if status == schema.StatusSuccess {
		return SuccessValue
	}
	return FailureValue
}

// GetColorStatusLabel returns a colored text label for console output (table).
func GetColorStatusLabel(status schema.BuildStatus) string {
	text := GetPlainStatusLabel(status)
	if status == schema.StatusSuccess {
		return SuccessColor.Sprint(text)
	}
	return FailureColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the
// provided file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and
// at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ShortHash abbreviates a commit hash for display.
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// Define the regular expression to capture "N [units]".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute|second)s?$`)

// ParseLookbackDuration converts strings like "10 minutes" or "720h" into a
// single time.Duration. It first tries Go's built-in time.ParseDuration for
// standard formats, then falls back to custom parsing for human-readable ones.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	// Try Go's built-in duration parsing first (e.g., "720h", "168h", "30m")
	if duration, err := time.ParseDuration(s); err == nil {
		if duration == 0 {
			return 0, errors.New("zero duration is not useful")
		}
		return duration, nil
	}

	// Fall back to custom parsing for human-readable formats (e.g., "30 days", "2 weeks")
	s = strings.ToLower(s)
	matches := lookbackDurationRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	var totalDuration time.Duration

	switch unit {
	case "year":
		// Approximation: 1 year ≈ 365 days
		totalDuration = time.Duration(value) * 365 * 24 * time.Hour
	case "month":
		// Approximation: 1 month ≈ 30 days
		totalDuration = time.Duration(value) * 30 * 24 * time.Hour
	case "week":
		totalDuration = time.Duration(value) * 7 * 24 * time.Hour
	case "day":
		totalDuration = time.Duration(value) * 24 * time.Hour
	case "hour":
		totalDuration = time.Duration(value) * time.Hour
	case "minute":
		totalDuration = time.Duration(value) * time.Minute
	case "second":
		totalDuration = time.Duration(value) * time.Second
	default:
		// Should be caught by the regex
		return 0, errors.New("unsupported time unit")
	}

	if totalDuration == 0 {
		return 0, errors.New("zero duration is not useful")
	}

	return totalDuration, nil
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".paperlapse_runs.db"
	}
	return filepath.Join(homeDir, ".paperlapse_runs.db")
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}
