package schema

// Custom string types for type safety.
type (
	// SelectionMode represents the temporal policy that picks frames.
	SelectionMode string

	// TimestampSource represents which commit timestamp drives scheduling.
	TimestampSource string

	// BuildStatus represents the outcome of building one frame.
	BuildStatus string

	// FailureReason classifies per-frame failures.
	FailureReason string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All selection modes supported. The set is closed; selection logic
// dispatches exhaustively over these values.
const (
	EveryCommit SelectionMode = "commit" // default: one frame per commit
	EndOfDay    SelectionMode = "day"    // last commit of each calendar day
	MinInterval SelectionMode = "interval"
)

// All timestamp sources supported.
const (
	AuthorTimestamp TimestampSource = "author" // default
	CommitTimestamp TimestampSource = "commit"
)

// All build statuses supported.
const (
	StatusSuccess BuildStatus = "success"
	StatusFailure BuildStatus = "failure"
)

// Per-frame failure reasons. These are recorded in the manifest and never
// abort the run.
const (
	ReasonNone            FailureReason = ""
	ReasonCheckoutFailed  FailureReason = "checkout_failed"
	ReasonCompilerError   FailureReason = "compiler_error"
	ReasonMissingArtifact FailureReason = "missing_artifact"
	ReasonTimeout         FailureReason = "timeout"
	ReasonRenderError     FailureReason = "render_error"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidSelectionModes lists all valid selection modes.
var ValidSelectionModes = map[SelectionMode]struct{}{
	EveryCommit: {},
	EndOfDay:    {},
	MinInterval: {},
}

// ValidTimestampSources lists all valid timestamp sources.
var ValidTimestampSources = map[TimestampSource]struct{}{
	AuthorTimestamp: {},
	CommitTimestamp: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid run store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
