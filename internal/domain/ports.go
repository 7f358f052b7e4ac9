package domain

import (
	"context"
	"io"
)

// RunProvider fetches run metadata from a CI provider and writes to its issue tracker.
// Implementations are bound to one repository.
type RunProvider interface {
	// FetchRun retrieves a workflow run.
	FetchRun(ctx context.Context, runID string) (*Run, error)

	// FetchJobs retrieves the jobs of a run, including their steps.
	FetchJobs(ctx context.Context, runID string) ([]Job, error)

	// FetchRawLogs retrieves the raw logs of a run, unordered.
	FetchRawLogs(ctx context.Context, runID string) ([]RawLog, error)

	// FetchOpenIssues retrieves open issues carrying the label.
	FetchOpenIssues(ctx context.Context, label string) ([]ExistingIssue, error)

	// CreateLabel creates a label. An already existing label is not an error.
	CreateLabel(ctx context.Context, name, color string) error

	// CreateIssue creates an issue and returns where it lives.
	CreateIssue(ctx context.Context, title, body string, labels []string) (*CreatedIssue, error)
}

// SnapshotFetcher is implemented by providers that can fetch a whole run at once.
type SnapshotFetcher interface {
	// FetchSnapshot retrieves the run, its jobs and its raw logs.
	FetchSnapshot(ctx context.Context, runID string) (*RunSnapshot, error)
}

// ErrorSummarizer extracts the relevant part of a failed job's log.
type ErrorSummarizer interface {
	// Summarize never fails; unparseable logs are returned as the summary.
	Summarize(text string, kind FailureKind) ErrorSummary

	// LocateFailureLog returns the absolute path of the failure log referenced in text.
	LocateFailureLog(text string, kind FailureKind) (string, error)
}

// Logger provides leveled logging for the triage pipeline.
// The category names the component emitting the message (e.g. "locate", "compose").
type Logger interface {
	Trace(category, msg string)
	Debug(category, msg string)
	Info(category, msg string)
	Warn(category, msg string)
	Error(category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

// Trace implements Logger.
func (NopLogger) Trace(string, string) {}

// Debug implements Logger.
func (NopLogger) Debug(string, string) {}

// Info implements Logger.
func (NopLogger) Info(string, string) {}

// Warn implements Logger.
func (NopLogger) Warn(string, string) {}

// Error implements Logger.
func (NopLogger) Error(string, string) {}

// CommandExecutor executes external commands.
type CommandExecutor interface {
	// ExecuteWithContext runs a command with context and custom stdout/stderr writers.
	ExecuteWithContext(ctx context.Context, cmd *ExecCommand, stdout, stderr io.Writer) error
}

// RemoteDetector discovers the repository a working directory belongs to.
type RemoteDetector interface {
	// OriginURL returns the fetch URL of the origin remote.
	OriginURL() (string, error)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (default <- global <- repo <- explicit).
	Load() (*Config, error)

	// Sources returns the config files considered by Load, in merge order.
	Sources() []ConfigInfo
}

// ConfigManager creates configuration files.
type ConfigManager interface {
	// InitRepoConfig writes the config template to the repository config file.
	InitRepoConfig() (string, error)

	// InitGlobalConfig writes the config template to the global config file.
	InitGlobalConfig() (string, error)
}

// ConfigInfo describes one configuration file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}
