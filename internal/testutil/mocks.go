// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/runoshun/ci-triage/internal/domain"
)

// LogEntry is one message recorded by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
}

// MockLogger is a test double for domain.Logger that records every message.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, Category: category, Msg: msg})
}

// Trace records a TRACE entry.
func (m *MockLogger) Trace(category, msg string) { m.record("TRACE", category, msg) }

// Debug records a DEBUG entry.
func (m *MockLogger) Debug(category, msg string) { m.record("DEBUG", category, msg) }

// Info records an INFO entry.
func (m *MockLogger) Info(category, msg string) { m.record("INFO", category, msg) }

// Warn records a WARN entry.
func (m *MockLogger) Warn(category, msg string) { m.record("WARN", category, msg) }

// Error records an ERROR entry.
func (m *MockLogger) Error(category, msg string) { m.record("ERROR", category, msg) }

// Contains reports whether a message at level contains substr.
func (m *MockLogger) Contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// CreatedIssueCall records a CreateIssue call.
type CreatedIssueCall struct {
	Title  string
	Body   string
	Labels []string
}

// MockRunProvider is a test double for domain.RunProvider.
// Fields are ordered to minimize memory padding.
type MockRunProvider struct {
	Run             *domain.Run
	FetchRunErr     error
	FetchJobsErr    error
	FetchLogsErr    error
	FetchIssuesErr  error
	CreateLabelErr  error
	CreateIssueErr  error
	IssuesByLabel   map[string][]domain.ExistingIssue
	Jobs            []domain.Job
	Logs            []domain.RawLog
	CreatedLabels   []string
	CreatedIssues   []CreatedIssueCall
	QueriedLabels   []string
	NextIssueNumber int
	mu              sync.Mutex
}

// NewMockRunProvider creates a MockRunProvider serving a failed run.
func NewMockRunProvider() *MockRunProvider {
	return &MockRunProvider{
		Run: &domain.Run{
			ID:         "123",
			URL:        "https://github.com/owner/repo/actions/runs/123",
			Conclusion: domain.ConclusionFailure,
		},
		IssuesByLabel:   make(map[string][]domain.ExistingIssue),
		NextIssueNumber: 1,
	}
}

// Ensure MockRunProvider implements domain.RunProvider.
var _ domain.RunProvider = (*MockRunProvider)(nil)

// FetchRun returns the configured run.
func (m *MockRunProvider) FetchRun(_ context.Context, runID string) (*domain.Run, error) {
	if m.FetchRunErr != nil {
		return nil, m.FetchRunErr
	}
	if m.Run == nil {
		return nil, fmt.Errorf("run %s: %w", runID, domain.ErrNotFound)
	}
	return m.Run, nil
}

// FetchJobs returns the configured jobs.
func (m *MockRunProvider) FetchJobs(_ context.Context, _ string) ([]domain.Job, error) {
	if m.FetchJobsErr != nil {
		return nil, m.FetchJobsErr
	}
	return m.Jobs, nil
}

// FetchRawLogs returns the configured logs.
func (m *MockRunProvider) FetchRawLogs(_ context.Context, _ string) ([]domain.RawLog, error) {
	if m.FetchLogsErr != nil {
		return nil, m.FetchLogsErr
	}
	return m.Logs, nil
}

// FetchOpenIssues returns the issues configured for the label.
func (m *MockRunProvider) FetchOpenIssues(_ context.Context, label string) ([]domain.ExistingIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueriedLabels = append(m.QueriedLabels, label)
	if m.FetchIssuesErr != nil {
		return nil, m.FetchIssuesErr
	}
	return m.IssuesByLabel[label], nil
}

// CreateLabel records the label.
func (m *MockRunProvider) CreateLabel(_ context.Context, name, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateLabelErr != nil {
		return m.CreateLabelErr
	}
	m.CreatedLabels = append(m.CreatedLabels, name)
	return nil
}

// CreateIssue records the issue and returns a numbered result.
func (m *MockRunProvider) CreateIssue(_ context.Context, title, body string, labels []string) (*domain.CreatedIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateIssueErr != nil {
		return nil, m.CreateIssueErr
	}
	m.CreatedIssues = append(m.CreatedIssues, CreatedIssueCall{Title: title, Body: body, Labels: labels})
	n := m.NextIssueNumber
	m.NextIssueNumber++
	return &domain.CreatedIssue{
		Number: n,
		URL:    fmt.Sprintf("https://github.com/owner/repo/issues/%d", n),
	}, nil
}

// MockExecutor is a test double for domain.CommandExecutor.
// Handler decides the output of every command; Calls records them in order.
type MockExecutor struct {
	Handler func(cmd *domain.ExecCommand) ([]byte, error)
	Calls   []*domain.ExecCommand
	mu      sync.Mutex
}

// Ensure MockExecutor implements domain.CommandExecutor.
var _ domain.CommandExecutor = (*MockExecutor)(nil)

// run records the command and delegates to Handler.
func (m *MockExecutor) run(cmd *domain.ExecCommand) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, cmd)
	h := m.Handler
	m.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(cmd)
}

// ExecuteWithContext records the command and writes Handler's output to stdout,
// or to stderr when Handler fails.
func (m *MockExecutor) ExecuteWithContext(ctx context.Context, cmd *domain.ExecCommand, stdout, stderr io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := m.run(cmd)
	w := stdout
	if err != nil {
		w = stderr
	}
	if w != nil && len(out) > 0 {
		if _, werr := io.Copy(w, bytes.NewReader(out)); werr != nil {
			return werr
		}
	}
	return err
}

// CallArgs returns the space-joined arguments of every recorded call.
func (m *MockExecutor) CallArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		args[i] = strings.Join(c.Args, " ")
	}
	return args
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config  *domain.Config
	LoadErr error
	Infos   []domain.ConfigInfo
}

// NewMockConfigLoader creates a MockConfigLoader returning the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Ensure MockConfigLoader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// Sources returns the configured infos.
func (m *MockConfigLoader) Sources() []domain.ConfigInfo {
	return m.Infos
}

// MockRemoteDetector is a test double for domain.RemoteDetector.
type MockRemoteDetector struct {
	Err error
	URL string
}

// OriginURL returns the configured URL.
func (m *MockRemoteDetector) OriginURL() (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.URL, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	Err        error
	RepoPath   string
	GlobalPath string
	Calls      []string
}

// Ensure MockConfigManager implements domain.ConfigManager.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// InitRepoConfig records the call and returns RepoPath.
func (m *MockConfigManager) InitRepoConfig() (string, error) {
	m.Calls = append(m.Calls, "repo")
	if m.Err != nil {
		return "", m.Err
	}
	return m.RepoPath, nil
}

// InitGlobalConfig records the call and returns GlobalPath.
func (m *MockConfigManager) InitGlobalConfig() (string, error) {
	m.Calls = append(m.Calls, "global")
	if m.Err != nil {
		return "", m.Err
	}
	return m.GlobalPath, nil
}
