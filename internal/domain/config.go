package domain

import (
	_ "embed"
	"path/filepath"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigFileName is the name of the global config file.
const ConfigFileName = "config.toml"

// RepoConfigFileName is the name of the per-repository config file.
const RepoConfigFileName = ".ci-triage.toml"

// Defaults shared by the configuration and the pipeline.
const (
	// DefaultMaxBodyLen is the maximum length of a GitHub issue body in characters.
	DefaultMaxBodyLen = 65536
	// DefaultLevenshteinThreshold is the edit distance below which issues are near-duplicates.
	DefaultLevenshteinThreshold = 100
	// DefaultLabelColor is used when creating the issue's base label.
	DefaultLabelColor = "d73a4a"
	// DefaultFailureLabelColor is used when creating failure-kind labels.
	DefaultFailureLabelColor = "fbca04"
	// DefaultRequestsPerSecond limits calls to the provider API.
	DefaultRequestsPerSecond = 5.0
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings  []string        `toml:"-"`
	Summary   SummaryConfig   `toml:"summary"`
	Issue     IssueConfig     `toml:"issue"`
	Duplicate DuplicateConfig `toml:"duplicate"`
	GitHub    GitHubConfig    `toml:"github"`
	Log       LogConfig       `toml:"log"`
}

// SummaryConfig holds log pre-filter settings from [summary] section.
type SummaryConfig struct {
	TrimTimestamp bool `toml:"trim_timestamp"` // Strip line-leading ISO-8601 timestamps
	TrimANSI      bool `toml:"trim_ansi"`      // Strip ANSI escape sequences
}

// IssueConfig holds issue rendering settings from [issue] section.
type IssueConfig struct {
	LabelColor        string `toml:"label_color,omitempty"`         // Color of the base label
	FailureLabelColor string `toml:"failure_label_color,omitempty"` // Color of failure-kind labels
	MaxBodyLen        int    `toml:"max_body_len,omitempty"`        // Issue body budget in characters
}

// DuplicateConfig holds duplicate detection settings from [duplicate] section.
type DuplicateConfig struct {
	Threshold int `toml:"threshold,omitempty"` // Levenshtein distance below which issues are duplicates
}

// GitHubConfig holds provider settings from [github] section.
type GitHubConfig struct {
	Host              string  `toml:"host,omitempty"`                // Host used to canonicalize repository URLs
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"` // API rate limit
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: trace, debug, info, warn, error
	File  string `toml:"file,omitempty"`  // Optional log file, appended to
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Summary: SummaryConfig{
			TrimTimestamp: true,
			TrimANSI:      true,
		},
		Issue: IssueConfig{
			LabelColor:        DefaultLabelColor,
			FailureLabelColor: DefaultFailureLabelColor,
			MaxBodyLen:        DefaultMaxBodyLen,
		},
		Duplicate: DuplicateConfig{
			Threshold: DefaultLevenshteinThreshold,
		},
		GitHub: GitHubConfig{
			Host:              DefaultHost,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// RenderConfigTemplate returns the commented configuration template.
func RenderConfigTemplate() string {
	return configTemplateContent
}

// GlobalConfigDir returns the global config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, "ci-triage")
}

// RepoConfigPath returns the path of the per-repository config file.
func RepoConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, RepoConfigFileName)
}
