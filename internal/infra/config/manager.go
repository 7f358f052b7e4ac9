package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/ci-triage/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager creates configuration files from the template.
type Manager struct {
	repoRoot      string // Path to repository root
	globalConfDir string // Path to global config directory (e.g., ~/.config/ci-triage)
}

// NewManager creates a new Manager.
func NewManager(repoRoot string) *Manager {
	return &Manager{
		repoRoot:      repoRoot,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(repoRoot, globalConfDir string) *Manager {
	return &Manager{
		repoRoot:      repoRoot,
		globalConfDir: globalConfDir,
	}
}

// InitRepoConfig creates .ci-triage.toml at the repository root and returns its path.
func (m *Manager) InitRepoConfig() (string, error) {
	if m.repoRoot == "" {
		return "", domain.ErrNotGitRepository
	}
	path := domain.RepoConfigPath(m.repoRoot)
	return path, initConfig(path)
}

// InitGlobalConfig creates the global config file and returns its path.
func (m *Manager) InitGlobalConfig() (string, error) {
	if m.globalConfDir == "" {
		return "", errors.New("global config directory not available")
	}
	path := filepath.Join(m.globalConfDir, domain.ConfigFileName)

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(m.globalConfDir, 0700); err != nil {
		return "", err
	}

	return path, initConfig(path)
}

// initConfig creates a config file with the default template.
func initConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	return os.WriteFile(path, []byte(domain.RenderConfigTemplate()), 0600)
}
