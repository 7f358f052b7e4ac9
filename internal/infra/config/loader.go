// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/ci-triage/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	repoRoot      string // Repository root holding .ci-triage.toml, may be empty
	globalConfDir string // Path to global config directory (e.g., ~/.config/ci-triage)
	explicitPath  string // File given with --config, may be empty
}

// NewLoader creates a new Loader.
func NewLoader(repoRoot, explicitPath string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		globalConfDir: defaultGlobalConfigDir(),
		explicitPath:  explicitPath,
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(repoRoot, globalConfDir, explicitPath string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		globalConfDir: globalConfDir,
		explicitPath:  explicitPath,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// paths returns the candidate config files in merge order.
func (l *Loader) paths() []string {
	var paths []string
	if l.globalConfDir != "" {
		paths = append(paths, filepath.Join(l.globalConfDir, domain.ConfigFileName))
	}
	if l.repoRoot != "" {
		paths = append(paths, domain.RepoConfigPath(l.repoRoot))
	}
	if l.explicitPath != "" {
		paths = append(paths, l.explicitPath)
	}
	return paths
}

// Sources returns information about every config file Load considers.
func (l *Loader) Sources() []domain.ConfigInfo {
	paths := l.paths()
	infos := make([]domain.ConfigInfo, 0, len(paths))
	for _, p := range paths {
		infos = append(infos, getConfigInfo(p))
	}
	return infos
}

// getConfigInfo reads a config file and returns its info.
func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{
			Path:   path,
			Exists: false,
		}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// Load returns the merged configuration.
// Merge order: default <- global <- repo <- explicit (later takes precedence).
// Missing global and repo files are skipped; a missing explicit file is an error.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	for _, path := range l.paths() {
		raw, err := loadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path != l.explicitPath {
				continue
			}
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg.Warnings = append(cfg.Warnings, applyRaw(cfg, raw)...)
	}

	return cfg, nil
}

// loadFile decodes a TOML file into a raw map.
func loadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// applyRaw overrides cfg with the keys present in raw and returns warnings
// for unknown sections, unknown keys and values of the wrong type.
func applyRaw(cfg *domain.Config, raw map[string]any) []string {
	var warnings []string
	invalid := func(section, key string, v any) {
		warnings = append(warnings, fmt.Sprintf("invalid value for [%s].%s: %v", section, key, v))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		switch section {
		case "summary":
			for k, v := range m {
				switch k {
				case "trim_timestamp":
					if b, ok := v.(bool); ok {
						cfg.Summary.TrimTimestamp = b
					} else {
						invalid(section, k, v)
					}
				case "trim_ansi":
					if b, ok := v.(bool); ok {
						cfg.Summary.TrimANSI = b
					} else {
						invalid(section, k, v)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [summary]: %s", k))
				}
			}
		case "issue":
			for k, v := range m {
				switch k {
				case "label_color":
					if s, ok := v.(string); ok && s != "" {
						cfg.Issue.LabelColor = s
					} else {
						invalid(section, k, v)
					}
				case "failure_label_color":
					if s, ok := v.(string); ok && s != "" {
						cfg.Issue.FailureLabelColor = s
					} else {
						invalid(section, k, v)
					}
				case "max_body_len":
					if n, ok := v.(int64); ok && n > 0 && n <= domain.DefaultMaxBodyLen {
						cfg.Issue.MaxBodyLen = int(n)
					} else {
						invalid(section, k, v)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [issue]: %s", k))
				}
			}
		case "duplicate":
			for k, v := range m {
				switch k {
				case "threshold":
					if n, ok := v.(int64); ok && n > 0 {
						cfg.Duplicate.Threshold = int(n)
					} else {
						invalid(section, k, v)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [duplicate]: %s", k))
				}
			}
		case "github":
			for k, v := range m {
				switch k {
				case "host":
					if s, ok := v.(string); ok && s != "" {
						cfg.GitHub.Host = s
					} else {
						invalid(section, k, v)
					}
				case "requests_per_second":
					switch n := v.(type) {
					case int64:
						cfg.GitHub.RequestsPerSecond = float64(n)
					case float64:
						cfg.GitHub.RequestsPerSecond = n
					default:
						invalid(section, k, v)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [github]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						cfg.Log.Level = s
					} else {
						invalid(section, k, v)
					}
				case "file":
					if s, ok := v.(string); ok {
						cfg.Log.File = s
					} else {
						invalid(section, k, v)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	return warnings
}
