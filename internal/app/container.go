// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/errparse"
	"github.com/runoshun/ci-triage/internal/infra/config"
	"github.com/runoshun/ci-triage/internal/infra/executor"
	"github.com/runoshun/ci-triage/internal/infra/git"
	"github.com/runoshun/ci-triage/internal/infra/github"
	"github.com/runoshun/ci-triage/internal/infra/logging"
	"github.com/runoshun/ci-triage/internal/locate"
	"github.com/runoshun/ci-triage/internal/usecase"
)

// VerbosityFromConfig selects the log level from the [log] section instead of -v.
const VerbosityFromConfig = -1

// Options holds the settings that shape the container, usually from global flags.
// Fields are ordered to minimize memory padding.
type Options struct {
	LogOutput  io.Writer // Console log sink, usually stderr
	Dir        string    // Working directory used to find the repository
	ConfigPath string    // Explicit config file (--config), optional
	Verbosity  int       // 0..4, or VerbosityFromConfig
	Color      bool      // Allow colored log level tags
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Executor      domain.CommandExecutor
	Remote        domain.RemoteDetector // nil outside a git repository
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Provider      domain.RunProvider // Overrides the gh-backed provider when set (tests)

	// Pointer fields
	Logger    *logging.Logger
	AppConfig *domain.Config

	RepoRoot string
}

// New creates a new Container. Running outside a git repository is allowed;
// only commands that need the origin remote will fail.
func New(opts Options) (*Container, error) {
	var (
		remote   domain.RemoteDetector
		repoRoot string
	)
	gitClient, err := git.NewClient(opts.Dir)
	switch {
	case err == nil:
		remote = gitClient
		repoRoot = gitClient.RepoRoot()
	case errors.Is(err, domain.ErrNotGitRepository):
	default:
		return nil, err
	}

	configLoader := config.NewLoader(repoRoot, opts.ConfigPath)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(opts, appConfig)

	return &Container{
		Executor:      executor.NewClient(),
		Remote:        remote,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(repoRoot),
		Logger:        logger,
		AppConfig:     appConfig,
		RepoRoot:      repoRoot,
	}, nil
}

func newLogger(opts Options, cfg *domain.Config) *logging.Logger {
	level := logging.ParseLevel(cfg.Log.Level)
	if opts.Verbosity != VerbosityFromConfig {
		level = logging.LevelFromVerbosity(opts.Verbosity)
	}

	logger := logging.New(opts.LogOutput, level)
	logger.SetColor(opts.Color && logging.ColorSupported())
	if cfg.Log.File != "" {
		if err := logger.OpenFile(cfg.Log.File); err != nil {
			logger.Warn("app", err.Error())
		}
	}
	return logger
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg *domain.Config, loader domain.ConfigLoader, provider domain.RunProvider, remote domain.RemoteDetector, logger *logging.Logger) *Container {
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = logging.New(nil, logging.ParseLevel(cfg.Log.Level))
	}
	return &Container{
		ConfigLoader: loader,
		Provider:     provider,
		Remote:       remote,
		Logger:       logger,
		AppConfig:    cfg,
	}
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	return c.Logger.Close()
}

// ResolveRepo returns the canonical URL of the repository to triage.
// An empty repo falls back to the origin remote of the current repository.
func (c *Container) ResolveRepo(repo string) (string, error) {
	if repo != "" {
		return domain.CanonicalRepoURL(repo, c.AppConfig.GitHub.Host), nil
	}
	if c.Remote == nil {
		return "", fmt.Errorf("--repo is required outside a git repository: %w", domain.ErrNotGitRepository)
	}
	origin, err := c.Remote.OriginURL()
	if err != nil {
		return "", fmt.Errorf("detect repository: %w", err)
	}
	c.Logger.Debug("app", "using origin remote "+origin)
	return origin, nil
}

// RunProvider returns the provider for the repository at repoURL.
func (c *Container) RunProvider(repoURL string) (domain.RunProvider, error) {
	if c.Provider != nil {
		return c.Provider, nil
	}
	return github.NewProvider(c.Executor, repoURL, c.AppConfig.GitHub.RequestsPerSecond, c.Logger)
}

// Summarizer returns an error summarizer configured from the application config.
func (c *Container) Summarizer() *errparse.Summarizer {
	return errparse.New(locate.New(c.Logger), c.Logger, errparse.OptionsFromConfig(c.AppConfig))
}

// UseCase factory methods

// CreateIssueFromRunUseCase returns a new CreateIssueFromRun use case for the repository.
func (c *Container) CreateIssueFromRunUseCase(repo string) (*usecase.CreateIssueFromRun, error) {
	repoURL, err := c.ResolveRepo(repo)
	if err != nil {
		return nil, err
	}
	provider, err := c.RunProvider(repoURL)
	if err != nil {
		return nil, err
	}
	return usecase.NewCreateIssueFromRun(provider, c.Summarizer(), c.AppConfig, c.Logger), nil
}

// LocateFailureLogUseCase returns a new LocateFailureLog use case.
func (c *Container) LocateFailureLogUseCase() *usecase.LocateFailureLog {
	return usecase.NewLocateFailureLog(c.Summarizer(), c.Logger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// DefaultOptions returns options for the process working directory.
func DefaultOptions() (Options, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Options{}, fmt.Errorf("get current directory: %w", err)
	}
	return Options{
		Dir:       cwd,
		LogOutput: os.Stderr,
		Verbosity: VerbosityFromConfig,
		Color:     true,
	}, nil
}
