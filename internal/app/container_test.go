package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/runoshun/ci-triage/internal/domain"
	"github.com/runoshun/ci-triage/internal/infra/github"
	"github.com/runoshun/ci-triage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T, dir string) Options {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return Options{Dir: dir, LogOutput: &bytes.Buffer{}, Verbosity: VerbosityFromConfig}
}

func TestNew_OutsideGitRepository(t *testing.T) {
	c, err := New(testOptions(t, t.TempDir()))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Nil(t, c.Remote)
	assert.Empty(t, c.RepoRoot)

	_, err = c.ResolveRepo("")
	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
}

func TestNew_InsideGitRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:owner/repo.git"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(domain.RepoConfigPath(dir), []byte("[duplicate]\nthreshold = 7\n"), 0o644))

	c, err := New(testOptions(t, dir))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, dir, c.RepoRoot)
	assert.Equal(t, 7, c.AppConfig.Duplicate.Threshold)

	repoURL, err := c.ResolveRepo("")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/owner/repo", repoURL)

	provider, err := c.RunProvider(repoURL)
	require.NoError(t, err)
	assert.IsType(t, &github.Provider{}, provider)
}

func TestNew_ExplicitConfigMissing(t *testing.T) {
	opts := testOptions(t, t.TempDir())
	opts.ConfigPath = filepath.Join(t.TempDir(), "missing.toml")

	_, err := New(opts)
	assert.Error(t, err)
}

func TestNew_LogFileFromConfig(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ci-triage.log")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nlevel = \"debug\"\nfile = \""+logPath+"\"\n"), 0o644))

	opts := testOptions(t, t.TempDir())
	opts.ConfigPath = cfgPath
	c, err := New(opts)
	require.NoError(t, err)

	c.Logger.Debug("test", "hello file")
	require.NoError(t, c.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello file")
}

func TestContainer_ResolveRepo_Canonicalizes(t *testing.T) {
	c := NewWithDeps(nil, testutil.NewMockConfigLoader(), nil, nil, nil)

	got, err := c.ResolveRepo("owner/repo")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/owner/repo", got)
}

func TestContainer_CreateIssueFromRunUseCase_UsesInjectedProvider(t *testing.T) {
	provider := testutil.NewMockRunProvider()
	c := NewWithDeps(nil, testutil.NewMockConfigLoader(), provider, &testutil.MockRemoteDetector{URL: "https://github.com/o/r"}, nil)

	uc, err := c.CreateIssueFromRunUseCase("")
	require.NoError(t, err)
	assert.NotNil(t, uc)

	got, err := c.RunProvider("https://github.com/o/r")
	require.NoError(t, err)
	assert.Same(t, provider, got)
}
