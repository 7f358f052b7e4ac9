// Package git discovers the repository ci-triage is run from.
package git

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/runoshun/ci-triage/internal/domain"
)

// Client reads repository metadata with go-git.
type Client struct {
	repo     *gogit.Repository
	repoRoot string // Worktree root (parent of .git)
}

// Ensure Client implements domain.RemoteDetector interface.
var _ domain.RemoteDetector = (*Client)(nil)

// NewClient opens the repository containing dir, searching parent directories.
func NewClient(dir string) (*Client, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	c := &Client{repo: repo}
	if wt, err := repo.Worktree(); err == nil {
		c.repoRoot = wt.Filesystem.Root()
	}
	return c, nil
}

// RepoRoot returns the repository root directory, or "" for bare repositories.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// OriginURL returns the origin remote as an https URL without the .git suffix.
func (c *Client) OriginURL() (string, error) {
	remote, err := c.repo.Remote("origin")
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", domain.ErrNoOriginRemote
		}
		return "", fmt.Errorf("read origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", domain.ErrNoOriginRemote
	}
	return NormalizeRemoteURL(urls[0])
}

// NormalizeRemoteURL converts a git remote URL into the repository's web URL.
//
//	git@github.com:owner/repo.git       -> https://github.com/owner/repo
//	ssh://git@github.com/owner/repo.git -> https://github.com/owner/repo
//	https://github.com/owner/repo.git   -> https://github.com/owner/repo
func NormalizeRemoteURL(remote string) (string, error) {
	remote = strings.TrimSpace(remote)
	var host, path string

	switch {
	case strings.Contains(remote, "://"):
		u, err := url.Parse(remote)
		if err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrInvalidRepo, remote)
		}
		host, path = u.Hostname(), u.Path
	case strings.Contains(remote, ":"):
		// scp-like syntax: [user@]host:path
		hostPart, p, _ := strings.Cut(remote, ":")
		if i := strings.LastIndex(hostPart, "@"); i >= 0 {
			hostPart = hostPart[i+1:]
		}
		host, path = hostPart, p
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidRepo, remote)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	if host == "" || strings.Count(path, "/") != 1 {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidRepo, remote)
	}
	return "https://" + host + "/" + path, nil
}
