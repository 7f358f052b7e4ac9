package domain

import (
	"fmt"
	"strings"
)

// DefaultHost is the host assumed when a repository is given as "owner/repo".
const DefaultHost = "github.com"

// CanonicalRepoURL canonicalizes a repository to the form https://{host}/{owner}/{repo}.
// A host without a top-level domain gets ".com" appended.
func CanonicalRepoURL(repo, host string) string {
	if !strings.Contains(host, ".") {
		host += ".com"
	}
	prefix := "https://" + host + "/"
	switch {
	case strings.HasPrefix(repo, prefix):
		return repo
	case strings.HasPrefix(repo, "https://"):
		return strings.Replace(repo, "https://", prefix, 1)
	case strings.HasPrefix(repo, host+"/"):
		return prefix + strings.TrimPrefix(repo, host+"/")
	default:
		return prefix + repo
	}
}

// OwnerRepo splits a repository URL or identifier into owner and repo.
func OwnerRepo(repoURL string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSuffix(repoURL, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidRepo, repoURL)
	}
	owner, repo = parts[len(parts)-2], parts[len(parts)-1]
	for _, s := range []string{owner, repo} {
		if s == "" || strings.ContainsAny(s, " .") {
			return "", "", fmt.Errorf("%w: %s", ErrInvalidRepo, repoURL)
		}
	}
	return owner, repo, nil
}

// RunURL returns the web URL of a workflow run.
func RunURL(repoURL, runID string) string {
	return fmt.Sprintf("%s/actions/runs/%s", repoURL, runID)
}

// JobURL returns the web URL of a job within a run.
func JobURL(runURL string, jobID int64) string {
	return fmt.Sprintf("%s/job/%d", runURL, jobID)
}

// EnsureHTTPSPrefix trims surrounding whitespace and prepends "https://"
// when the URL has no scheme.
func EnsureHTTPSPrefix(url string) string {
	url = strings.TrimSpace(url)
	if url == "" || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		return url
	}
	return "https://" + url
}

// LabelMatch selects how a LabelFilter combines labels.
type LabelMatch int

// Label match modes.
const (
	LabelMatchNone LabelMatch = iota
	LabelMatchAny
	LabelMatchAll
)

// LabelFilter renders an issue search label qualifier.
type LabelFilter struct {
	Labels []string
	Match  LabelMatch
}

// String renders the filter, e.g. `label:"bug","ci"` (any) or `label:"bug" label:"ci"` (all).
func (f LabelFilter) String() string {
	if len(f.Labels) == 0 {
		return ""
	}
	quoted := make([]string, len(f.Labels))
	for i, l := range f.Labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	switch f.Match {
	case LabelMatchAny:
		return "label:" + strings.Join(quoted, ",")
	case LabelMatchAll:
		for i := range quoted {
			quoted[i] = "label:" + quoted[i]
		}
		return strings.Join(quoted, " ")
	default:
		return ""
	}
}
