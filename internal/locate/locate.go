// Package locate resolves failure-log paths found in build logs to files on disk.
//
// Paths in build logs are often captured under a different root than the one
// they must be resolved against (e.g. "/app/yocto/build/..." inside a container
// versus "yocto/build/..." on the host). Resolve tolerates such a mismatch by
// dropping leading path components until an existing file is found.
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/runoshun/ci-triage/internal/domain"
)

const category = "locate"

var pathRe = regexp.MustCompile(`[a-zA-Z0-9_./-]+/[a-zA-Z0-9_.-]+`)

// FirstPath returns the first path-shaped substring of s.
// A path has at least one '/' separating non-empty segments.
func FirstPath(s string) (string, error) {
	p := pathRe.FindString(s)
	if p == "" {
		return "", domain.ErrNoPath
	}
	return p, nil
}

// Locator resolves paths against the filesystem.
type Locator struct {
	logger domain.Logger
	dir    string // Base for relative paths; empty means the process working directory
	root   string // Root for re-rooted candidates
}

// New creates a Locator resolving relative paths against the working directory.
func New(logger domain.Logger) *Locator {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Locator{logger: logger, root: "/"}
}

// WithDir returns a copy of the Locator resolving relative paths against dir.
func (l *Locator) WithDir(dir string) *Locator {
	cp := *l
	cp.dir = dir
	return &cp
}

// Resolve finds the file referenced by the first path in s and returns its
// canonical path. If the path itself is not a regular file, leading
// components are dropped one at a time and the remainder is tried both
// relative and rooted at "/".
func (l *Locator) Resolve(s string) (string, error) {
	path, err := FirstPath(s)
	if err != nil {
		return "", err
	}
	l.logger.Debug(category, fmt.Sprintf("searching for logfile from path: %s", path))

	if p, ok := l.regularFile(path); ok {
		return p, nil
	}

	parts := components(path)
	l.logger.Debug(category, fmt.Sprintf("file not found, looking for file using parts: %q", parts))
	// The root counts as the first component of an absolute path.
	if filepath.IsAbs(path) && len(parts) > 0 {
		if p, ok := l.regularFile(filepath.Join(parts...)); ok {
			return p, nil
		}
	}
	for len(parts) > 0 {
		parts = parts[1:]
		if len(parts) == 0 {
			break
		}
		rel := filepath.Join(parts...)
		if p, ok := l.regularFile(rel); ok {
			return p, nil
		}
		if p, ok := l.regularFile(filepath.Join(l.root, rel)); ok {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w at path: %s", domain.ErrNotFound, path)
}

// regularFile checks path and returns its canonical form if it is a regular file.
func (l *Locator) regularFile(path string) (string, bool) {
	if !filepath.IsAbs(path) && l.dir != "" {
		path = filepath.Join(l.dir, path)
	}
	l.logger.Debug(category, fmt.Sprintf("looking for file at path: %s", path))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	canonical, err := canonicalize(path)
	if err != nil {
		l.logger.Warn(category, fmt.Sprintf("canonicalize %s: %v", path, err))
		return "", false
	}
	return canonical, true
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// components splits a slash path into its non-empty components.
func components(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
