package domain

import "errors"

// Domain errors.
var (
	ErrNotFound          = errors.New("no file found")
	ErrNoPath            = errors.New("no path found in text")
	ErrNoLogMatch        = errors.New("no raw log matches failed step")
	ErrNoTimestamp       = errors.New("no timestamp found in log")
	ErrParseFailure      = errors.New("failed to parse error log")
	ErrBodyTooLong       = errors.New("issue body exceeds maximum length")
	ErrRunNotFailed      = errors.New("run did not fail")
	ErrNoFailedJobs      = errors.New("run has no failed jobs")
	ErrInvalidKind       = errors.New("invalid failure kind")
	ErrInvalidRepo       = errors.New("could not parse owner and repo from URL")
	ErrNotGitRepository  = errors.New("not a git repository (or any of the parent directories)")
	ErrNoOriginRemote    = errors.New("repository has no origin remote")
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrEmptyLabel        = errors.New("label cannot be empty")
	ErrInputFileNotFound = errors.New("input file does not exist")
	ErrConfigExists      = errors.New("config file already exists")
)
