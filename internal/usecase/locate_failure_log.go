package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/runoshun/ci-triage/internal/domain"
)

// LocateFailureLogInput contains the parameters for locating a failure log.
type LocateFailureLogInput struct {
	Stdin     io.Reader          // Read when InputFile is empty
	Kind      domain.FailureKind // Heuristic used to find the reference
	InputFile string             // Build log to search (optional)
}

// LocateFailureLogOutput contains the located failure log.
type LocateFailureLogOutput struct {
	Path string // Absolute, symlink-free path
}

// LocateFailureLog finds the failure log file referenced in a build log.
type LocateFailureLog struct {
	summarizer domain.ErrorSummarizer
	logger     domain.Logger
}

// NewLocateFailureLog creates a new LocateFailureLog use case.
func NewLocateFailureLog(summarizer domain.ErrorSummarizer, logger domain.Logger) *LocateFailureLog {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &LocateFailureLog{
		summarizer: summarizer,
		logger:     logger,
	}
}

// Execute reads the build log and resolves the failure log it references.
func (uc *LocateFailureLog) Execute(_ context.Context, in LocateFailureLogInput) (*LocateFailureLogOutput, error) {
	content, err := uc.read(in)
	if err != nil {
		return nil, err
	}

	path, err := uc.summarizer.LocateFailureLog(content, in.Kind)
	if err != nil {
		return nil, fmt.Errorf("locate failure log: %w", err)
	}
	uc.logger.Debug("locate", "located failure log: "+path)
	return &LocateFailureLogOutput{Path: path}, nil
}

func (uc *LocateFailureLog) read(in LocateFailureLogInput) (string, error) {
	if in.InputFile != "" {
		data, err := os.ReadFile(in.InputFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", domain.ErrInputFileNotFound, in.InputFile)
			}
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}
	if in.Stdin == nil {
		return "", fmt.Errorf("%w: no input", domain.ErrInputFileNotFound)
	}
	uc.logger.Debug("locate", "reading build log from stdin")
	data, err := io.ReadAll(in.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
