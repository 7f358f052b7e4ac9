package usecase

import (
	"context"

	"github.com/runoshun/ci-triage/internal/domain"
)

// InitConfigInput contains the parameters for creating a config file.
type InitConfigInput struct {
	Global bool // Create the global config instead of the repository config
}

// InitConfigOutput contains the result of creating a config file.
type InitConfigOutput struct {
	Path string // Created file
}

// InitConfig writes the configuration template to a new config file.
type InitConfig struct {
	manager domain.ConfigManager
}

// NewInitConfig creates a new InitConfig use case.
func NewInitConfig(manager domain.ConfigManager) *InitConfig {
	return &InitConfig{manager: manager}
}

// Execute creates the config file. Existing files are never overwritten.
func (uc *InitConfig) Execute(_ context.Context, in InitConfigInput) (*InitConfigOutput, error) {
	var (
		path string
		err  error
	)
	if in.Global {
		path, err = uc.manager.InitGlobalConfig()
	} else {
		path, err = uc.manager.InitRepoConfig()
	}
	if err != nil {
		return nil, err
	}
	return &InitConfigOutput{Path: path}, nil
}
