package ports

import (
	"context"

	"go.trai.ch/polybuild/internal/core/domain"
)

// Validator is a static-analysis pass over the project configuration.
//
//go:generate mockgen -source=validator.go -destination=mocks/mock_validator.go -package=mocks
type Validator interface {
	// Name identifies the validator in issues and logs.
	Name() string
	// Validate returns the issues found. An error means the check itself
	// could not run; issues found before the error are still returned.
	Validate(ctx context.Context, project *domain.Project) ([]domain.Issue, error)
}
