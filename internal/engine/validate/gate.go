package validate

import (
	"context"
	"fmt"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Gate runs every validator and aggregates their issues.
type Gate struct {
	logger     ports.Logger
	validators []ports.Validator
}

// NewGate creates a gate over validators. Issues are returned in validator order.
func NewGate(logger ports.Logger, validators ...ports.Validator) *Gate {
	return &Gate{logger: logger, validators: validators}
}

// Default returns the gate with the port, dependency and resource validators.
func Default(logger ports.Logger, probe ports.SystemProbe, maxChainDepth int) *Gate {
	return NewGate(logger,
		NewPortValidator(logger),
		NewDependencyValidator(maxChainDepth),
		NewResourceValidator(probe, logger),
	)
}

// Validators returns the validators the gate runs.
func (g *Gate) Validators() []ports.Validator {
	return g.validators
}

// Run executes every validator to completion. A validator that fails or
// panics is logged and does not stop the others.
func (g *Gate) Run(ctx context.Context, project *domain.Project) []domain.Issue {
	found := make([][]domain.Issue, len(g.validators))

	var eg errgroup.Group
	for i, v := range g.validators {
		eg.Go(func() error {
			issues, err := g.check(ctx, v, project)
			if err != nil {
				g.logger.Error(err)
			}
			found[i] = issues
			return nil
		})
	}
	_ = eg.Wait()

	var out []domain.Issue
	for _, issues := range found {
		out = append(out, issues...)
	}
	return out
}

func (g *Gate) check(ctx context.Context, v ports.Validator, project *domain.Project) (issues []domain.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.Wrap(domain.ErrValidatorFailed, fmt.Sprintf("validator panicked: %v", r)), "validator", v.Name())
		}
	}()

	issues, err = v.Validate(ctx, project)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrValidatorFailed.Error()), "validator", v.Name())
	}
	return issues, err
}

// Blocking reports whether issues should stop a run.
func Blocking(issues []domain.Issue) bool {
	return domain.HasErrors(issues)
}

// BlockingError summarizes the error-severity issues, or returns nil.
func BlockingError(issues []domain.Issue) error {
	errs, _ := domain.SplitIssues(issues)
	if len(errs) == 0 {
		return nil
	}
	var err error = zerr.Wrap(domain.ErrValidationBlocked, fmt.Sprintf("%s: %d error(s)", domain.ErrValidation.Error(), len(errs)))
	subjects := make([]string, 0, len(errs))
	for _, is := range errs {
		subjects = append(subjects, is.String())
	}
	return zerr.With(err, "issues", subjects)
}
