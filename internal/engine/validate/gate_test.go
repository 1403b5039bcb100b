package validate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports/mocks"
	"go.trai.ch/polybuild/internal/engine/validate"
	"go.uber.org/mock/gomock"
)

func stubValidator(ctrl *gomock.Controller, name string, fn func() ([]domain.Issue, error)) *mocks.MockValidator {
	v := mocks.NewMockValidator(ctrl)
	v.EXPECT().Name().Return(name).AnyTimes()
	v.EXPECT().Validate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *domain.Project) ([]domain.Issue, error) { return fn() },
	)
	return v
}

func TestGate_IsolatesFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any()).Times(2)

	warn := domain.Issue{Validator: "first", Severity: domain.SeverityWarning, Subject: "w"}
	partial := domain.Issue{Validator: "second", Severity: domain.SeverityError, Subject: "e"}

	gate := validate.NewGate(logger,
		stubValidator(ctrl, "first", func() ([]domain.Issue, error) { return []domain.Issue{warn}, nil }),
		stubValidator(ctrl, "second", func() ([]domain.Issue, error) {
			return []domain.Issue{partial}, errors.New("probe failed")
		}),
		stubValidator(ctrl, "third", func() ([]domain.Issue, error) { panic("boom") }),
	)

	issues := gate.Run(t.Context(), &domain.Project{})
	assert.Equal(t, []domain.Issue{warn, partial}, issues)
	assert.True(t, validate.Blocking(issues))
	assert.ErrorIs(t, validate.BlockingError(issues), domain.ErrValidationBlocked)
}

func TestGate_WarningsDoNotBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	warn := domain.Issue{Severity: domain.SeverityWarning}

	gate := validate.NewGate(mocks.NewMockLogger(ctrl),
		stubValidator(ctrl, "only", func() ([]domain.Issue, error) { return []domain.Issue{warn}, nil }),
	)

	issues := gate.Run(t.Context(), &domain.Project{})
	assert.False(t, validate.Blocking(issues))
	assert.NoError(t, validate.BlockingError(issues))
}

func TestGate_DuplicatePortScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	probe := mocks.NewMockSystemProbe(ctrl)
	probe.EXPECT().Memory(gomock.Any()).Return(domain.MemoryStats{AvailableBytes: 64 * gb}, nil)
	probe.EXPECT().Disk(gomock.Any(), gomock.Any()).Return(domain.DiskStats{FreeBytes: 500 * gb}, nil)

	project := &domain.Project{Services: []domain.Service{
		svc("one", "8080:80"),
		svc("two", "8080:8080"),
	}}

	issues := validate.Default(logger, probe, 0).Run(t.Context(), project)
	errs, _ := domain.SplitIssues(issues)
	assert.Len(t, errs, 1)
	assert.Equal(t, validate.PortValidatorName, errs[0].Validator)
	assert.True(t, validate.Blocking(issues))
}
