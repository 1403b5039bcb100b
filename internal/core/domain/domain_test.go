package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"nil", nil, domain.KindUnknown},
		{"plain", errors.New("boom"), domain.KindUnknown},
		{"cycle", zerr.Wrap(domain.ErrCycleDetected, "structural"), domain.KindStructural},
		{"timeout", zerr.Wrap(domain.ErrCommandTimeout, "execute"), domain.KindExecution},
		{"missing tools", zerr.Wrap(domain.ErrMissingRequirements, "validate"), domain.KindEnvironment},
		{"cache write", zerr.Wrap(domain.ErrCacheWriteFailed, "store"), domain.KindCache},
		{"joined", errors.Join(errors.New("x"), domain.ErrValidationBlocked), domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.KindOf(tt.err))
		})
	}
}

func TestBuildResult_State(t *testing.T) {
	assert.Equal(t, domain.StateSkipped, (&domain.BuildResult{Skipped: true}).State())
	assert.Equal(t, domain.StateCached, (&domain.BuildResult{Success: true, CacheHit: true}).State())
	assert.Equal(t, domain.StateSucceeded, (&domain.BuildResult{Success: true}).State())
	assert.Equal(t, domain.StateFailed, (&domain.BuildResult{}).State())
}

func TestBuildTarget_Estimate(t *testing.T) {
	assert.Equal(t, domain.DefaultEstimatedDuration, (&domain.BuildTarget{}).Estimate())
	assert.Equal(t, 5*time.Second, (&domain.BuildTarget{EstimatedDuration: 5 * time.Second}).Estimate())
}

func TestIssues(t *testing.T) {
	issues := []domain.Issue{
		{Severity: domain.SeverityWarning, Subject: "80"},
		{Severity: domain.SeverityError, Subject: "8080"},
	}

	assert.True(t, domain.HasErrors(issues))
	assert.False(t, domain.HasErrors(issues[:1]))

	errs, warns := domain.SplitIssues(issues)
	assert.Len(t, errs, 1)
	assert.Len(t, warns, 1)
	assert.Equal(t, "[error] 8080: ", errs[0].String())
}

func TestFilePattern_EffectivePriority(t *testing.T) {
	assert.Equal(t, 1, domain.FilePattern{}.EffectivePriority())
	assert.Equal(t, 7, domain.FilePattern{Priority: 7}.EffectivePriority())
}

func TestProject_ServiceNames(t *testing.T) {
	p := domain.Project{Services: []domain.Service{{Name: "api"}, {Name: "db"}, {Name: "api"}}}
	assert.Equal(t, []string{"api", "db"}, p.ServiceNames())
}
