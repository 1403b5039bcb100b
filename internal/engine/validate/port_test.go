package validate_test

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports/mocks"
	"go.trai.ch/polybuild/internal/engine/validate"
	"go.uber.org/mock/gomock"
)

func svc(name string, specs ...string) domain.Service {
	s := domain.Service{Name: name}
	for _, spec := range specs {
		s.Ports = append(s.Ports, domain.PortDeclaration{Spec: spec, Source: "polybuild.yaml"})
	}
	return s
}

func TestPortValidator_DuplicateHostPort(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := validate.NewPortValidator(mocks.NewMockLogger(ctrl))

	project := &domain.Project{Services: []domain.Service{
		svc("api", "8080:80"),
		svc("web", "8080:3000"),
	}}

	issues, err := v.Validate(t.Context(), project)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	is := issues[0]
	assert.Equal(t, domain.SeverityError, is.Severity)
	assert.Equal(t, domain.IssuePortConflict, is.Kind)
	assert.Equal(t, 8080, is.Port)
	assert.Equal(t, []string{"api", "web"}, is.Parties)
	assert.Contains(t, is.Suggestions, "move web to port 8081")
}

func TestPortValidator_AlternativesStayInRange(t *testing.T) {
	tests := []struct {
		name string
		port string
		want string
	}{
		{"highest port is usable", "65534", "move web to port 65535"},
		{"falls back below the top", "65535", "move web to port 65534"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validate.NewPortValidator(mocks.NewMockLogger(gomock.NewController(t)))
			project := &domain.Project{Services: []domain.Service{
				svc("api", tt.port+":80"),
				svc("web", tt.port+":3000"),
			}}

			issues, err := v.Validate(t.Context(), project)
			require.NoError(t, err)
			require.Len(t, issues, 1)
			assert.Contains(t, issues[0].Suggestions, tt.want)
		})
	}
}

func TestPortValidator_SameServiceTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := validate.NewPortValidator(mocks.NewMockLogger(ctrl))

	project := &domain.Project{Services: []domain.Service{svc("api", "8080:80", "8080:81/udp")}}

	issues, err := v.Validate(t.Context(), project)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestPortValidator_Ranges(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := validate.NewPortValidator(mocks.NewMockLogger(ctrl))

	project := &domain.Project{Services: []domain.Service{
		svc("workers", "8000-8002:8000-8002"),
		svc("admin", "8001:80"),
	}}

	issues, err := v.Validate(t.Context(), project)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 8001, issues[0].Port)
	// 8002 is taken by the range, so the move skips to 8011.
	assert.Contains(t, issues[0].Suggestions, "move admin to port 8011")
}

func TestPortValidator_ContainerOnlyPort(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := validate.NewPortValidator(mocks.NewMockLogger(ctrl))

	project := &domain.Project{Services: []domain.Service{svc("a", "9000"), svc("b", "9000:9000")}}

	issues, err := v.Validate(t.Context(), project)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, []string{"a", "b"}, issues[0].Parties)
}

func TestPortValidator_SystemPorts(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := validate.NewPortValidator(mocks.NewMockLogger(ctrl))

	project := &domain.Project{Services: []domain.Service{svc("proxy", "80:80", "443:443"), svc("db", "5433:5432")}}

	issues, err := v.Validate(t.Context(), project)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	for _, is := range issues {
		assert.Equal(t, domain.SeverityWarning, is.Severity)
		assert.Equal(t, domain.IssueSystemPort, is.Kind)
	}
	assert.Equal(t, []string{"use port 81"}, issues[0].Suggestions)
	assert.Equal(t, 443, issues[1].Port)
}

func TestPortValidator_SkipsUnparseable(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(1)
	v := validate.NewPortValidator(logger)

	project := &domain.Project{Services: []domain.Service{svc("api", "not-a-port", "8080:80")}}

	issues, err := v.Validate(t.Context(), project)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func conflictProject() *domain.Project {
	return &domain.Project{Services: []domain.Service{
		{Name: "api", Ports: []domain.PortDeclaration{{Spec: "8080:80", Source: "compose.yml", Line: 5}}},
		{Name: "web", Ports: []domain.PortDeclaration{{Spec: "8080:3000", Source: "compose.yml", Line: 9}}},
		{Name: "proxy", Ports: []domain.PortDeclaration{{Spec: "80:80", Source: "compose.yml", Line: 12}}},
		{Name: "admin", Ports: []domain.PortDeclaration{{Spec: "127.0.0.1:8080:8080", Source: "polybuild.yaml", Line: 14}}},
	}}
}

func TestPortValidator_Golden(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := validate.NewPortValidator(mocks.NewMockLogger(ctrl))
	project := conflictProject()

	issues, err := v.Validate(t.Context(), project)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	g := goldie.New(t)
	g.Assert(t, "port_report", []byte(validate.Report(issues)))

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	g.Assert(t, "port_fix_script", []byte(v.FixScript(project, issues, now)))
}

func TestPortValidator_FixScriptIgnoresWarnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	v := validate.NewPortValidator(mocks.NewMockLogger(ctrl))
	project := conflictProject()

	script := v.FixScript(project, []domain.Issue{{
		Validator: validate.PortValidatorName,
		Kind:      domain.IssueSystemPort,
		Severity:  domain.SeverityWarning,
		Port:      80,
	}}, time.Now())

	assert.NotContains(t, script, "sed")
	assert.NotContains(t, script, "cp ")
}

func TestReport_NoIssues(t *testing.T) {
	assert.Equal(t, "No issues found.\n", validate.Report(nil))
}
