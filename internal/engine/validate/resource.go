package validate

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

// ResourceValidatorName identifies resource and tool issues.
const ResourceValidatorName = "resource"

// ImageOverheadGB is added to the disk estimate for container images.
const ImageOverheadGB = 10.0

const bytesPerGB = 1 << 30

// estimate is a fallback requirement for services recognized by name.
type estimate struct {
	keywords []string
	memoryGB float64
	diskGB   float64
}

// Later entries win when a name matches more than one class.
var estimates = []estimate{
	{[]string{"postgres", "mysql", "cockroach", "mongo", "redis"}, 1, 5},
	{[]string{"llm", "ollama", "whisper", "vision"}, 4, 10},
	{[]string{"grafana", "prometheus", "elasticsearch"}, 2, 5},
	{[]string{"backend", "frontend", "api"}, 0.5, 1},
}

// Requirement is the memory and disk a service needs.
type Requirement struct {
	Service  string
	MemoryGB float64
	DiskGB   float64
}

// ResourceValidator compares service requirements with the host and checks
// that required tools are installed.
type ResourceValidator struct {
	probe  ports.SystemProbe
	logger ports.Logger
}

// NewResourceValidator creates a resource validator reading the host through probe.
func NewResourceValidator(probe ports.SystemProbe, logger ports.Logger) *ResourceValidator {
	return &ResourceValidator{probe: probe, logger: logger}
}

// Name identifies the validator.
func (v *ResourceValidator) Name() string {
	return ResourceValidatorName
}

// Validate checks memory, disk and tools. A failed host query skips only
// the check that needed it.
func (v *ResourceValidator) Validate(ctx context.Context, project *domain.Project) ([]domain.Issue, error) {
	reqs := v.Requirements(project)

	var issues []domain.Issue
	var errs []error

	mem, err := v.probe.Memory(ctx)
	if err != nil {
		errs = append(errs, zerr.Wrap(err, "memory check skipped"))
	} else {
		issues = append(issues, memoryIssues(reqs, float64(mem.AvailableBytes)/bytesPerGB)...)
	}

	disk, err := v.probe.Disk(ctx, project.Root)
	if err != nil {
		errs = append(errs, zerr.Wrap(err, "disk check skipped"))
	} else {
		issues = append(issues, diskIssues(reqs, float64(disk.FreeBytes)/bytesPerGB)...)
	}

	issues = append(issues, v.toolIssues(ctx, project.Tools)...)
	return issues, errors.Join(errs...)
}

// Requirements resolves every service to its explicit sizes, falling back
// to name-based estimates for sizes it does not declare.
func (v *ResourceValidator) Requirements(project *domain.Project) []Requirement {
	out := make([]Requirement, 0, len(project.Services))
	for _, svc := range project.Services {
		guess := estimateFor(svc.Name)
		req := Requirement{Service: svc.Name, MemoryGB: guess.memoryGB, DiskGB: guess.diskGB}

		if gb, ok := v.size(svc.Name, "memory", firstNonEmpty(svc.Memory, svc.MemoryReserved)); ok {
			req.MemoryGB = gb
		}
		if gb, ok := v.size(svc.Name, "disk", svc.Disk); ok {
			req.DiskGB = gb
		}
		out = append(out, req)
	}
	return out
}

func (v *ResourceValidator) size(service, field, raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	gb, err := ParseSize(raw)
	if err != nil {
		v.logger.Warn(fmt.Sprintf("ignoring %s of %s: %v", field, service, err))
		return 0, false
	}
	return gb, true
}

func estimateFor(name string) estimate {
	lower := strings.ToLower(name)
	var found estimate
	for _, e := range estimates {
		for _, k := range e.keywords {
			if strings.Contains(lower, k) {
				found = e
				break
			}
		}
	}
	return found
}

// ParseSize converts sizes such as "512m", "2g" or "1024k" to gigabytes.
// A bare number is taken as bytes.
func ParseSize(raw string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "b")

	divisor := float64(bytesPerGB)
	switch {
	case strings.HasSuffix(s, "g"):
		divisor = 1
	case strings.HasSuffix(s, "m"):
		divisor = 1 << 10
	case strings.HasSuffix(s, "k"):
		divisor = 1 << 20
	}
	if divisor != bytesPerGB {
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrInvalidSize, domain.ErrInvalidSize.Error()), "size", raw)
	}
	return n / divisor, nil
}

func memoryIssues(reqs []Requirement, availableGB float64) []domain.Issue {
	var issues []domain.Issue
	total := 0.0
	for _, r := range reqs {
		total += r.MemoryGB
		if r.MemoryGB <= availableGB {
			continue
		}
		issues = append(issues, domain.Issue{
			Validator: ResourceValidatorName,
			Kind:      domain.IssueInsufficient,
			Severity:  domain.SeverityError,
			Subject:   r.Service,
			Message: fmt.Sprintf("service %s requires %.1fGB of memory but only %.1fGB is available",
				r.Service, r.MemoryGB, availableGB),
			Suggestions: []string{
				fmt.Sprintf("reduce the memory limit of %s", r.Service),
				"run fewer services at once",
			},
		})
	}

	if total > availableGB {
		issues = append(issues, domain.Issue{
			Validator: ResourceValidatorName,
			Kind:      domain.IssueInsufficient,
			Severity:  domain.SeverityWarning,
			Subject:   "memory",
			Message:   fmt.Sprintf("services require %.1fGB of memory in total, %.1fGB is available", total, availableGB),
			Suggestions: []string{
				"start services in stages",
				"reduce memory limits",
			},
		})
	}
	return issues
}

func diskIssues(reqs []Requirement, freeGB float64) []domain.Issue {
	total := ImageOverheadGB
	for _, r := range reqs {
		total += r.DiskGB
	}
	if total <= freeGB {
		return nil
	}
	return []domain.Issue{{
		Validator: ResourceValidatorName,
		Kind:      domain.IssueInsufficient,
		Severity:  domain.SeverityWarning,
		Subject:   "disk",
		Message:   fmt.Sprintf("services may need ~%.1fGB of disk, %.1fGB is free", total, freeGB),
		Suggestions: []string{
			"free up disk space",
			"prune unused container images",
		},
	}}
}

func (v *ResourceValidator) toolIssues(ctx context.Context, tools map[string]string) []domain.Issue {
	var issues []domain.Issue
	for _, tool := range slices.Sorted(maps.Keys(tools)) {
		if _, err := v.probe.LookPath(tool); err != nil {
			issues = append(issues, domain.Issue{
				Validator:   ResourceValidatorName,
				Kind:        domain.IssueMissingTool,
				Severity:    domain.SeverityError,
				Subject:     tool,
				Message:     fmt.Sprintf("required tool %s was not found on PATH", tool),
				Suggestions: []string{"install " + tool, "add " + tool + " to PATH"},
			})
			continue
		}

		if constraint := strings.TrimSpace(tools[tool]); constraint != "" {
			if is, ok := v.versionIssue(ctx, tool, constraint); ok {
				issues = append(issues, is)
			}
		}
	}
	return issues
}

func (v *ResourceValidator) versionIssue(ctx context.Context, tool, constraint string) (domain.Issue, bool) {
	issue := domain.Issue{
		Validator: ResourceValidatorName,
		Kind:      domain.IssueToolVersion,
		Severity:  domain.SeverityError,
		Subject:   tool,
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		issue.Message = fmt.Sprintf("tool %s has an invalid version constraint %q", tool, constraint)
		issue.Suggestions = []string{`use a constraint such as ">=1.2"`}
		return issue, true
	}

	raw, err := v.probe.ToolVersion(ctx, tool)
	if err != nil {
		v.logger.Warn(fmt.Sprintf("cannot determine the version of %s: %v", tool, err))
		return domain.Issue{}, false
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		v.logger.Warn(fmt.Sprintf("cannot parse version %q of %s", raw, tool))
		return domain.Issue{}, false
	}

	if ok, reasons := c.Validate(version); !ok {
		issue.Message = fmt.Sprintf("tool %s %s does not satisfy %s", tool, version, constraint)
		for _, r := range reasons {
			issue.Suggestions = append(issue.Suggestions, r.Error())
		}
		issue.Suggestions = append(issue.Suggestions, fmt.Sprintf("install %s %s", tool, constraint))
		return issue, true
	}
	return domain.Issue{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
