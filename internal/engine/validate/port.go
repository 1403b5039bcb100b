// Package validate holds the static checks that run before any target is built.
package validate

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

// PortValidatorName identifies port issues.
const PortValidatorName = "port"

const maxPort = 65535

// WellKnownPorts maps system ports to the service usually bound to them.
var WellKnownPorts = map[int]string{
	22:   "SSH",
	80:   "HTTP",
	443:  "HTTPS",
	3306: "MySQL",
	5432: "PostgreSQL",
	6379: "Redis",
	9200: "Elasticsearch",
}

// allocation is one host port claimed by one declaration.
type allocation struct {
	service string
	port    int
	decl    domain.PortDeclaration
	// ranged is set when the declaration binds a host port range.
	ranged bool
}

// move rewrites one losing declaration to a free port.
type move struct {
	alloc allocation
	to    int
}

type conflict struct {
	port    int
	parties []string
	moves   []move
}

// PortValidator finds host ports claimed by more than one service.
type PortValidator struct {
	logger ports.Logger
}

// NewPortValidator creates a port validator. Unparseable mappings are
// reported to logger and skipped.
func NewPortValidator(logger ports.Logger) *PortValidator {
	return &PortValidator{logger: logger}
}

// Name identifies the validator.
func (v *PortValidator) Name() string {
	return PortValidatorName
}

// Validate reports one error per contested host port and one warning per
// service bound to a well-known port.
func (v *PortValidator) Validate(_ context.Context, project *domain.Project) ([]domain.Issue, error) {
	allocs := v.allocations(project)
	conflicts := findConflicts(allocs)

	var issues []domain.Issue
	for _, c := range conflicts {
		suggestions := make([]string, 0, len(c.moves)+1)
		for _, m := range c.moves {
			suggestions = append(suggestions, fmt.Sprintf("move %s to port %d", m.alloc.service, m.to))
		}
		suggestions = append(suggestions, "use internal networking instead of publishing the port")

		issues = append(issues, domain.Issue{
			Validator:   PortValidatorName,
			Kind:        domain.IssuePortConflict,
			Severity:    domain.SeverityError,
			Subject:     strconv.Itoa(c.port),
			Port:        c.port,
			Parties:     c.parties,
			Message:     fmt.Sprintf("port %d is claimed by %s", c.port, strings.Join(c.parties, ", ")),
			Suggestions: suggestions,
		})
	}

	used := usedPorts(allocs)
	seen := make(map[string]struct{})
	for _, a := range allocs {
		system, ok := WellKnownPorts[a.port]
		if !ok {
			continue
		}
		key := a.service + "/" + strconv.Itoa(a.port)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		issues = append(issues, domain.Issue{
			Validator: PortValidatorName,
			Kind:      domain.IssueSystemPort,
			Severity:  domain.SeverityWarning,
			Subject:   strconv.Itoa(a.port),
			Port:      a.port,
			Parties:   []string{a.service, "system (" + system + ")"},
			Message:   fmt.Sprintf("%s binds port %d, usually reserved for %s", a.service, a.port, system),
			Suggestions: []string{
				fmt.Sprintf("use port %d", alternative(a.port, used)),
			},
		})
	}

	return issues, nil
}

// allocations expands every declaration into host port claims, in
// declaration order.
func (v *PortValidator) allocations(project *domain.Project) []allocation {
	var out []allocation
	for _, svc := range project.Services {
		for _, decl := range svc.Ports {
			claimed, ranged, err := hostPorts(decl.Spec)
			if err != nil {
				v.logger.Warn(fmt.Sprintf("skipping port %q of %s in %s: %v", decl.Spec, svc.Name, decl.Source, err))
				continue
			}
			for _, p := range claimed {
				out = append(out, allocation{service: svc.Name, port: p, decl: decl, ranged: ranged})
			}
		}
	}
	return out
}

// hostPorts returns the host ports a mapping publishes. A mapping without a
// host part claims its container port.
func hostPorts(spec string) ([]int, bool, error) {
	mappings, err := nat.ParsePortSpec(spec)
	if err != nil {
		return nil, false, err
	}

	var out []int
	ranged := len(mappings) > 1
	for _, m := range mappings {
		hostPort := m.Binding.HostPort
		if hostPort == "" {
			hostPort = m.Port.Port()
		}
		start, end, err := nat.ParsePortRange(hostPort)
		if err != nil {
			return nil, false, zerr.With(zerr.Wrap(err, "invalid host port"), "spec", spec)
		}
		if end > start {
			ranged = true
		}
		for p := start; p <= end; p++ {
			out = append(out, int(p))
		}
	}
	return out, ranged, nil
}

// findConflicts groups claims by port. Every claimant after the first is
// moved to a distinct free port.
func findConflicts(allocs []allocation) []conflict {
	byPort := make(map[int][]allocation)
	var order []int
	for _, a := range allocs {
		if _, ok := byPort[a.port]; !ok {
			order = append(order, a.port)
		}
		byPort[a.port] = append(byPort[a.port], a)
	}
	slices.Sort(order)

	used := usedPorts(allocs)
	var out []conflict
	for _, port := range order {
		claims := byPort[port]

		var parties []string
		for _, a := range claims {
			if !slices.Contains(parties, a.service) {
				parties = append(parties, a.service)
			}
		}
		if len(parties) < 2 {
			continue
		}

		c := conflict{port: port, parties: parties}
		for _, loser := range parties[1:] {
			to := alternative(port, used)
			used[to] = struct{}{}
			for _, a := range claims {
				if a.service == loser {
					c.moves = append(c.moves, move{alloc: a, to: to})
				}
			}
		}
		out = append(out, c)
	}
	return out
}

func usedPorts(allocs []allocation) map[int]struct{} {
	used := make(map[int]struct{}, len(allocs))
	for _, a := range allocs {
		used[a.port] = struct{}{}
	}
	return used
}

// alternative returns the first of p+1, p+10, p+100 and p+1000 that is
// neither well known nor in use. Near the top of the range it falls back to
// the closest free port below p.
func alternative(p int, used map[int]struct{}) int {
	for _, delta := range []int{1, 10, 100, 1000} {
		if alt := p + delta; alt <= maxPort && free(alt, used) {
			return alt
		}
	}
	for alt := p - 1; alt > 0; alt-- {
		if free(alt, used) {
			return alt
		}
	}
	return p
}

func free(port int, used map[int]struct{}) bool {
	if _, known := WellKnownPorts[port]; known {
		return false
	}
	_, taken := used[port]
	return !taken
}

// Report renders issues as text for humans.
func Report(issues []domain.Issue) string {
	if len(issues) == 0 {
		return "No issues found.\n"
	}

	errs, warnings := domain.SplitIssues(issues)
	var b strings.Builder
	fmt.Fprintf(&b, "Validation found %d error(s) and %d warning(s)\n", len(errs), len(warnings))

	for _, group := range []struct {
		title  string
		issues []domain.Issue
	}{{"Errors", errs}, {"Warnings", warnings}} {
		if len(group.issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", group.title)
		for _, is := range group.issues {
			fmt.Fprintf(&b, "  [%s] %s\n", is.Validator, is.Message)
			for _, s := range is.Suggestions {
				fmt.Fprintf(&b, "      - %s\n", s)
			}
		}
	}
	return b.String()
}

// FixScript renders a bash script that moves the losing claimant of every
// port conflict in issues to its suggested port. Each touched file is backed
// up first.
func (v *PortValidator) FixScript(project *domain.Project, issues []domain.Issue, now time.Time) string {
	wanted := make(map[int]struct{})
	for _, is := range issues {
		if is.Validator == PortValidatorName && is.Kind == domain.IssuePortConflict && is.Severity == domain.SeverityError {
			wanted[is.Port] = struct{}{}
		}
	}

	var b strings.Builder
	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("# Resolves host port conflicts found by polybuild validate.\n")
	b.WriteString("set -euo pipefail\n")

	stamp := now.UTC().Format("20060102T150405Z")
	backedUp := make(map[string]struct{})

	for _, c := range findConflicts(v.allocations(project)) {
		if _, ok := wanted[c.port]; !ok {
			continue
		}
		fmt.Fprintf(&b, "\n# port %d: %s\n", c.port, strings.Join(c.parties, ", "))

		for _, m := range c.moves {
			decl := m.alloc.decl
			if decl.Source == "" || decl.Line == 0 || m.alloc.ranged {
				fmt.Fprintf(&b, "# edit %s manually: %q of %s -> %d\n", orUnknown(decl.Source), decl.Spec, m.alloc.service, m.to)
				continue
			}
			if _, ok := backedUp[decl.Source]; !ok {
				backedUp[decl.Source] = struct{}{}
				fmt.Fprintf(&b, "cp %s %s\n", shellQuote(decl.Source), shellQuote(decl.Source+".bak."+stamp))
			}
			fmt.Fprintf(&b, "sed -i -E '%ds/(^|[^0-9])%d([^0-9]|$)/\\1%d\\2/' %s\n",
				decl.Line, m.alloc.port, m.to, shellQuote(decl.Source))
		}
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "<unknown file>"
	}
	return s
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
