package domain

import "fmt"

// Severity of a validation issue.
type Severity string

const (
	// SeverityError blocks the run.
	SeverityError Severity = "error"
	// SeverityWarning is reported but does not block.
	SeverityWarning Severity = "warning"
)

// IssueKind identifies what a validator found.
type IssueKind string

const (
	// IssuePortConflict is a host port claimed by more than one service.
	IssuePortConflict IssueKind = "conflict"
	// IssueSystemPort is a service bound to a well-known system port.
	IssueSystemPort IssueKind = "system_port"
	// IssueCircular is a circular service dependency.
	IssueCircular IssueKind = "circular"
	// IssueMissing is a reference to an undeclared service.
	IssueMissing IssueKind = "missing"
	// IssueLongChain is a service dependency chain over the configured depth.
	IssueLongChain IssueKind = "long_chain"
	// IssueInsufficient is a memory or disk shortfall.
	IssueInsufficient IssueKind = "insufficient"
	// IssueMissingTool is a required tool absent from the host.
	IssueMissingTool IssueKind = "missing_tool"
	// IssueToolVersion is a tool whose version violates its constraint.
	IssueToolVersion IssueKind = "tool_version"
)

// Issue is a single finding of a validator.
type Issue struct {
	Validator   string    `json:"validator"`
	Kind        IssueKind `json:"kind"`
	Severity    Severity  `json:"severity"`
	Subject     string    `json:"subject"`
	Port        int       `json:"port,omitempty"`
	Parties     []string  `json:"parties,omitempty"`
	Message     string    `json:"message"`
	Suggestions []string  `json:"suggestions"`
}

// String returns a one-line summary of the issue.
func (i *Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Subject, i.Message)
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for i := range issues {
		if issues[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// SplitIssues separates error-severity issues from warnings.
func SplitIssues(issues []Issue) (errs, warnings []Issue) {
	for _, is := range issues {
		if is.Severity == SeverityError {
			errs = append(errs, is)
		} else {
			warnings = append(warnings, is)
		}
	}
	return errs, warnings
}
