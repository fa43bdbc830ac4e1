// Package issues provides the issue type collected while validating operation
// declarations and checking values against schemas.
package issues

import (
	"github.com/erraggy/oashttp/internal/severity"
	"github.com/erraggy/oashttp/oaserrors"
)

// Issue represents a single problem found during validation or conformance checking.
type Issue struct {
	// Path locates the problem (e.g. "paths./pets.get.parameters[0]" or "body.tags[1]")
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates whether the issue fails the check
	Severity severity.Severity
}

// String returns "severity path: message".
func (i Issue) String() string {
	if i.Path == "" {
		return i.Severity.String() + " " + i.Message
	}
	return i.Severity.String() + " " + i.Path + ": " + i.Message
}

// Errorf is shorthand for an error-severity Issue.
func Errorf(path, message string) Issue {
	return Issue{Path: path, Message: message, Severity: severity.SeverityError}
}

// Warnf is shorthand for a warning-severity Issue.
func Warnf(path, message string) Issue {
	return Issue{Path: path, Message: message, Severity: severity.SeverityWarning}
}

// List is an ordered collection of issues.
type List []Issue

// HasErrors reports whether any issue has error severity.
func (l List) HasErrors() bool {
	for _, i := range l {
		if i.Severity == severity.SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity issues.
func (l List) Errors() List {
	return l.filter(severity.SeverityError)
}

// Warnings returns the warning-severity issues.
func (l List) Warnings() List {
	return l.filter(severity.SeverityWarning)
}

func (l List) filter(s severity.Severity) List {
	var out List
	for _, i := range l {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Public converts the error-severity issues to their exported form.
func (l List) Public() []oaserrors.Issue {
	errs := l.Errors()
	if len(errs) == 0 {
		return nil
	}
	out := make([]oaserrors.Issue, len(errs))
	for i, issue := range errs {
		out[i] = oaserrors.Issue{Path: issue.Path, Message: issue.Message}
	}
	return out
}
