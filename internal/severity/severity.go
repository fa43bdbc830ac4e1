// Package severity provides the levels attached to operation validation issues.
//
// Error issues make an operation unusable and fail route registration; warning issues
// are logged and registration proceeds.
package severity

// Severity indicates how serious an operation validation issue is.
type Severity int

const (
	// SeverityError indicates a declaration the binder cannot compile.
	SeverityError Severity = iota

	// SeverityWarning indicates a declaration that compiles but is likely a mistake.
	SeverityWarning
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}
