// SPDX-License-Identifier: MPL-2.0

package staticfact

import (
	"errors"
	"fmt"
)

const (
	// SeverityInfo marks expected conditions such as an absent optional file.
	SeverityInfo Severity = "info"
	// SeverityWarning marks input that was discarded or truncated.
	SeverityWarning Severity = "warning"
)

const (
	// CodeMissingFile reports a root or include target that does not exist.
	CodeMissingFile Code = "missing_file"
	// CodeRecursionExceeded reports an include truncated by the depth bound.
	CodeRecursionExceeded Code = "recursion_exceeded"
	// CodeDuplicateKey reports an assignment to an already defined fact.
	CodeDuplicateKey Code = "duplicate_key"
	// CodeInvalidKey reports an assignment whose name starts with a digit.
	CodeInvalidKey Code = "invalid_key"
	// CodeIncludeCycle reports flat include matches skipped because they are
	// already being read, or already claimed, on the current branch.
	CodeIncludeCycle Code = "include_cycle"
	// CodeReadFailed reports a file that exists but could not be read.
	CodeReadFailed Code = "read_failed"
	// CodeBadPattern reports an include pattern with invalid glob syntax.
	CodeBadPattern Code = "bad_pattern"
	// CodeCanceled reports a walk stopped by context cancellation.
	CodeCanceled Code = "canceled"
)

// ErrIncludeCycle is the cause attached to include_cycle diagnostics.
var ErrIncludeCycle = errors.New("include cycle")

type (
	// Severity is the diagnostic level.
	Severity string

	// Code is a machine-readable diagnostic identifier.
	Code string

	// Diagnostic is a non-fatal condition met while resolving facts. It is
	// returned to callers instead of being written anywhere so the caller
	// decides how to render it.
	Diagnostic struct {
		Severity Severity
		Code     Code
		Message  string
		// Path is the file the condition was found in (optional).
		Path string
		// Line is the 1-based line number within Path, or 0.
		Line int
		// Cause is the underlying error, for errors.Is (optional).
		Cause error
	}
)

// String renders the diagnostic as "path:line: message".
func (d Diagnostic) String() string {
	switch {
	case d.Path != "" && d.Line > 0:
		return fmt.Sprintf("%s:%d: %s", d.Path, d.Line, d.Message)
	case d.Path != "":
		return fmt.Sprintf("%s: %s", d.Path, d.Message)
	default:
		return d.Message
	}
}

// IsWarning reports whether the diagnostic is at warning severity.
func (d Diagnostic) IsWarning() bool {
	return d.Severity == SeverityWarning
}
