// SPDX-License-Identifier: MPL-2.0

package staticfact

import (
	"regexp"
	"strings"
)

const (
	// KindMalformed is a line that is neither a directive nor an assignment.
	KindMalformed LineKind = iota
	// KindBlank is an empty or whitespace-only line.
	KindBlank
	// KindComment is a line whose first non-blank character is '#'.
	KindComment
	// KindInclude is an "include <pattern>" directive.
	KindInclude
	// KindAssignment is a "key=value" line.
	KindAssignment
)

var (
	includeRegexp    = regexp.MustCompile(`^include\s+(.+)$`)
	assignmentRegexp = regexp.MustCompile(`^(.+?)\s?=\s?(.+)$`)
)

type (
	// LineKind identifies the kind of a classified line.
	LineKind int

	// Line is one classified line of a facts file. Pattern is set for
	// KindInclude; Key and Value are set for KindAssignment.
	Line struct {
		Kind    LineKind
		Pattern string
		Key     string
		Value   string
	}
)

// String returns a human-readable kind name.
func (k LineKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindInclude:
		return "include"
	case KindAssignment:
		return "assignment"
	default:
		return "malformed"
	}
}

// Classify decides what a raw line of a facts file is and extracts its
// payload. Surrounding whitespace (including a trailing "\r") is ignored.
func Classify(raw string) Line {
	line := strings.TrimSpace(raw)

	switch {
	case line == "":
		return Line{Kind: KindBlank}
	case strings.HasPrefix(line, "#"):
		return Line{Kind: KindComment}
	}

	if m := includeRegexp.FindStringSubmatch(line); m != nil {
		return Line{Kind: KindInclude, Pattern: strings.TrimSpace(m[1])}
	}

	if m := assignmentRegexp.FindStringSubmatch(line); m != nil {
		key := strings.TrimSpace(m[1])
		if key == "" {
			return Line{Kind: KindMalformed}
		}
		return Line{Kind: KindAssignment, Key: key, Value: strings.TrimSpace(m[2])}
	}

	return Line{Kind: KindMalformed}
}
