// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// envPublisher prints NAME=value lines that a POSIX-compatible shell can eval.
// Names are upper-cased with every other character mapped to '_'. When two
// facts map to the same variable the first in name order is kept.
type envPublisher struct{}

func (envPublisher) Publish(w io.Writer, facts FactSet) error {
	seen := make(map[string]bool, len(facts))
	for _, f := range facts {
		name := EnvName(f.Name)
		if seen[name] {
			continue
		}
		seen[name] = true

		quoted, err := syntax.Quote(f.Value, syntax.LangBash)
		if err != nil {
			return fmt.Errorf("quote fact %s: %w", f.Name, err)
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, quoted); err != nil {
			return fmt.Errorf("write fact %s: %w", f.Name, err)
		}
	}
	return nil
}

// EnvName converts a fact name into an environment variable name.
func EnvName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			sb.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}
