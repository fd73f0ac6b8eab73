// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hostfacts/hostfacts/internal/issue"
	"github.com/hostfacts/hostfacts/pkg/staticfact"
)

// renderDiagnostics writes one line per diagnostic. Informational
// diagnostics are skipped unless withInfo is set. It returns the number of
// lines written.
func renderDiagnostics(w io.Writer, diags []staticfact.Diagnostic, withInfo bool) int {
	n := 0
	for _, d := range diags {
		label := WarningStyle.Render("warning")
		if !d.IsWarning() {
			if !withInfo {
				continue
			}
			label = VerboseStyle.Render("info")
		}
		fmt.Fprintf(w, "%s %s %s\n", label, diagCodeStyle.Render("["+string(d.Code)+"]"), d.String())
		n++
	}
	return n
}

// renderExplainHint points at 'hostfacts explain' for every distinct
// warning code that has a catalog entry.
func renderExplainHint(w io.Writer, diags []staticfact.Diagnostic) {
	var names []string
	for _, d := range diags {
		if !d.IsWarning() {
			continue
		}
		entry, ok := issue.Lookup(string(d.Code))
		if !ok || slices.Contains(names, entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return
	}
	slices.Sort(names)
	fmt.Fprintln(w, diagHintStyle.Render(
		fmt.Sprintf("Run 'hostfacts explain <issue>' for details: %s", strings.Join(names, ", "))))
}
