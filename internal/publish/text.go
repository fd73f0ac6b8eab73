// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorName  = lipgloss.Color("#3B82F6")
	colorArrow = lipgloss.Color("#6B7280")
)

// textPublisher prints "name => value" lines with the names padded to a
// common width. Colors are only emitted when w is a color-capable terminal.
type textPublisher struct{}

func (textPublisher) Publish(w io.Writer, facts FactSet) error {
	r := lipgloss.NewRenderer(w)
	nameStyle := r.NewStyle().Bold(true).Foreground(colorName)
	arrow := r.NewStyle().Foreground(colorArrow).Render("=>")

	width := 0
	for _, f := range facts {
		width = max(width, lipgloss.Width(f.Name))
	}

	for _, f := range facts {
		pad := strings.Repeat(" ", width-lipgloss.Width(f.Name))
		if _, err := fmt.Fprintf(w, "%s%s %s %s\n", nameStyle.Render(f.Name), pad, arrow, f.Value); err != nil {
			return fmt.Errorf("write fact %s: %w", f.Name, err)
		}
	}
	return nil
}
