// SPDX-License-Identifier: MPL-2.0

package staticfact

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// Expander turns include patterns into the concrete files they name.
type Expander struct {
	fs      afero.Fs
	homeDir string
}

// NewExpander returns an Expander reading fs. homeDir is substituted for a
// leading "~"; when empty, "~" is left untouched.
func NewExpander(fs afero.Fs, homeDir string) *Expander {
	return &Expander{fs: fs, homeDir: homeDir}
}

// Canonicalize expands a leading "~", anchors relative patterns at baseDir
// and resolves "." and ".." elements. It does not touch the filesystem.
func (e *Expander) Canonicalize(pattern, baseDir string) string {
	p := pattern
	if e.homeDir != "" {
		switch {
		case p == "~":
			p = e.homeDir
		case strings.HasPrefix(p, "~"+string(filepath.Separator)):
			p = filepath.Join(e.homeDir, p[2:])
		}
	}
	if !filepath.IsAbs(p) && baseDir != "" {
		p = filepath.Join(baseDir, p)
	}
	return filepath.Clean(p)
}

// Expand returns the regular files matching pattern in lexical order. A
// pattern without metacharacters naming a missing file yields an empty
// result. The only error is a malformed pattern, wrapping
// filepath.ErrBadPattern.
func (e *Expander) Expand(pattern, baseDir string) ([]string, error) {
	canonical := e.Canonicalize(pattern, baseDir)

	matches, err := afero.Glob(e.fs, canonical)
	if err != nil {
		return nil, fmt.Errorf("expand include pattern %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, statErr := e.fs.Stat(m)
		if statErr != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	slices.Sort(files)

	return files, nil
}
