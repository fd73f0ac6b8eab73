// SPDX-License-Identifier: MPL-2.0

package staticfact

import (
	"errors"
	"fmt"
)

// MaxDepth is the default maximum include nesting depth. Root files are at
// depth 0.
const MaxDepth = 8

// ErrRecursionExceeded is returned by Guard.Enter when nesting one more
// level would pass the depth bound.
var ErrRecursionExceeded = errors.New("include recursion limit exceeded")

// Guard tracks the include depth of one branch of a resolution walk. It is a
// value: entering a nested include returns a new Guard and leaves the
// caller's untouched, so sibling branches never see each other's depth.
type Guard struct {
	depth int
	max   int
}

// NewGuard returns a Guard at depth 0 bounded by maxDepth. Non-positive
// values fall back to MaxDepth.
func NewGuard(maxDepth int) Guard {
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}
	return Guard{max: maxDepth}
}

// Depth returns the current depth.
func (g Guard) Depth() int {
	return g.depth
}

// Max returns the depth bound.
func (g Guard) Max() int {
	return g.max
}

// Enter returns the guard for a single-file include one level deeper, or
// ErrRecursionExceeded when that level is beyond the bound.
func (g Guard) Enter() (Guard, error) {
	next := g.depth + 1
	if next > g.max {
		return g, fmt.Errorf("depth %d > %d: %w", next, g.max, ErrRecursionExceeded)
	}
	return Guard{depth: next, max: g.max}, nil
}

// Exceeded reports whether the guard is past its bound.
func (g Guard) Exceeded() bool {
	return g.depth > g.max
}
