// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// TestBuiltinCommandTxtarCoverage verifies that every non-hidden, runnable
// leaf command has at least one testscript (.txtar) file exercising it in
// tests/cli/testdata/.
//
// The test builds the Cobra command tree, collects all leaf commands
// (non-hidden, with RunE/Run, no visible children), then scans txtar files
// for `exec hostfacts <path>` lines to determine coverage.
func TestBuiltinCommandTxtarCoverage(t *testing.T) {
	t.Parallel()

	app, err := NewApp(Dependencies{})
	if err != nil {
		t.Fatalf("NewApp() failed: %v", err)
	}
	commands := collectLeafCommands(NewRootCommand(app))

	// cmd/hostfacts/coverage_test.go → cmd/hostfacts/ → cmd/ → project root
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file path via runtime.Caller")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err != nil {
		t.Fatalf("project root detection failed: go.mod not found at %s", projectRoot)
	}
	testdataDir := filepath.Join(projectRoot, "tests", "cli", "testdata")

	covered := scanTxtarCoverage(t, testdataDir, commands)

	var uncovered []string
	for cmdPath := range commands {
		if !covered[cmdPath] {
			uncovered = append(uncovered, cmdPath)
		}
	}
	slices.Sort(uncovered)
	for _, cmdPath := range uncovered {
		t.Errorf("uncovered command: %q has no txtar test in %s", cmdPath, testdataDir)
	}
}

// collectLeafCommands returns the set of leaf (no visible children),
// non-hidden, runnable command paths.
func collectLeafCommands(root *cobra.Command) map[string]bool {
	commands := make(map[string]bool)
	walkCobraTree(root, "", commands)
	return commands
}

func walkCobraTree(cmd *cobra.Command, prefix string, commands map[string]bool) {
	for _, child := range cmd.Commands() {
		if child.Hidden {
			continue
		}

		childPath := child.Name()
		if prefix != "" {
			childPath = prefix + " " + child.Name()
		}

		visibleChildren := 0
		for _, grandchild := range child.Commands() {
			if !grandchild.Hidden {
				visibleChildren++
			}
		}

		// Routing nodes such as bare `hostfacts config` only print help.
		if visibleChildren == 0 && (child.RunE != nil || child.Run != nil) {
			commands[childPath] = true
		}

		walkCobraTree(child, childPath, commands)
	}
}

// scanTxtarCoverage reads all .txtar files in testdataDir and returns the
// set of known command paths used by `exec hostfacts ...` or
// `! exec hostfacts ...` lines.
func scanTxtarCoverage(t *testing.T, testdataDir string, knownCommands map[string]bool) map[string]bool {
	t.Helper()
	covered := make(map[string]bool)
	execRe := regexp.MustCompile(`^!?\s*exec\s+hostfacts\s+(.+)`)

	entries, err := os.ReadDir(testdataDir)
	if err != nil {
		t.Fatalf("failed to read testdata directory %s: %v", testdataDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txtar") {
			continue
		}
		scanTxtarFile(t, filepath.Join(testdataDir, entry.Name()), execRe, knownCommands, covered)
	}

	return covered
}

func scanTxtarFile(t *testing.T, filePath string, execRe *regexp.Regexp, knownCommands, covered map[string]bool) {
	t.Helper()

	f, err := os.Open(filePath)
	if err != nil {
		t.Errorf("failed to open %s: %v", filePath, err)
		return
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical.

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := execRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		if cmdPath := matchLongestCommand(strings.Fields(m[1]), knownCommands); cmdPath != "" {
			covered[cmdPath] = true
		}
	}
	if err := scanner.Err(); err != nil {
		t.Errorf("error scanning %s: %v", filePath, err)
	}
}

// matchLongestCommand returns the longest command path in knownCommands
// formed by the leading non-flag tokens.
func matchLongestCommand(tokens []string, knownCommands map[string]bool) string {
	var best string
	for i := 1; i <= len(tokens); i++ {
		if strings.HasPrefix(tokens[i-1], "-") {
			break
		}
		candidate := strings.Join(tokens[:i], " ")
		if knownCommands[candidate] {
			best = candidate
		}
	}
	return best
}

func TestMatchLongestCommand(t *testing.T) {
	t.Parallel()

	known := map[string]bool{"resolve": true, "config show": true, "config dump": true}

	tests := []struct {
		tokens []string
		want   string
	}{
		{tokens: []string{"resolve", "--format", "json"}, want: "resolve"},
		{tokens: []string{"config", "show"}, want: "config show"},
		{tokens: []string{"config"}, want: ""},
		{tokens: []string{"--verbose", "resolve"}, want: ""},
		{tokens: []string{"explain", "x"}, want: ""},
	}
	for _, tt := range tests {
		if got := matchLongestCommand(tt.tokens, known); got != tt.want {
			t.Errorf("matchLongestCommand(%v) = %q, want %q", tt.tokens, got, tt.want)
		}
	}
}
