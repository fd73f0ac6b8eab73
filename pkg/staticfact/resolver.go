// SPDX-License-Identifier: MPL-2.0

package staticfact

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRoot is the primary facts file.
	DefaultRoot = "/etc/facts.conf"
	// LegacyRoot is read after DefaultRoot for compatibility with older
	// layouts. Facts it defines never override those of DefaultRoot.
	LegacyRoot = "/etc/facter/facts.conf"

	// maxLineBytes bounds a single line of a facts file.
	maxLineBytes = 1 << 20
)

type (
	// Options configures a Resolver. The zero value reads the host
	// filesystem sequentially with the default depth bound.
	Options struct {
		// Fs is the filesystem facts files are read from. Defaults to the OS
		// filesystem.
		Fs afero.Fs
		// HomeDir replaces a leading "~" in paths and patterns. Defaults to
		// the current user's home directory.
		HomeDir string
		// WorkDir anchors relative root paths. Relative include patterns are
		// always anchored at the directory of the including file.
		WorkDir string
		// MaxDepth bounds single-file include nesting. Defaults to MaxDepth.
		MaxDepth int
		// Parallelism is the number of files of one flat include read
		// concurrently. Values below 2 read them one after another.
		Parallelism int
		// Logger receives diagnostics as they are produced. Defaults to
		// slog.Default().
		Logger *slog.Logger
	}

	// Resolver loads facts from facts files. A Resolver holds no state
	// between calls and may be used by concurrent goroutines; every call to
	// Resolve owns its own table and depth guard.
	Resolver struct {
		fs          afero.Fs
		expander    *Expander
		workDir     string
		maxDepth    int
		parallelism int
		logger      *slog.Logger
	}

	// Result is the outcome of one resolution run.
	Result struct {
		// Facts maps fact names to values.
		Facts map[string]string
		// Diagnostics lists the non-fatal conditions met, in walk order.
		Diagnostics []Diagnostic
		// Roots are the canonical root paths that were requested.
		Roots []string
		// Sources are the files that were read, in lexical order.
		Sources []string
		// Patterns are the canonical include patterns that were expanded,
		// in lexical order.
		Patterns []string
	}

	// sink receives the output of a walk. The run itself is the sink of the
	// top-level walk; flat includes read concurrently write into buffers
	// that are replayed into their parent sink in file order.
	sink interface {
		assign(a assignment)
		report(d Diagnostic)
		read(path string)
		expanded(pattern string)
	}

	assignment struct {
		key   string
		value string
		path  string
		line  int
	}

	// run is the per-call resolution context.
	run struct {
		*Resolver
		table       *Table
		diagnostics []Diagnostic
		sources     map[string]struct{}
		patterns    map[string]struct{}
	}

	// buffer records sink calls in order for later replay.
	buffer struct {
		events []func(sink)
	}
)

// New returns a Resolver for opts.
func New(opts Options) *Resolver {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	home := opts.HomeDir
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}

	parallelism := max(opts.Parallelism, 1)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		fs:          fs,
		expander:    NewExpander(fs, home),
		workDir:     opts.WorkDir,
		maxDepth:    maxDepth,
		parallelism: parallelism,
		logger:      logger,
	}
}

// DefaultRoots returns the well-known root files in fallback order.
func DefaultRoots() []string {
	return []string{DefaultRoot, LegacyRoot}
}

// Resolve reads every root in order, each starting at depth 0, into one
// fact table. It always returns a Result; problems are reported in
// Result.Diagnostics. A cancelled ctx stops the walk between lines and the
// facts gathered so far are returned.
func (r *Resolver) Resolve(ctx context.Context, roots ...string) *Result {
	rn := &run{
		Resolver: r,
		table:    NewTable(),
		sources:  make(map[string]struct{}),
		patterns: make(map[string]struct{}),
	}

	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		path := r.expander.Canonicalize(root, r.workDir)
		canonical = append(canonical, path)
		rn.walk(ctx, path, NewGuard(r.maxDepth), nil, rn)
	}

	if err := ctx.Err(); err != nil {
		rn.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeCanceled,
			Message:  "resolution canceled, facts are incomplete",
			Cause:    err,
		})
	}

	return &Result{
		Facts:       rn.table.Facts(),
		Diagnostics: rn.diagnostics,
		Roots:       canonical,
		Sources:     sortedSet(rn.sources),
		Patterns:    sortedSet(rn.patterns),
	}
}

// ResolveAsync runs Resolve on its own goroutine. The returned channel
// yields exactly one Result and is then closed.
func (r *Resolver) ResolveAsync(ctx context.Context, roots ...string) <-chan *Result {
	roots = slices.Clone(roots)
	ch := make(chan *Result, 1)
	go func() {
		defer close(ch)
		ch <- r.Resolve(ctx, roots...)
	}()
	return ch
}

// walk reads one file. seen holds the files on this branch that a flat
// include must not read again: the files currently being read and the
// siblings claimed by every enclosing flat include.
func (rn *run) walk(ctx context.Context, path string, guard Guard, seen []string, out sink) {
	if guard.Exceeded() || ctx.Err() != nil {
		return
	}

	info, err := rn.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			out.report(Diagnostic{
				Severity: SeverityInfo,
				Code:     CodeMissingFile,
				Message:  "facts file does not exist",
				Path:     path,
				Cause:    err,
			})
			return
		}
		out.report(readFailed(path, err))
		return
	}
	if info.IsDir() {
		out.report(readFailed(path, fmt.Errorf("%s is a directory", path)))
		return
	}

	f, err := rn.fs.Open(path)
	if err != nil {
		out.report(readFailed(path, err))
		return
	}
	defer f.Close() //nolint:errcheck // read-only

	out.read(path)
	seen = append(slices.Clip(seen), path)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		lineNo++

		line := Classify(scanner.Text())
		switch line.Kind {
		case KindInclude:
			rn.include(ctx, line.Pattern, path, lineNo, guard, seen, out)
		case KindAssignment:
			out.assign(assignment{key: line.Key, value: line.Value, path: path, line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		out.report(readFailed(path, err))
	}
}

// include applies one include directive found at from:lineNo. A single
// match is a nested include bounded by the depth guard, even when it points
// back at a file being read. Several matches form a flat include read at the
// current depth; files already in seen are skipped there since the depth
// guard never stops a flat include.
func (rn *run) include(ctx context.Context, pattern, from string, lineNo int, guard Guard, seen []string, out sink) {
	baseDir := filepath.Dir(from)
	out.expanded(rn.expander.Canonicalize(pattern, baseDir))

	files, err := rn.expander.Expand(pattern, baseDir)
	if err != nil {
		out.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeBadPattern,
			Message:  fmt.Sprintf("invalid include pattern %q", pattern),
			Path:     from,
			Line:     lineNo,
			Cause:    err,
		})
		return
	}

	switch len(files) {
	case 0:
		out.report(Diagnostic{
			Severity: SeverityInfo,
			Code:     CodeMissingFile,
			Message:  fmt.Sprintf("include pattern %q matched no files", pattern),
			Path:     from,
			Line:     lineNo,
		})
	case 1:
		child, err := guard.Enter()
		if err != nil {
			out.report(Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeRecursionExceeded,
				Message:  fmt.Sprintf("not including %s, nesting is limited to %d levels", files[0], guard.Max()),
				Path:     from,
				Line:     lineNo,
				Cause:    err,
			})
			return
		}
		rn.walk(ctx, files[0], child, seen, out)
	default:
		fresh := slices.DeleteFunc(slices.Clone(files), func(f string) bool {
			return slices.Contains(seen, f)
		})
		if skipped := len(files) - len(fresh); skipped > 0 {
			out.report(Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeIncludeCycle,
				Message:  fmt.Sprintf("skipping %d of %d files matched by %q, they are already included on this branch", skipped, len(files), pattern),
				Path:     from,
				Line:     lineNo,
				Cause:    ErrIncludeCycle,
			})
		}
		if len(fresh) == 0 {
			return
		}
		// Claim every sibling before reading any of them so a sibling
		// including the same directory does not read the others again.
		rn.flat(ctx, fresh, guard, append(slices.Clip(seen), fresh...), out)
	}
}

// flat reads every file of a flat include at the current depth.
func (rn *run) flat(ctx context.Context, files []string, guard Guard, seen []string, out sink) {
	if rn.parallelism < 2 {
		for _, f := range files {
			rn.walk(ctx, f, guard, seen, out)
		}
		return
	}

	buffers := make([]*buffer, len(files))
	g := new(errgroup.Group)
	g.SetLimit(rn.parallelism)
	for i, f := range files {
		buffers[i] = &buffer{}
		g.Go(func() error {
			rn.walk(ctx, f, guard, seen, buffers[i])
			return nil
		})
	}
	_ = g.Wait() // walks report through their buffers and never fail

	for _, b := range buffers {
		b.replay(out)
	}
}

func (rn *run) assign(a assignment) {
	switch rn.table.Insert(a.key, a.value) {
	case Duplicate:
		existing, _ := rn.table.Get(a.key)
		rn.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDuplicateKey,
			Message:  fmt.Sprintf("fact %q is already defined as %q, ignoring %q", a.key, existing, a.value),
			Path:     a.path,
			Line:     a.line,
			Cause:    ErrDuplicateKey,
		})
	case InvalidKey:
		rn.report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeInvalidKey,
			Message:  fmt.Sprintf("fact name %q must not start with a digit", a.key),
			Path:     a.path,
			Line:     a.line,
			Cause:    ErrInvalidKey,
		})
	}
}

func (rn *run) report(d Diagnostic) {
	rn.diagnostics = append(rn.diagnostics, d)

	attrs := []any{"code", d.Code}
	if d.Path != "" {
		attrs = append(attrs, "path", d.Path)
	}
	if d.Line > 0 {
		attrs = append(attrs, "line", d.Line)
	}
	if d.IsWarning() {
		rn.logger.Warn(d.Message, attrs...)
	} else {
		rn.logger.Debug(d.Message, attrs...)
	}
}

func (rn *run) read(path string) {
	rn.sources[path] = struct{}{}
}

func (rn *run) expanded(pattern string) {
	rn.patterns[pattern] = struct{}{}
}

func (b *buffer) assign(a assignment) {
	b.events = append(b.events, func(s sink) { s.assign(a) })
}

func (b *buffer) report(d Diagnostic) {
	b.events = append(b.events, func(s sink) { s.report(d) })
}

func (b *buffer) read(path string) {
	b.events = append(b.events, func(s sink) { s.read(path) })
}

func (b *buffer) expanded(pattern string) {
	b.events = append(b.events, func(s sink) { s.expanded(pattern) })
}

func (b *buffer) replay(s sink) {
	for _, e := range b.events {
		e(s)
	}
}

// Warnings returns the warning-level diagnostics.
func (res *Result) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range res.Diagnostics {
		if d.IsWarning() {
			out = append(out, d)
		}
	}
	return out
}

// WatchDirs returns the directories whose changes can alter the result: the
// directories of the roots, of every file read and the static prefix of
// every include pattern. The list is sorted and free of duplicates.
func (res *Result) WatchDirs() []string {
	dirs := make(map[string]struct{})
	for _, p := range res.Roots {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for _, p := range res.Sources {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for _, p := range res.Patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		dirs[filepath.FromSlash(base)] = struct{}{}
	}
	return sortedSet(dirs)
}

// WatchPatterns returns the paths and include patterns whose matches can
// alter the result, sorted and free of duplicates. Malformed include
// patterns are left out. Together with WatchDirs it describes everything a
// file watcher needs to observe.
func (res *Result) WatchPatterns() []string {
	set := make(map[string]struct{}, len(res.Roots)+len(res.Sources)+len(res.Patterns))
	for _, list := range [][]string{res.Roots, res.Sources, res.Patterns} {
		for _, p := range list {
			if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
				continue
			}
			set[p] = struct{}{}
		}
	}
	return sortedSet(set)
}

func readFailed(path string, err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeReadFailed,
		Message:  fmt.Sprintf("cannot read facts file: %v", err),
		Path:     path,
		Cause:    err,
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
