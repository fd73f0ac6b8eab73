// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	MissingFileId Id = iota + 1
	RecursionExceededId
	DuplicateKeyId
	InvalidKeyId
	IncludeCycleId
	ReadFailedId
	BadPatternId
	FactNotFoundId
	ConfigLoadFailedId
	UnknownFormatId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	name     string      // kebab-case name accepted by 'hostfacts explain'
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	missingFileIssue = &Issue{
		id:   MissingFileId,
		name: "missing-file",
		mdMsg: `
# Fact file not found

A root file or an include pattern did not match any regular file.
This is informational: resolution continues with the remaining files.

## Things you can try:
- Check the path for typos; relative includes are resolved against the
  directory of the file that contains them
- Remember that ~ expands to the home directory of the user running hostfacts
- Run with --show-diagnostics to see every file that was skipped`,
	}

	recursionExceededIssue = &Issue{
		id:   RecursionExceededId,
		name: "recursion-exceeded",
		mdMsg: `
# Include nesting too deep

A chain of single-file includes went deeper than the configured maximum
depth (8 by default). The include line that crossed the limit was skipped.

## Things you can try:
- Flatten the chain: include a directory with a wildcard instead
~~~
include /etc/facts.d/*.conf
~~~
- Raise the limit for one run:
~~~
$ hostfacts resolve --max-depth 16
~~~
- Or set ` + "`max_depth`" + ` in config.cue (1..64)`,
	}

	duplicateKeyIssue = &Issue{
		id:   DuplicateKeyId,
		name: "duplicate-key",
		mdMsg: `
# Duplicate fact

A fact was assigned more than once. The first assignment in resolution order
wins and later ones are ignored.

## Resolution order
1. Root files in the order given
2. Inside a file, lines from top to bottom
3. An include is resolved where it appears, before the lines after it
4. Files matched by a wildcard include are taken in lexical order

## Things you can try:
- Move the value you want to win earlier in the order above
- Delete the stale assignment`,
	}

	invalidKeyIssue = &Issue{
		id:   InvalidKeyId,
		name: "invalid-key",
		mdMsg: `
# Invalid fact name

Fact names must not be empty and must not start with a digit.
The assignment was ignored.

## Things you can try:
- Rename the fact, for example ` + "`2nd_nic = eth1`" + ` to ` + "`nic_2 = eth1`",
	}

	includeCycleIssue = &Issue{
		id:   IncludeCycleId,
		name: "include-cycle",
		mdMsg: `
# Include cycle

A wildcard include matched files that are already being read on the same
branch, directly or through other wildcard includes. Those matches were
skipped; every fact they define is read once by the enclosing include.

A single-file include that points back at its own file is not a cycle here:
the loop is followed until the nesting limit stops it (see
` + "`hostfacts explain recursion-exceeded`" + `).

## Things you can try:
- Narrow the include pattern so it does not match the including file
- Keep included fragments in a separate directory from the root file`,
	}

	readFailedIssue = &Issue{
		id:   ReadFailedId,
		name: "read-failed",
		mdMsg: `
# Fact file could not be read

The file exists but could not be opened or read, or the path is a directory.

## Things you can try:
- Check file permissions for the user running hostfacts
- Make sure roots point at files, not directories`,
	}

	badPatternIssue = &Issue{
		id:   BadPatternId,
		name: "bad-pattern",
		mdMsg: `
# Malformed include pattern

An include pattern could not be parsed as a glob, usually because of an
unclosed ` + "`[`" + `. The include line was skipped.

## Supported syntax
- ` + "`*`" + ` any run of characters except the path separator
- ` + "`?`" + ` a single character
- ` + "`[abc]`" + `, ` + "`[a-z]`" + ` character classes`,
		extLinks: []HttpLink{"https://pkg.go.dev/path/filepath#Match"},
	}

	factNotFoundIssue = &Issue{
		id:   FactNotFoundId,
		name: "fact-not-found",
		mdMsg: `
# Fact not found

No resolved fact has the requested name.

## Things you can try:
- List every fact:
~~~
$ hostfacts resolve
~~~
- Check the diagnostics for skipped files:
~~~
$ hostfacts check
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "invalid-config",
		mdMsg: `
# Failed to load configuration!

The hostfacts configuration file could not be loaded or did not match the schema.

## Configuration file location:
- Linux: ~/.config/hostfacts/config.cue (or $XDG_CONFIG_HOME/hostfacts/config.cue)
- Fallback: ./config.cue

## Accepted keys:
~~~cue
roots: ["/etc/facts.conf"]
max_depth: 8          // 1..64
parallelism: 1        // 1 or more
output: {
	format: "text"    // text | json | toml | yaml | env
	prefix: ""
}
log: level: "info"    // debug | info | warn | error
watch: debounce: "500ms"
~~~

Every key can be overridden with HOSTFACTS_<KEY>, for example HOSTFACTS_OUTPUT_FORMAT=json.

## Things you can try:
- Write a fresh default file:
~~~
$ hostfacts config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	unknownFormatIssue = &Issue{
		id:   UnknownFormatId,
		name: "unknown-format",
		mdMsg: `
# Unknown output format

Supported formats are text, json, toml, yaml and env.

## Things you can try:
~~~
$ hostfacts resolve --format json
~~~`,
	}

	watchFailedIssue = &Issue{
		id:   WatchFailedId,
		name: "watch-failed",
		mdMsg: `
# Watch mode stopped

The file watcher could not be started or hit a fatal error.

## Things you can try:
- On Linux, raise fs.inotify.max_user_watches
- Make sure the directories of the root files exist`,
	}

	issues = map[Id]*Issue{
		missingFileIssue.Id():       missingFileIssue,
		recursionExceededIssue.Id(): recursionExceededIssue,
		duplicateKeyIssue.Id():      duplicateKeyIssue,
		invalidKeyIssue.Id():        invalidKeyIssue,
		includeCycleIssue.Id():      includeCycleIssue,
		readFailedIssue.Id():        readFailedIssue,
		badPatternIssue.Id():        badPatternIssue,
		factNotFoundIssue.Id():      factNotFoundIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		unknownFormatIssue.Id():     unknownFormatIssue,
		watchFailedIssue.Id():       watchFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}

// Names returns every issue name in sorted order.
func Names() []string {
	names := make([]string, 0, len(issues))
	for _, i := range issues {
		names = append(names, i.name)
	}
	slices.Sort(names)
	return names
}

// Lookup finds an issue by name. Underscores are accepted in place of
// hyphens so diagnostic codes such as "duplicate_key" resolve directly.
func Lookup(name string) (*Issue, bool) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, i := range issues {
		if i.name == name {
			return i, true
		}
	}
	return nil, false
}
