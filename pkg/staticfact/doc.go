// SPDX-License-Identifier: MPL-2.0

// Package staticfact resolves statically defined facts from on-disk
// configuration files.
//
// A facts file holds one directive per line:
//
//	# comment
//	key=value
//	key = value
//	include /etc/facts.d/answer.fact
//	include /etc/facts.d/*.fact
//
// An include whose pattern matches exactly one file nests that file one level
// deeper; nesting stops at MaxDepth. An include matching several files is a
// "flat include": every match is read at the current depth. The first
// definition of a fact wins across every file of a run, so later files (and
// legacy fallback roots) never override earlier ones.
//
// A relative include pattern is anchored at the directory of the file that
// contains it, not at the process working directory, so "include facts.d/*"
// in /etc/facts.conf always means /etc/facts.d/*. Relative root paths are
// anchored at Options.WorkDir. Layouts that relied on includes resolving
// against the working directory need absolute patterns.
//
// A single-file include that loops back to a file being read is not pruned:
// every file on the loop keeps reading its later lines and the depth guard
// ends the branch. A flat include skips matches that are already being read
// on its branch or were claimed by an enclosing flat include, reporting one
// include_cycle diagnostic, since flat includes never consume depth.
//
// Resolution never fails. Missing files, truncated include chains, duplicate
// and invalid keys are reported as Diagnostic values on the Result while the
// remaining facts are still returned.
//
// File organization:
//   - line.go: line classification
//   - expand.go: include pattern canonicalization and glob expansion
//   - guard.go: recursion depth guard
//   - table.go: the mutex-guarded fact table
//   - resolver.go: the include walk
//   - diagnostic.go: non-fatal diagnostics
package staticfact
