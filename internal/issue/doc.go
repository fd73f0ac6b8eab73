// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog behind
// 'hostfacts explain'.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Catalog entries are Markdown documents rendered with
// glamour, looked up by Id or by kebab-case name.
package issue
