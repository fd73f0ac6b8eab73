// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for hostfacts.
//
// This package implements the Cobra command hierarchy for the hostfacts CLI:
// resolving and publishing facts, looking up a single fact, checking facts
// files for problems, managing the tool configuration and explaining
// diagnostics from the issue catalog.
package cmd
