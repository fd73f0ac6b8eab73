// SPDX-License-Identifier: MPL-2.0

// Package publish writes resolved facts in the supported output formats:
// aligned text, JSON, TOML, YAML and shell environment assignments.
package publish
