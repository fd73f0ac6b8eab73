// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail the test on setup
// errors instead of returning them.
//
// Environment helpers (MustSetenv, SetHomeDir, MustChdir) return cleanup
// functions suitable for t.Cleanup. Filesystem helpers (WriteFiles,
// WriteOSFiles) lay out facts file trees on an afero filesystem or on disk.
package testutil
