// Package testutil provides utilities for testing dataroot components.
//
// Key components:
//   - TestEnvironment: isolated sandbox with DATAROOT_* pointed at a temp root
//   - Filesystem helpers: CreateFile, CreateSymlink, AssertSymlink and friends
//   - NewTestFS: afero-backed in-memory types.FS for tests that never touch disk
//
// Usage guidelines:
//   - Symlink and tree-building tests use the real filesystem via TestEnvironment
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
