// Package filesystem provides filesystem implementations for dataroot.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an afero-backed filesystem
// used for in-memory testing.
package filesystem
