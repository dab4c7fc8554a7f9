// Package types defines the core types and interfaces used throughout dataroot.
// This includes the FS filesystem abstraction, FileMapping entries for
// synthetic source trees, and the low-level Operation descriptions the
// executor turns into filesystem changes.
package types
