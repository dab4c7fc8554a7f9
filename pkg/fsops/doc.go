// Package fsops executes batches of filesystem operations through
// synthfs with rollback on failure, so a failing batch leaves no
// partial state behind.
package fsops
