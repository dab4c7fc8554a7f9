// Package redirect points dataset types at alternate source locations.
//
// A Redirector resolves a caller-supplied target (an existing directory,
// or a list of files to assemble into a synthetic tree), enforces that
// the result never lands inside the dataset's default source directory,
// and installs it in the redirection store under a scope. Readers call
// SourceDir to learn the effective source for a dataset type.
package redirect
