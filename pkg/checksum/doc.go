// Package checksum hashes dataset files with BLAKE3 and memoizes the
// digests per source directory.
//
// Cache keys are paths relative to a dataset's default source
// directory, invalidated when a file's size or modification time
// changes. This location-keyed scheme is the reason redirected sources
// are rejected inside the default source directory: a synthetic tree
// there would alias cache entries for the files it shadows.
package checksum
