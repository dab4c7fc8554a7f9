// Package paths provides centralized path handling for dataroot.
//
// This package implements the XDG Base Directory specification and provides
// a consistent API for all path operations throughout the dataroot codebase.
// It handles:
//
//   - XDG directory structure (data, config, cache, state)
//   - The trees directory synthetic source trees are built under
//   - Path normalization, canonicalization and containment checks
//   - Destination validation for synthetic tree entries
//
// # Environment Variables
//
// The package respects the following environment variables:
//
//   - DATAROOT_CONFIG: Path to the catalog config file
//   - DATAROOT_DATA_DIR: Override XDG data directory (default: $XDG_DATA_HOME/dataroot)
//   - DATAROOT_CONFIG_DIR: Override XDG config directory (default: $XDG_CONFIG_HOME/dataroot)
//   - DATAROOT_CACHE_DIR: Override XDG cache directory (default: $XDG_CACHE_HOME/dataroot)
//   - DATAROOT_TREES_DIR: Override the synthetic tree directory (default: <cache>/trees)
//   - DATAROOT_SRC_<NAME>: Override the source directory of a single dataset type
//
// # Usage
//
//	import "github.com/datawerks/dataroot/pkg/paths"
//
//	p, err := paths.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	trees := p.TreesDir() // $XDG_CACHE_HOME/dataroot/trees
//
//	// Canonicalize an existing path, resolving symlinks
//	resolved, err := paths.Canonicalize("~/data/run-42")
//
//	// Strict containment check on canonicalized paths
//	inside := paths.IsInside(resolved, "/srv/datasets/tau")
package paths
