package prune

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/paths"
)

// Options defines the options for the PruneTrees command.
type Options struct {
	// TreesDir is the directory holding synthetic trees; empty uses
	// the configured default.
	TreesDir string

	// OlderThan keeps trees younger than this age. Zero prunes
	// everything.
	OlderThan time.Duration

	DryRun bool
}

// Result reports what was pruned.
type Result struct {
	Removed []string
	Kept    int
	DryRun  bool
}

// PruneTrees removes leftover synthetic source trees. Global-scope trees
// outlive the process that staged them, so they accumulate until pruned.
// Only directories carrying the tree name prefix are touched.
func PruneTrees(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.prune")

	treesDir := opts.TreesDir
	if treesDir == "" {
		p, err := paths.New()
		if err != nil {
			return nil, err
		}
		treesDir = p.TreesDir()
	}
	normalized, err := paths.NormalizePath(treesDir)
	if err != nil {
		return nil, err
	}
	treesDir = normalized

	log.Debug().
		Str("trees_dir", treesDir).
		Dur("older_than", opts.OlderThan).
		Bool("dry_run", opts.DryRun).
		Msg("Executing command")

	dirEntries, err := os.ReadDir(treesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Result{DryRun: opts.DryRun}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read trees directory %s", treesDir)
	}

	cutoff := time.Now().Add(-opts.OlderThan)
	result := &Result{DryRun: opts.DryRun}
	for _, entry := range dirEntries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), paths.TreePrefix) {
			continue
		}
		treePath := filepath.Join(treesDir, entry.Name())

		if opts.OlderThan > 0 {
			info, err := entry.Info()
			if err != nil {
				log.Warn().Err(err).Str("tree", treePath).Msg("Cannot stat tree, keeping it")
				result.Kept++
				continue
			}
			if info.ModTime().After(cutoff) {
				result.Kept++
				continue
			}
		}

		if !opts.DryRun {
			if err := os.RemoveAll(treePath); err != nil {
				log.Warn().Err(err).Str("tree", treePath).Msg("Failed to remove tree")
				result.Kept++
				continue
			}
		}
		result.Removed = append(result.Removed, treePath)
	}

	log.Info().
		Int("removed", len(result.Removed)).
		Int("kept", result.Kept).
		Bool("dry_run", opts.DryRun).
		Msg("Command finished")
	return result, nil
}
