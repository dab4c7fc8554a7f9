package stage

import (
	"os"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/redirect"
	"github.com/datawerks/dataroot/pkg/sourcetree"
	"github.com/datawerks/dataroot/pkg/types"
)

// Options defines the options for the StageTree command.
type Options struct {
	Catalog *catalog.Catalog
	Dataset string

	// Pairs are dest=source arguments; a bare source stages under its
	// base name.
	Pairs []string

	// MappingFile names a TOML file of dest = "source" entries staged
	// in addition to Pairs.
	MappingFile string

	LinkOthers bool

	// TreesDir and Fallback configure the tree builder; empty values
	// use the defaults.
	TreesDir string
	Fallback string
}

// Result holds the staged tree.
type Result struct {
	Dataset    string
	TreePath   string
	Entries    int
	LinkOthers bool
}

// StageTree builds a synthetic source tree for a dataset type under the
// global scope and returns its path. The tree stays on disk after the
// process exits; point DATAROOT_SRC_<NAME> at it, and prune removes it
// later.
func StageTree(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.stage")
	log.Debug().
		Str("dataset", opts.Dataset).
		Int("pairs", len(opts.Pairs)).
		Str("mapping_file", opts.MappingFile).
		Msg("Executing command")

	files, err := parsePairs(opts.Pairs)
	if err != nil {
		return nil, err
	}

	if opts.MappingFile != "" {
		fromFile, err := loadMappingFile(opts.MappingFile)
		if err != nil {
			return nil, err
		}
		files = append(files, fromFile...)
	}

	if len(files) == 0 {
		return nil, errors.New(errors.ErrInvalidInput,
			"no file mappings given; pass dest=source arguments or --mapping-file")
	}

	builder, err := sourcetree.New(&sourcetree.Options{
		TreesDir: opts.TreesDir,
		Fallback: opts.Fallback,
	})
	if err != nil {
		return nil, err
	}

	redirector, err := redirect.New(opts.Catalog, redirect.WithBuilder(builder))
	if err != nil {
		return nil, err
	}

	treePath, err := redirector.Redirect(opts.Dataset,
		&redirect.Target{Files: files},
		redirect.LinkOthers(opts.LinkOthers))
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("dataset", opts.Dataset).
		Str("tree", treePath).
		Int("entries", len(files)).
		Msg("Command finished")
	return &Result{
		Dataset:    opts.Dataset,
		TreePath:   treePath,
		Entries:    len(files),
		LinkOthers: opts.LinkOthers,
	}, nil
}

// parsePairs turns dest=source arguments into file mappings. A bare
// source (no "=") gets an empty dest, staging it under its base name.
func parsePairs(pairs []string) ([]types.FileMapping, error) {
	files := make([]types.FileMapping, 0, len(pairs))
	for _, pair := range pairs {
		dest, source, found := strings.Cut(pair, "=")
		if !found {
			files = append(files, types.FileMapping{Source: pair})
			continue
		}
		if source == "" {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"empty source in mapping %q", pair)
		}
		files = append(files, types.FileMapping{Dest: dest, Source: source})
	}
	return files, nil
}

// loadMappingFile reads a TOML file of dest = "source" entries, sorted
// by dest for a stable staging order.
func loadMappingFile(path string) ([]types.FileMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound,
				"no such mapping file %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read mapping file %s", path)
	}

	entries := make(map[string]string)
	if err := toml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"parsing mapping file %s", path)
	}

	dests := make([]string, 0, len(entries))
	for dest := range entries {
		dests = append(dests, dest)
	}
	sort.Strings(dests)

	files := make([]types.FileMapping, 0, len(entries))
	for _, dest := range dests {
		if entries[dest] == "" {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"empty source for %q in mapping file %s", dest, path)
		}
		files = append(files, types.FileMapping{Dest: dest, Source: entries[dest]})
	}
	return files, nil
}
