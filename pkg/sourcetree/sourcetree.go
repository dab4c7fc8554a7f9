package sourcetree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/datawerks/dataroot/pkg/config"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/filesystem"
	"github.com/datawerks/dataroot/pkg/fsops"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/paths"
	"github.com/datawerks/dataroot/pkg/scope"
	"github.com/datawerks/dataroot/pkg/types"
)

// Request describes one synthetic tree.
type Request struct {
	// Dataset names the dataset type, used for tree naming and logs.
	Dataset string

	// Mappings are the ordered (Dest, Source) pairs to place. Dests
	// are relative to the tree root; sources are absolute paths that
	// must exist.
	Mappings []types.FileMapping

	// LinkOthers backfills every entry of the default source
	// directory that the mappings did not claim.
	LinkOthers bool

	// SourceDir is the dataset's default source directory, consulted
	// only for the LinkOthers backfill. Empty disables backfill.
	SourceDir string

	// Scope owns the tree's lifetime. A frame scope removes the tree
	// on close; the global scope leaves it on disk.
	Scope *scope.Scope
}

// Options configures a Builder.
type Options struct {
	// FS is used for planning reads. Defaults to the OS filesystem.
	FS types.FS

	// TreesDir is where trees are materialized. Defaults to the
	// dataroot trees directory.
	TreesDir string

	// Fallback is config.FallbackCopy or config.FallbackError: what
	// to do when the trees directory cannot hold symlinks.
	Fallback string
}

// Builder materializes synthetic source trees: temporary directories
// whose entries are symlinks (or copies) satisfying a requested
// layout.
type Builder struct {
	logger   zerolog.Logger
	fs       types.FS
	treesDir string
	fallback string
	executor *fsops.Executor
}

// New creates a Builder.
func New(opts *Options) (*Builder, error) {
	if opts == nil {
		opts = &Options{}
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	treesDir := opts.TreesDir
	if treesDir == "" {
		p, err := paths.New()
		if err != nil {
			return nil, err
		}
		treesDir = p.TreesDir()
	}

	fallback := opts.Fallback
	if fallback == "" {
		fallback = config.FallbackCopy
	}
	switch fallback {
	case config.FallbackCopy, config.FallbackError:
	default:
		return nil, errors.Newf(errors.ErrInvalidInput,
			"unknown fallback mode %q", fallback)
	}

	return &Builder{
		logger:   logging.GetLogger("sourcetree"),
		fs:       fs,
		treesDir: treesDir,
		fallback: fallback,
		executor: fsops.New(nil),
	}, nil
}

// Build materializes the requested tree. It returns the tree path and
// the scope binding owning its removal. On any failure the partially
// created tree is removed and nothing is left behind.
func (b *Builder) Build(req Request) (string, *scope.Binding, error) {
	if req.Scope == nil {
		req.Scope = scope.Global()
	}

	logger := b.logger.With().Str("dataset", req.Dataset).Logger()

	// Plan before touching the filesystem: bad input must not leave
	// an empty tree around.
	pl, err := b.plan(req.Mappings)
	if err != nil {
		return "", nil, err
	}

	treePath, binding, err := b.allocateTree(req)
	if err != nil {
		return "", nil, err
	}

	copyMode, err := b.probeSymlinks(treePath, binding, logger)
	if err != nil {
		return "", nil, err
	}

	ops, err := b.assemble(req, pl, treePath, copyMode)
	if err != nil {
		releaseQuietly(binding, logger)
		return "", nil, err
	}

	if _, err := b.executor.Execute(ops); err != nil {
		releaseQuietly(binding, logger)
		if errors.IsErrorCode(err, errors.ErrDestCollision) {
			return "", nil, err
		}
		return "", nil, errors.Wrapf(err, errors.ErrTreeBuild,
			"failed to build synthetic tree for %s", req.Dataset)
	}

	logger.Info().
		Str("tree", treePath).
		Int("mappings", len(req.Mappings)).
		Bool("copyMode", copyMode).
		Bool("linkOthers", req.LinkOthers).
		Msg("Synthetic tree built")

	return treePath, binding, nil
}

// plan validates destinations and detects collisions among them.
type plan struct {
	// dests maps cleaned destination paths to their mapping index.
	dests map[string]int

	// order lists cleaned destinations in mapping order.
	order []string

	// dirs is the set of ancestor directories the tree needs.
	dirs map[string]bool
}

func (b *Builder) plan(mappings []types.FileMapping) (*plan, error) {
	pl := &plan{
		dests: make(map[string]int, len(mappings)),
		dirs:  make(map[string]bool),
	}

	for i, m := range mappings {
		if err := paths.ValidateDest(m.Dest); err != nil {
			return nil, err
		}
		dest := filepath.Clean(m.Dest)

		if _, dup := pl.dests[dest]; dup {
			return nil, errors.Newf(errors.ErrDestCollision,
				"destination %q requested twice", dest).WithDetail("dest", dest)
		}
		pl.dests[dest] = i
		pl.order = append(pl.order, dest)

		for _, dir := range paths.Ancestors(dest) {
			pl.dirs[dir] = true
		}
	}

	// A destination that is also a parent directory of another
	// destination cannot be both an entry and a directory.
	for dest := range pl.dests {
		if pl.dirs[dest] {
			return nil, errors.Newf(errors.ErrDestCollision,
				"destination %q is also a parent of another destination", dest).
				WithDetail("dest", dest)
		}
	}

	return pl, nil
}

// allocateTree creates the unique tree directory and binds its removal
// to the request scope.
func (b *Builder) allocateTree(req Request) (string, *scope.Binding, error) {
	if err := os.MkdirAll(b.treesDir, 0755); err != nil {
		return "", nil, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create trees directory %s", b.treesDir)
	}

	treePath, err := os.MkdirTemp(b.treesDir, paths.TreePrefix+req.Dataset+"-")
	if err != nil {
		return "", nil, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create tree directory under %s", b.treesDir)
	}

	logger := b.logger
	binding, err := req.Scope.Bind(func() error {
		logger.Debug().Str("tree", treePath).Msg("Removing synthetic tree")
		return os.RemoveAll(treePath)
	})
	if err != nil {
		// Closed scope: nothing owns the tree, remove it now.
		_ = os.RemoveAll(treePath)
		return "", nil, err
	}

	return treePath, binding, nil
}

// probeSymlinks checks that the tree directory can hold symlinks,
// switching to copy mode or failing per the fallback setting.
func (b *Builder) probeSymlinks(treePath string, binding *scope.Binding, logger zerolog.Logger) (bool, error) {
	probe := filepath.Join(treePath, ".dataroot-probe")
	err := os.Symlink("probe-target", probe)
	if err == nil {
		_ = os.Remove(probe)
		return false, nil
	}

	probeErr := errors.Wrap(err, errors.ErrSymlinkUnsupported,
		"trees directory does not support symlinks").
		WithDetail("tree", treePath)

	if b.fallback == config.FallbackError {
		releaseQuietly(binding, logger)
		return false, probeErr
	}

	logger.Warn().Err(probeErr).Msg("Symlinks unsupported, building tree in copy mode")
	return true, nil
}

// assemble turns the plan into the ordered operation batch: parent
// directories, the mapped entries, then the backfill.
func (b *Builder) assemble(req Request, pl *plan, treePath string, copyMode bool) ([]types.Operation, error) {
	var ops []types.Operation

	dirs := make([]string, 0, len(pl.dirs))
	for dir := range pl.dirs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		ops = append(ops, types.Operation{
			Type:        types.OperationCreateDir,
			Target:      filepath.Join(treePath, dir),
			Description: "tree directory " + dir,
		})
	}

	for _, dest := range pl.order {
		source := req.Mappings[pl.dests[dest]].Source
		entryOps, err := b.entryOps(source, filepath.Join(treePath, dest), copyMode)
		if err != nil {
			return nil, err
		}
		ops = append(ops, entryOps...)
	}

	if req.LinkOthers {
		backfill, err := b.backfillOps(req, pl, treePath, copyMode)
		if err != nil {
			return nil, err
		}
		ops = append(ops, backfill...)
	}

	return ops, nil
}

// entryOps emits the operations placing one source at target. Symlink
// mode is a single link; copy mode copies files and walks directories.
func (b *Builder) entryOps(source, target string, copyMode bool) ([]types.Operation, error) {
	info, err := b.fs.Stat(source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPathResolve,
			"source does not exist: %s", source).WithDetail("path", source)
	}

	if !copyMode {
		return []types.Operation{{
			Type:        types.OperationCreateSymlink,
			Source:      source,
			Target:      target,
			Description: "link " + filepath.Base(target),
		}}, nil
	}

	if !info.IsDir() {
		return []types.Operation{{
			Type:        types.OperationCopyFile,
			Source:      source,
			Target:      target,
			Description: "copy " + filepath.Base(target),
		}}, nil
	}

	// Directory in copy mode: recreate it file by file.
	ops := []types.Operation{{
		Type:        types.OperationCreateDir,
		Target:      target,
		Description: "copy directory " + filepath.Base(target),
	}}
	entries, err := b.fs.ReadDir(source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read source directory %s", source).WithDetail("path", source)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		sub, err := b.entryOps(filepath.Join(source, entry.Name()), filepath.Join(target, entry.Name()), true)
		if err != nil {
			return nil, err
		}
		ops = append(ops, sub...)
	}
	return ops, nil
}

// backfillOps links every entry of the default source directory that
// the mappings did not claim. It enumerates the source root and each
// ancestor directory a destination needed; entries that are placed
// destinations or such ancestors are skipped. Missing directories
// contribute nothing.
func (b *Builder) backfillOps(req Request, pl *plan, treePath string, copyMode bool) ([]types.Operation, error) {
	if req.SourceDir == "" {
		b.logger.Debug().Str("dataset", req.Dataset).
			Msg("No source directory, skipping backfill")
		return nil, nil
	}

	levels := make([]string, 0, len(pl.dirs)+1)
	levels = append(levels, ".")
	for dir := range pl.dirs {
		levels = append(levels, dir)
	}
	sort.Strings(levels)

	var ops []types.Operation
	for _, level := range levels {
		sourceLevel := filepath.Join(req.SourceDir, level)
		if info, err := b.fs.Stat(sourceLevel); err != nil || !info.IsDir() {
			// The source tree has no such directory; the mapped
			// entries are all this level holds.
			continue
		}

		entries, err := b.fs.ReadDir(sourceLevel)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess,
				"cannot enumerate source directory %s", sourceLevel).
				WithDetail("path", sourceLevel)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			rel := entry.Name()
			if level != "." {
				rel = filepath.Join(level, entry.Name())
			}
			if _, placed := pl.dests[rel]; placed {
				continue
			}
			if pl.dirs[rel] {
				continue
			}

			entryOps, err := b.entryOps(filepath.Join(req.SourceDir, rel), filepath.Join(treePath, rel), copyMode)
			if err != nil {
				return nil, err
			}
			ops = append(ops, entryOps...)
		}
	}

	return ops, nil
}

func releaseQuietly(binding *scope.Binding, logger zerolog.Logger) {
	if err := binding.Release(); err != nil {
		logger.Error().Err(err).Msg("Failed to remove synthetic tree")
	}
}
