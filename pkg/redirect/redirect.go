package redirect

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/paths"
	"github.com/datawerks/dataroot/pkg/scope"
	"github.com/datawerks/dataroot/pkg/sourcetree"
	"github.com/datawerks/dataroot/pkg/store"
	"github.com/datawerks/dataroot/pkg/types"
)

// Target selects what a dataset type should resolve to. Exactly one of
// Path and Files must be set.
type Target struct {
	// Path names a single existing path. An existing directory becomes
	// the effective source directory as-is; an existing file becomes a
	// synthetic tree with that one entry.
	Path string

	// Files lists entries for a synthetic tree. An empty Dest aliases
	// to the source's base name; a Dest ending in a path separator is
	// a destination directory the base name is appended to.
	Files []types.FileMapping
}

// RedirectorOption configures a Redirector at construction time.
type RedirectorOption func(*redirectorConfig)

type redirectorConfig struct {
	store   *store.Store
	builder *sourcetree.Builder
}

// WithStore shares an existing redirection store instead of creating a
// fresh one.
func WithStore(st *store.Store) RedirectorOption {
	return func(cfg *redirectorConfig) {
		cfg.store = st
	}
}

// WithBuilder uses a configured tree builder instead of the defaults.
func WithBuilder(b *sourcetree.Builder) RedirectorOption {
	return func(cfg *redirectorConfig) {
		cfg.builder = b
	}
}

// Option configures a single Redirect or Clear call.
type Option func(*callConfig)

type callConfig struct {
	scope      *scope.Scope
	linkOthers bool
}

// WithScope binds the redirection and any synthetic tree to sc instead
// of the global scope.
func WithScope(sc *scope.Scope) Option {
	return func(cfg *callConfig) {
		cfg.scope = sc
	}
}

// LinkOthers controls whether synthetic trees are backfilled with the
// remaining entries of the default source directory. Enabled unless
// switched off.
func LinkOthers(enabled bool) Option {
	return func(cfg *callConfig) {
		cfg.linkOthers = enabled
	}
}

func newCallConfig(opts []Option) *callConfig {
	cfg := &callConfig{scope: scope.Global(), linkOthers: true}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.scope == nil {
		cfg.scope = scope.Global()
	}
	return cfg
}

// Redirector points dataset types at alternate source locations. Reads
// go through SourceDir; writes go through Redirect and Clear and are
// undone per their scope.
type Redirector struct {
	logger  zerolog.Logger
	catalog *catalog.Catalog
	store   *store.Store
	builder *sourcetree.Builder
}

// New builds a Redirector over the given catalog.
func New(cat *catalog.Catalog, opts ...RedirectorOption) (*Redirector, error) {
	if cat == nil {
		return nil, errors.New(errors.ErrInvalidInput, "catalog is required")
	}

	cfg := &redirectorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.store == nil {
		cfg.store = store.New()
	}
	if cfg.builder == nil {
		builder, err := sourcetree.New(nil)
		if err != nil {
			return nil, err
		}
		cfg.builder = builder
	}

	return &Redirector{
		logger:  logging.GetLogger("redirect"),
		catalog: cat,
		store:   cfg.store,
		builder: cfg.builder,
	}, nil
}

// Redirect points dataset at target and returns the effective path
// readers will see. A nil target removes the active redirection under
// the call's scope and returns "".
//
// Either the store is updated and any synthetic tree is complete, or
// the store is untouched and no tree is left behind.
func (r *Redirector) Redirect(dataset string, target *Target, opts ...Option) (string, error) {
	if target == nil {
		return "", r.Clear(dataset, opts...)
	}

	call := newCallConfig(opts)

	defaultDir, err := r.catalog.SourceDir(dataset)
	if err != nil {
		return "", err
	}

	effective, binding, err := r.resolve(dataset, target, defaultDir, call)
	if err != nil {
		return "", err
	}

	if paths.IsInside(paths.CanonicalizeBestEffort(effective), paths.CanonicalizeBestEffort(defaultDir)) {
		r.releaseTree(binding, effective)
		return "", errors.Newf(errors.ErrContainment,
			"effective path %s lies inside the default source directory %s",
			effective, defaultDir).
			WithDetails(map[string]interface{}{
				"dataset":    dataset,
				"path":       effective,
				"source_dir": defaultDir,
			})
	}

	if err := r.store.Set(dataset, effective, call.scope); err != nil {
		r.releaseTree(binding, effective)
		return "", err
	}

	r.logger.Info().
		Str("dataset", dataset).
		Str("path", effective).
		Bool("global", call.scope.IsGlobal()).
		Msg("Dataset redirected")
	return effective, nil
}

// Clear removes the active redirection for dataset under the call's
// scope. Closing that scope restores whatever the redirection replaced.
func (r *Redirector) Clear(dataset string, opts ...Option) error {
	call := newCallConfig(opts)

	if !r.catalog.Has(dataset) {
		return errors.Newf(errors.ErrUnknownDataset,
			"unknown dataset type %q", dataset).WithDetail("dataset", dataset)
	}

	if err := r.store.Clear(dataset, call.scope); err != nil {
		return err
	}

	r.logger.Info().Str("dataset", dataset).Msg("Redirection cleared")
	return nil
}

// SourceDir returns the directory reads of dataset should use: the
// active redirection when one is installed, the catalog default (env
// override honored) otherwise.
func (r *Redirector) SourceDir(dataset string) (string, error) {
	if path, ok := r.store.Get(dataset); ok {
		return path, nil
	}
	return r.catalog.SourceDir(dataset)
}

func (r *Redirector) resolve(dataset string, target *Target, defaultDir string, call *callConfig) (string, *scope.Binding, error) {
	switch {
	case target.Path != "" && len(target.Files) > 0:
		return "", nil, errors.New(errors.ErrInvalidInput,
			"target cannot name both a path and a file list")
	case target.Path != "":
		return r.resolvePath(dataset, target.Path, defaultDir, call)
	case len(target.Files) > 0:
		return r.buildTree(dataset, target.Files, defaultDir, call)
	default:
		return "", nil, errors.New(errors.ErrInvalidInput,
			"target names neither a path nor a file list")
	}
}

// resolvePath decides between a plain directory redirect and a
// single-entry synthetic tree: an existing directory is used directly,
// anything else that exists becomes one tree entry.
func (r *Redirector) resolvePath(dataset, path, defaultDir string, call *callConfig) (string, *scope.Binding, error) {
	canonical, err := paths.Canonicalize(path)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", nil, errors.Wrapf(err, errors.ErrPathResolve,
			"cannot stat %s", canonical)
	}

	if info.IsDir() {
		r.logger.Debug().
			Str("dataset", dataset).
			Str("dir", canonical).
			Msg("Plain directory redirect")
		return canonical, nil, nil
	}

	return r.buildTree(dataset, []types.FileMapping{{Source: canonical}}, defaultDir, call)
}

func (r *Redirector) buildTree(dataset string, files []types.FileMapping, defaultDir string, call *callConfig) (string, *scope.Binding, error) {
	mappings := make([]types.FileMapping, 0, len(files))
	for _, fm := range files {
		source, err := paths.Canonicalize(fm.Source)
		if err != nil {
			return "", nil, err
		}

		dest := fm.Dest
		if dest == "" {
			dest = filepath.Base(source)
		} else if os.IsPathSeparator(dest[len(dest)-1]) {
			dest = filepath.Join(dest, filepath.Base(source))
		}

		mappings = append(mappings, types.FileMapping{Dest: dest, Source: source})
	}

	return r.builder.Build(sourcetree.Request{
		Dataset:    dataset,
		Mappings:   mappings,
		LinkOthers: call.linkOthers,
		SourceDir:  defaultDir,
		Scope:      call.scope,
	})
}

func (r *Redirector) releaseTree(binding *scope.Binding, tree string) {
	if binding == nil {
		return
	}
	if err := binding.Release(); err != nil {
		r.logger.Warn().Err(err).Str("tree", tree).Msg("Failed to remove synthetic tree")
	}
}
