package catalog

import (
	"os"
	"sort"

	"github.com/datawerks/dataroot/pkg/config"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/paths"
)

// Dataset describes one dataset type known to the catalog.
type Dataset struct {
	// Name is the case-sensitive dataset type name.
	Name string

	// Source is the normalized default source directory.
	Source string
}

// Catalog maps dataset type names to their default source directories.
// Lookups honor per-dataset DATAROOT_SRC_<NAME> environment overrides.
type Catalog struct {
	datasets map[string]Dataset
}

// New builds a catalog from dataset name to source directory pairs.
// Sources are home-expanded and absolutized; they do not have to exist
// yet. Invalid names or empty sources fail the whole catalog.
func New(sources map[string]string) (*Catalog, error) {
	logger := logging.GetLogger("catalog")

	datasets := make(map[string]Dataset, len(sources))
	for name, source := range sources {
		if err := paths.ValidateDatasetName(name); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCatalogInvalid,
				"invalid dataset name %q", name).WithDetail("dataset", name)
		}
		if source == "" {
			return nil, errors.Newf(errors.ErrCatalogInvalid,
				"dataset %q has no source directory", name).WithDetail("dataset", name)
		}

		normalized, err := paths.NormalizePath(source)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCatalogInvalid,
				"dataset %q has an invalid source %q", name, source).
				WithDetail("dataset", name)
		}

		datasets[name] = Dataset{Name: name, Source: normalized}
		logger.Trace().Str("dataset", name).Str("source", normalized).Msg("Dataset registered")
	}

	logger.Debug().Int("count", len(datasets)).Msg("Catalog built")
	return &Catalog{datasets: datasets}, nil
}

// FromConfig builds a catalog from the datasets table of a loaded
// configuration.
func FromConfig(cfg *config.Config) (*Catalog, error) {
	sources := make(map[string]string, len(cfg.Datasets))
	for name, ds := range cfg.Datasets {
		sources[name] = ds.Source
	}
	return New(sources)
}

// Names returns all dataset type names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.datasets))
	for name := range c.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the dataset type is declared.
func (c *Catalog) Has(name string) bool {
	_, ok := c.datasets[name]
	return ok
}

// Dataset returns the catalog entry for a dataset type.
func (c *Catalog) Dataset(name string) (Dataset, error) {
	ds, ok := c.datasets[name]
	if !ok {
		return Dataset{}, errors.Newf(errors.ErrUnknownDataset,
			"unknown dataset type %q", name).WithDetail("dataset", name)
	}
	return ds, nil
}

// DefaultSourceDir returns the declared source directory for a dataset
// type, ignoring environment overrides.
func (c *Catalog) DefaultSourceDir(name string) (string, error) {
	ds, err := c.Dataset(name)
	if err != nil {
		return "", err
	}
	return ds.Source, nil
}

// EnvOverride returns the normalized DATAROOT_SRC_<NAME> override for a
// dataset type and whether one is set.
func (c *Catalog) EnvOverride(name string) (string, bool) {
	value := os.Getenv(paths.SourceEnvVar(name))
	if value == "" {
		return "", false
	}
	normalized, err := paths.NormalizePath(value)
	if err != nil {
		return "", false
	}
	return normalized, true
}

// SourceDir returns the effective source directory for a dataset type:
// the DATAROOT_SRC_<NAME> override when set, the declared source
// otherwise.
func (c *Catalog) SourceDir(name string) (string, error) {
	ds, err := c.Dataset(name)
	if err != nil {
		return "", err
	}
	if override, ok := c.EnvOverride(name); ok {
		logger := logging.GetLogger("catalog")
		logger.Debug().
			Str("dataset", name).
			Str("override", override).
			Msg("Source overridden by environment")
		return override, nil
	}
	return ds.Source, nil
}
