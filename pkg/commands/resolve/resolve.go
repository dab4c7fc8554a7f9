package resolve

import (
	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/logging"
)

// Options defines the options for the ResolveSource command.
type Options struct {
	Catalog *catalog.Catalog
	Dataset string
}

// Result holds the resolved source for one dataset type.
type Result struct {
	Dataset  string
	Source   string
	Default  string
	Override bool
}

// ResolveSource returns the effective source directory for a dataset
// type: the declared catalog entry, or the DATAROOT_SRC_<NAME> override
// when one is set.
func ResolveSource(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.resolve")
	log.Debug().Str("dataset", opts.Dataset).Msg("Executing command")

	declared, err := opts.Catalog.DefaultSourceDir(opts.Dataset)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Dataset: opts.Dataset,
		Source:  declared,
		Default: declared,
	}

	if override, ok := opts.Catalog.EnvOverride(opts.Dataset); ok {
		result.Source = override
		result.Override = true
	}

	log.Info().
		Str("dataset", opts.Dataset).
		Str("source", result.Source).
		Bool("override", result.Override).
		Msg("Command finished")
	return result, nil
}
