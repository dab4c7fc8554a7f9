package list

import (
	"os"

	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/logging"
)

// Options defines the options for the ListDatasets command.
type Options struct {
	Catalog *catalog.Catalog
}

// Dataset is one row of the listing.
type Dataset struct {
	Name     string `json:"name" yaml:"name"`
	Source   string `json:"source" yaml:"source"`
	Override bool   `json:"override" yaml:"override"`
	Exists   bool   `json:"exists" yaml:"exists"`
}

// Result holds all configured datasets in name order.
type Result struct {
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
}

// ListDatasets reports every configured dataset type with its effective
// source directory, whether an environment override applies, and
// whether the source exists on disk.
func ListDatasets(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Msg("Executing command")

	names := opts.Catalog.Names()
	result := &Result{Datasets: make([]Dataset, 0, len(names))}

	for _, name := range names {
		source, err := opts.Catalog.SourceDir(name)
		if err != nil {
			return nil, err
		}
		_, override := opts.Catalog.EnvOverride(name)

		exists := false
		if info, err := os.Stat(source); err == nil && info.IsDir() {
			exists = true
		}

		result.Datasets = append(result.Datasets, Dataset{
			Name:     name,
			Source:   source,
			Override: override,
			Exists:   exists,
		})
	}

	log.Info().Int("datasets", len(result.Datasets)).Msg("Command finished")
	return result, nil
}
