package hash

import (
	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/checksum"
	"github.com/datawerks/dataroot/pkg/logging"
)

// Options defines the options for the HashFile command.
type Options struct {
	Catalog *catalog.Catalog
	Dataset string

	// RelPath locates the file relative to the dataset's effective
	// source directory.
	RelPath string

	// CacheSize bounds the digest cache; zero or negative uses the
	// default.
	CacheSize int
}

// Result holds the computed digest.
type Result struct {
	Dataset string
	Source  string
	Path    string
	Digest  string
}

// HashFile resolves the dataset's effective source directory and returns
// the BLAKE3 digest of one file inside it. Redirections change which
// bytes get hashed; two calls for the same relative path can legitimately
// disagree when the source moves.
func HashFile(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.hash")
	log.Debug().
		Str("dataset", opts.Dataset).
		Str("path", opts.RelPath).
		Msg("Executing command")

	sourceDir, err := opts.Catalog.SourceDir(opts.Dataset)
	if err != nil {
		return nil, err
	}

	cache, err := checksum.NewCache(sourceDir, opts.CacheSize)
	if err != nil {
		return nil, err
	}

	digest, err := cache.File(opts.RelPath)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("dataset", opts.Dataset).
		Str("source", cache.Root()).
		Str("path", opts.RelPath).
		Msg("Command finished")
	return &Result{
		Dataset: opts.Dataset,
		Source:  cache.Root(),
		Path:    opts.RelPath,
		Digest:  checksum.Format(digest),
	}, nil
}
