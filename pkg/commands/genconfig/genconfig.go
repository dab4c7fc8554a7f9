package genconfig

import (
	"os"
	"path/filepath"

	"github.com/datawerks/dataroot/pkg/config"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/paths"
)

// Options defines the options for the GenConfig command.
type Options struct {
	// Write persists the generated config instead of returning it.
	Write bool

	// Path overrides the destination file when writing.
	Path string
}

// Result contains the generated configuration.
type Result struct {
	Content string
	Path    string
	Written bool
}

// GenConfig produces a starter config file with every value commented
// out. With Write set it lands in the config directory (or Path), unless
// a config file already exists there.
func GenConfig(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.genconfig")
	log.Debug().Bool("write", opts.Write).Str("path", opts.Path).Msg("Executing command")

	content := config.GenerateConfigContent()
	if !opts.Write {
		return &Result{Content: content}, nil
	}

	target := opts.Path
	if target == "" {
		p, err := paths.New()
		if err != nil {
			return nil, err
		}
		target = filepath.Join(p.ConfigDir(), paths.ConfigFileTOML)
	}
	target, err := paths.NormalizePath(target)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(target); err == nil {
		log.Warn().Str("path", target).Msg("Config file already exists, not overwriting")
		return &Result{Content: content, Path: target}, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create config directory %s", filepath.Dir(target))
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite,
			"cannot write config file %s", target)
	}

	log.Info().Str("path", target).Msg("Command finished")
	return &Result{Content: content, Path: target, Written: true}, nil
}
