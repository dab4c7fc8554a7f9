package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
)

var log = logging.GetLogger("config")

// Config is the fully merged dataroot configuration.
type Config struct {
	Link     LinkConfig               `koanf:"link"`
	Prune    PruneConfig              `koanf:"prune"`
	Datasets map[string]DatasetConfig `koanf:"datasets"`
}

// LinkConfig controls how synthetic trees are materialized.
type LinkConfig struct {
	// Fallback is "copy" or "error": what to do when the trees
	// directory does not support symlinks.
	Fallback string `koanf:"fallback"`
}

// PruneConfig controls "dataroot prune".
type PruneConfig struct {
	// Age is the minimum age for a tree to be pruned.
	Age time.Duration `koanf:"age"`
}

// DatasetConfig declares one dataset type.
type DatasetConfig struct {
	// Source is the default source directory for the dataset.
	Source string `koanf:"source"`
}

// Fallback modes for LinkConfig.
const (
	FallbackCopy  = "copy"
	FallbackError = "error"
)

// envSkip lists DATAROOT_ variables that do not map to config keys:
// path plumbing consumed by pkg/paths and the per-dataset source
// overrides consumed by pkg/catalog.
var envSkip = map[string]bool{
	"CONFIG":     true,
	"CONFIG_DIR": true,
	"DATA_DIR":   true,
	"CACHE_DIR":  true,
	"TREES_DIR":  true,
	"LOG_FILE":   true,
}

// Load reads the built-in defaults, merges the config file at
// configPath (TOML or YAML, picked by extension) when it exists, then
// DATAROOT_* environment overrides, and unmarshals the result. An
// empty configPath loads defaults plus environment only.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load built-in defaults")
	}

	// 2. Config file, when present
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			parser, err := parserFor(configPath)
			if err != nil {
				return nil, err
			}
			if err := k.Load(file.Provider(configPath), parser); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse,
					"failed to parse config file %s", configPath).
					WithDetail("path", configPath)
			}
			log.Debug().Str("path", configPath).Msg("Config file loaded")
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad,
				"cannot read config file %s", configPath).
				WithDetail("path", configPath)
		}
	}

	// 3. Environment overrides, e.g. DATAROOT_LINK_FALLBACK=error
	err := k.Load(env.Provider("DATAROOT_", ".", func(s string) string {
		trimmed := strings.TrimPrefix(s, "DATAROOT_")
		if envSkip[trimmed] || strings.HasPrefix(trimmed, "SRC_") {
			return ""
		}
		return strings.ReplaceAll(strings.ToLower(trimmed), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in defaults with no file or environment
// applied.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		// The embedded file is fixed at build time.
		panic("config: built-in defaults do not parse: " + err.Error())
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		panic("config: built-in defaults do not unmarshal: " + err.Error())
	}
	return &cfg
}

func parserFor(path string) (koanf.Parser, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".toml"):
		return toml.Parser(), nil
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad,
			"unsupported config file extension: %s", path).
			WithDetail("path", path)
	}
}

func validate(cfg *Config) error {
	switch cfg.Link.Fallback {
	case FallbackCopy, FallbackError:
	default:
		return errors.Newf(errors.ErrConfigValid,
			"link.fallback must be %q or %q, got %q",
			FallbackCopy, FallbackError, cfg.Link.Fallback)
	}

	if cfg.Prune.Age < 0 {
		return errors.Newf(errors.ErrConfigValid,
			"prune.age cannot be negative: %s", cfg.Prune.Age)
	}

	return nil
}
