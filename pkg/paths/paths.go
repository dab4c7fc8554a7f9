// Package paths provides centralized path handling for dataroot.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/datawerks/dataroot/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigFile points directly at a catalog config file
	EnvConfigFile = "DATAROOT_CONFIG"

	// EnvDataDir overrides the XDG data directory for dataroot
	EnvDataDir = "DATAROOT_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for dataroot
	EnvConfigDir = "DATAROOT_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for dataroot
	EnvCacheDir = "DATAROOT_CACHE_DIR"

	// EnvTreesDir overrides the directory synthetic trees are built under
	EnvTreesDir = "DATAROOT_TREES_DIR"

	// EnvSourcePrefix prefixes per-dataset source directory overrides,
	// e.g. DATAROOT_SRC_TAU points the "Tau" dataset at another directory
	EnvSourcePrefix = "DATAROOT_SRC_"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// DatarootDirName is the directory name for dataroot-specific files
	DatarootDirName = "dataroot"

	// TreesDirName is the subdirectory synthetic source trees live in
	TreesDirName = "trees"

	// TreePrefix prefixes every synthetic tree directory name
	TreePrefix = "tree-"

	// ConfigFileTOML is the preferred catalog config file name
	ConfigFileTOML = "dataroot.toml"

	// ConfigFileYAML is the alternate catalog config file name
	ConfigFileYAML = "dataroot.yaml"

	// LogFileName is the name of the log file
	LogFileName = "dataroot.log"
)

// Paths provides centralized path management for dataroot
type Paths interface {
	DataDir() string
	ConfigDir() string
	CacheDir() string
	StateDir() string
	TreesDir() string
	ConfigFilePath() string
	LogFilePath() string
	NormalizePath(path string) (string, error)
}

type paths struct {
	// xdgData is the XDG data directory
	xdgData string

	// xdgConfig is the XDG config directory
	xdgConfig string

	// xdgCache is the XDG cache directory
	xdgCache string

	// xdgState is the XDG state directory
	xdgState string

	// treesDir is where synthetic source trees are materialized
	treesDir string
}

// New creates a new Paths instance. Directory locations come from the
// DATAROOT_* environment overrides, falling back to the XDG base dirs.
func New() (Paths, error) {
	p := &paths{}
	if err := p.setupDirs(); err != nil {
		return nil, err
	}
	return p, nil
}

// setupDirs initializes directories, respecting environment overrides
func (p *paths) setupDirs() error {
	// Data directory
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, DatarootDirName)
	}

	// Config directory
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, DatarootDirName)
	}

	// Cache directory
	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.xdgCache = expandHome(cacheDir)
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, DatarootDirName)
	}

	// State directory. adrg/xdg snapshots the environment at init,
	// so read XDG_STATE_HOME directly.
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, DatarootDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", DatarootDirName)
	}

	// Trees directory
	if treesDir := os.Getenv(EnvTreesDir); treesDir != "" {
		p.treesDir = expandHome(treesDir)
	} else {
		p.treesDir = filepath.Join(p.xdgCache, TreesDirName)
	}

	return nil
}

// DataDir returns the XDG data directory for dataroot
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for dataroot
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// CacheDir returns the XDG cache directory for dataroot
func (p *paths) CacheDir() string {
	return p.xdgCache
}

// StateDir returns the directory for state files
func (p *paths) StateDir() string {
	return p.xdgState
}

// TreesDir returns the directory synthetic source trees are built under
func (p *paths) TreesDir() string {
	return p.treesDir
}

// ConfigFilePath returns the catalog config file to load. DATAROOT_CONFIG
// wins unconditionally; otherwise the first of dataroot.toml and
// dataroot.yaml that exists in the config directory. Empty when none exists.
func (p *paths) ConfigFilePath() string {
	if override := os.Getenv(EnvConfigFile); override != "" {
		return expandHome(override)
	}
	for _, name := range []string{ConfigFileTOML, ConfigFileYAML} {
		candidate := filepath.Join(p.xdgConfig, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LogFilePath returns the path to the dataroot log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func (p *paths) NormalizePath(path string) (string, error) {
	return NormalizePath(path)
}

// NormalizePath expands home, makes the path absolute and cleans it.
// The path does not have to exist.
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	expanded := expandHome(path)

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}

	return filepath.Clean(abs), nil
}

// Canonicalize normalizes a path and resolves every symlink in it.
// The path must exist; a missing path is a resolution error.
func Canonicalize(path string) (string, error) {
	abs, err := NormalizePath(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrPathResolve,
			"cannot resolve path %s", path).WithDetail("path", path)
	}

	return resolved, nil
}

// CanonicalizeBestEffort resolves symlinks where possible and falls back
// to the cleaned absolute path when the target does not exist. Used for
// comparisons against directories that may not have been created yet.
func CanonicalizeBestEffort(path string) string {
	abs, err := NormalizePath(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// IsInside reports whether path is strictly inside parent. A path equal
// to parent is not inside it. Both arguments are compared as given, so
// callers canonicalize first.
func IsInside(path, parent string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Ancestors returns the proper ancestor directories of a cleaned
// relative path, outermost first. "a/b/c.txt" yields ["a", "a/b"];
// a top-level name yields nothing.
func Ancestors(rel string) []string {
	var out []string
	dir := filepath.Dir(rel)
	for dir != "." && dir != string(filepath.Separator) {
		out = append(out, dir)
		dir = filepath.Dir(dir)
	}
	// walked leaf-to-root; callers want outermost first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
