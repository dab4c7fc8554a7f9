// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate isolated dataroot test environments

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/datawerks/dataroot/pkg/filesystem"
	"github.com/datawerks/dataroot/pkg/types"
)

// TestEnvironment provides an isolated dataroot environment rooted in a
// temp directory, with all DATAROOT_* locations pointed inside it.
type TestEnvironment struct {
	// Core paths
	Root       string
	HomeDir    string
	SourcesDir string
	TreesDir   string
	ConfigDir  string

	// FS is a real filesystem; symlink behavior needs one
	FS types.FS

	// SourceDirs maps dataset names registered via AddDataset to their
	// source directories
	SourceDirs map[string]string

	t *testing.T
}

// NewTestEnvironment creates a new isolated test environment
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		Root:       root,
		HomeDir:    filepath.Join(root, "home"),
		SourcesDir: filepath.Join(root, "sources"),
		TreesDir:   filepath.Join(root, "trees"),
		ConfigDir:  filepath.Join(root, "config"),
		FS:         filesystem.NewOS(),
		SourceDirs: make(map[string]string),
		t:          t,
	}

	for _, dir := range []string{env.HomeDir, env.SourcesDir, env.TreesDir, env.ConfigDir} {
		if err := env.FS.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	// Point every dataroot location into the sandbox
	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(env.HomeDir, ".local", "state"))
	t.Setenv("DATAROOT_DATA_DIR", filepath.Join(root, "data"))
	t.Setenv("DATAROOT_CACHE_DIR", filepath.Join(root, "cache"))
	t.Setenv("DATAROOT_CONFIG_DIR", env.ConfigDir)
	t.Setenv("DATAROOT_TREES_DIR", env.TreesDir)
	t.Setenv("DATAROOT_CONFIG", "")

	return env
}

// AddDataset creates a source directory populated with the given files
// and records it under the dataset name. Contents are keyed by path
// relative to the source directory.
func (env *TestEnvironment) AddDataset(name string, files map[string]string) string {
	env.t.Helper()

	dir := filepath.Join(env.SourcesDir, name)
	if err := env.FS.MkdirAll(dir, 0755); err != nil {
		env.t.Fatalf("Failed to create dataset directory: %v", err)
	}

	for rel, content := range files {
		CreateFile(env.t, dir, rel, content)
	}

	env.SourceDirs[name] = dir
	return dir
}

// WithFileTree creates a complete file tree structure under base
func (env *TestEnvironment) WithFileTree(base string, tree FileTree) {
	env.t.Helper()
	createFileTree(env.t, env.FS, base, tree)
}

// FileTree represents a directory structure for testing
type FileTree map[string]interface{}

// createFileTree recursively creates a file tree
func createFileTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			// It's a file
			if err := fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
			}
			if err := fs.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			// It's a directory
			if err := fs.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			createFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}
