package prune

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawerks/dataroot/pkg/testutil"
)

// makeTree creates a tree directory with the given age.
func makeTree(t *testing.T, treesDir, name string, age time.Duration) string {
	t.Helper()
	path := testutil.CreateDir(t, treesDir, name)
	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	return path
}

func TestPruneTreesRemovesOldTrees(t *testing.T) {
	treesDir := testutil.TempDir(t, "trees")
	old1 := makeTree(t, treesDir, "tree-tau-1111", 48*time.Hour)
	old2 := makeTree(t, treesDir, "tree-nu-2222", 36*time.Hour)
	fresh := makeTree(t, treesDir, "tree-tau-3333", time.Minute)
	unrelated := testutil.CreateDir(t, treesDir, "keepme")
	plainFile := testutil.CreateFile(t, treesDir, "tree-notadir", "x")

	result, err := PruneTrees(Options{
		TreesDir:  treesDir,
		OlderThan: time.Hour,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{old1, old2}, result.Removed)
	assert.Equal(t, 1, result.Kept)
	assert.False(t, result.DryRun)

	assert.False(t, testutil.DirExists(t, old1))
	assert.False(t, testutil.DirExists(t, old2))
	assert.True(t, testutil.DirExists(t, fresh))
	assert.True(t, testutil.DirExists(t, unrelated))
	assert.True(t, testutil.FileExists(t, plainFile))
}

func TestPruneTreesZeroAgeRemovesEverything(t *testing.T) {
	treesDir := testutil.TempDir(t, "trees")
	fresh := makeTree(t, treesDir, "tree-tau-1111", 0)

	result, err := PruneTrees(Options{TreesDir: treesDir})
	require.NoError(t, err)

	assert.Equal(t, []string{fresh}, result.Removed)
	assert.Zero(t, result.Kept)
	assert.False(t, testutil.DirExists(t, fresh))
}

func TestPruneTreesDryRun(t *testing.T) {
	treesDir := testutil.TempDir(t, "trees")
	old := makeTree(t, treesDir, "tree-tau-1111", 48*time.Hour)

	result, err := PruneTrees(Options{
		TreesDir:  treesDir,
		OlderThan: time.Hour,
		DryRun:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{old}, result.Removed)
	assert.True(t, result.DryRun)
	assert.True(t, testutil.DirExists(t, old), "dry run must not remove anything")
}

func TestPruneTreesMissingDir(t *testing.T) {
	missing := filepath.Join(testutil.TempDir(t, "trees"), "never-created")

	result, err := PruneTrees(Options{TreesDir: missing})
	require.NoError(t, err)

	assert.Empty(t, result.Removed)
	assert.Zero(t, result.Kept)
}

func TestPruneTreesDefaultDirFromEnv(t *testing.T) {
	treesDir := testutil.TempDir(t, "trees")
	old := makeTree(t, treesDir, "tree-tau-1111", 48*time.Hour)
	t.Setenv("DATAROOT_TREES_DIR", treesDir)

	result, err := PruneTrees(Options{OlderThan: time.Hour})
	require.NoError(t, err)

	assert.Equal(t, []string{old}, result.Removed)
	assert.False(t, testutil.DirExists(t, old))
}
