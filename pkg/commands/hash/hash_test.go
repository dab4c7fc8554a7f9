package hash

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/checksum"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/testutil"
)

func TestHashFileComputesDigest(t *testing.T) {
	sourceDir := testutil.TempDir(t, "source")
	path := testutil.CreateFile(t, sourceDir, "weights.bin", "model weights")
	cat, err := catalog.New(map[string]string{"tau": sourceDir})
	require.NoError(t, err)

	result, err := HashFile(Options{Catalog: cat, Dataset: "tau", RelPath: "weights.bin"})
	require.NoError(t, err)

	expected, err := checksum.HashFile(path)
	require.NoError(t, err)

	assert.Equal(t, "tau", result.Dataset)
	assert.Equal(t, sourceDir, result.Source)
	assert.Equal(t, "weights.bin", result.Path)
	assert.Equal(t, checksum.Format(expected), result.Digest)
	assert.Len(t, result.Digest, 64)
}

func TestHashFileNestedPath(t *testing.T) {
	sourceDir := testutil.TempDir(t, "source")
	path := testutil.CreateFile(t, sourceDir, filepath.Join("sub", "c.json"), "{}")
	cat, err := catalog.New(map[string]string{"tau": sourceDir})
	require.NoError(t, err)

	result, err := HashFile(Options{Catalog: cat, Dataset: "tau", RelPath: "sub/c.json"})
	require.NoError(t, err)

	expected, err := checksum.HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, checksum.Format(expected), result.Digest)
}

func TestHashFileFollowsEnvOverride(t *testing.T) {
	declared := testutil.TempDir(t, "declared")
	testutil.CreateFile(t, declared, "w.bin", "declared bytes")
	override := testutil.TempDir(t, "override")
	overridePath := testutil.CreateFile(t, override, "w.bin", "override bytes")

	cat, err := catalog.New(map[string]string{"tau": declared})
	require.NoError(t, err)

	t.Setenv("DATAROOT_SRC_TAU", override)

	result, err := HashFile(Options{Catalog: cat, Dataset: "tau", RelPath: "w.bin"})
	require.NoError(t, err)

	expected, err := checksum.HashFile(overridePath)
	require.NoError(t, err)
	assert.Equal(t, override, result.Source)
	assert.Equal(t, checksum.Format(expected), result.Digest)
}

func TestHashFileMissing(t *testing.T) {
	cat, err := catalog.New(map[string]string{"tau": testutil.TempDir(t, "source")})
	require.NoError(t, err)

	_, err = HashFile(Options{Catalog: cat, Dataset: "tau", RelPath: "nope.bin"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestHashFileUnknownDataset(t *testing.T) {
	cat, err := catalog.New(map[string]string{"tau": testutil.TempDir(t, "source")})
	require.NoError(t, err)

	_, err = HashFile(Options{Catalog: cat, Dataset: "nu", RelPath: "w.bin"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownDataset))
}

func TestHashFileRejectsEscapingPath(t *testing.T) {
	cat, err := catalog.New(map[string]string{"tau": testutil.TempDir(t, "source")})
	require.NoError(t, err)

	_, err = HashFile(Options{Catalog: cat, Dataset: "tau", RelPath: "../escape.bin"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
