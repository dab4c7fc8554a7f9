package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fs := NewOS()
	assert.NotNil(t, fs)

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("hello world")

	// Test WriteFile
	err := fs.WriteFile(testFile, testContent, 0644)
	require.NoError(t, err)

	// Test Stat
	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())
	assert.Equal(t, int64(len(testContent)), info.Size())

	// Test ReadFile
	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	// Test MkdirAll
	subDir := filepath.Join(tmpDir, "sub", "dir")
	err = fs.MkdirAll(subDir, 0755)
	require.NoError(t, err)

	// Test ReadDir
	entries, err := fs.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // test.txt and sub/

	// Test Symlink + Readlink + Lstat
	link := filepath.Join(tmpDir, "test.link")
	err = fs.Symlink(testFile, link)
	require.NoError(t, err)

	target, err := fs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, testFile, target)

	linfo, err := fs.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, linfo.Mode()&os.ModeSymlink)

	// Test Remove
	err = fs.Remove(testFile)
	require.NoError(t, err)
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))

	// Test RemoveAll
	err = fs.RemoveAll(filepath.Join(tmpDir, "sub"))
	require.NoError(t, err)
	_, err = fs.Stat(subDir)
	assert.True(t, os.IsNotExist(err))
}

func TestNewAferoFS(t *testing.T) {
	fs := NewAferoFS(afero.NewMemMapFs())
	assert.NotNil(t, fs)

	// Basic file round trip
	err := fs.WriteFile("/data/raw.bin", []byte("payload"), 0644)
	require.NoError(t, err)

	content, err := fs.ReadFile("/data/raw.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), content)

	// Reading a directory as a file is rejected
	err = fs.MkdirAll("/data/sub", 0755)
	require.NoError(t, err)
	_, err = fs.ReadFile("/data/sub")
	assert.Error(t, err)

	// Symlinks are simulated: Readlink returns the recorded target
	err = fs.Symlink("/data/raw.bin", "/data/raw.link")
	require.NoError(t, err)

	target, err := fs.Readlink("/data/raw.link")
	require.NoError(t, err)
	assert.Equal(t, "/data/raw.bin", target)

	// ReadDir sees both entries
	entries, err := fs.ReadDir("/data")
	require.NoError(t, err)
	assert.Len(t, entries, 3) // raw.bin, raw.link and sub/
}
