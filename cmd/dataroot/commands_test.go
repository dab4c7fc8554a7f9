package dataroot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawerks/dataroot/pkg/checksum"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/testutil"
)

// captureStdout runs fn with os.Stdout redirected and returns what it
// printed. Command output goes straight to stdout so scripts can
// capture it, which means tests have to as well.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = orig
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

// runCommand executes the CLI with the given args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)

	var execErr error
	stdout := captureStdout(t, func() { execErr = rootCmd.Execute() })
	return stdout, execErr
}

// writeConfig places a config file where the catalog loader will find it.
func writeConfig(t *testing.T, env *testutil.TestEnvironment, body string) {
	t.Helper()
	testutil.CreateFile(t, env.ConfigDir, "dataroot.toml", body)
}

func datasetConfig(name, source string) string {
	return fmt.Sprintf("[datasets.%s]\nsource = %q\n", name, source)
}

func TestResolveCommand(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.AddDataset("tau", map[string]string{"data.bin": "payload"})
	writeConfig(t, env, datasetConfig("tau", source))

	out, err := runCommand(t, "resolve", "tau")
	require.NoError(t, err)

	assert.Equal(t, source+"\n", out, "stdout must be exactly the path")
}

func TestResolveCommandUnknownDataset(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	writeConfig(t, env, datasetConfig("tau", env.SourcesDir))

	_, err := runCommand(t, "resolve", "nu")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownDataset))
}

func TestListCommandText(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.AddDataset("tau", nil)
	writeConfig(t, env, datasetConfig("tau", source))

	out, err := runCommand(t, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "tau")
	assert.Contains(t, out, source)
}

func TestListCommandJSON(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.AddDataset("tau", nil)
	writeConfig(t, env, datasetConfig("tau", source))

	out, err := runCommand(t, "list", "--format", "json")
	require.NoError(t, err)

	var payload struct {
		Datasets []struct {
			Name   string `json:"name"`
			Source string `json:"source"`
			Exists bool   `json:"exists"`
		} `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Datasets, 1)
	assert.Equal(t, "tau", payload.Datasets[0].Name)
	assert.Equal(t, source, payload.Datasets[0].Source)
	assert.True(t, payload.Datasets[0].Exists)
}

func TestListCommandYAML(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.AddDataset("tau", nil)
	writeConfig(t, env, datasetConfig("tau", source))

	out, err := runCommand(t, "list", "-f", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "name: tau")
	assert.Contains(t, out, "source: "+source)
}

func TestListCommandBadFormat(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	writeConfig(t, env, datasetConfig("tau", env.SourcesDir))

	_, err := runCommand(t, "list", "--format", "xml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestStageCommand(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.AddDataset("tau", map[string]string{"orig.txt": "original"})
	writeConfig(t, env, datasetConfig("tau", source))

	payload := testutil.CreateFile(t, env.Root, "fixed.dat", "replacement")

	out, err := runCommand(t, "stage", "tau", "fixed.dat="+payload)
	require.NoError(t, err)

	tree := strings.TrimSpace(out)
	assert.Equal(t, env.TreesDir, filepath.Dir(tree), "tree lands in the trees directory")

	testutil.AssertSymlink(t, filepath.Join(tree, "fixed.dat"), payload)
	// Untouched entries backfilled by default
	testutil.AssertSymlink(t, filepath.Join(tree, "orig.txt"), filepath.Join(source, "orig.txt"))
}

func TestStageCommandNoLinkOthers(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.AddDataset("tau", map[string]string{"orig.txt": "original"})
	writeConfig(t, env, datasetConfig("tau", source))

	payload := testutil.CreateFile(t, env.Root, "fixed.dat", "replacement")

	out, err := runCommand(t, "stage", "tau", "fixed.dat="+payload, "--no-link-others")
	require.NoError(t, err)

	tree := strings.TrimSpace(out)
	assert.ElementsMatch(t, []string{"fixed.dat"}, testutil.ListDir(t, tree))
}

func TestPruneCommand(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	writeConfig(t, env, "")

	old := testutil.CreateDir(t, env.TreesDir, "tree-tau-1111")
	stamp := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stamp, stamp))
	fresh := testutil.CreateDir(t, env.TreesDir, "tree-tau-2222")

	out, err := runCommand(t, "prune", "--older-than", "1h")
	require.NoError(t, err)

	assert.Contains(t, out, "tree-tau-1111")
	assert.False(t, testutil.DirExists(t, old))
	assert.True(t, testutil.DirExists(t, fresh))
}

func TestHashCommand(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.AddDataset("tau", map[string]string{"data.bin": "payload bytes"})
	writeConfig(t, env, datasetConfig("tau", source))

	out, err := runCommand(t, "hash", "tau", "data.bin")
	require.NoError(t, err)

	digest, err := checksum.HashFile(filepath.Join(source, "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s  %s\n", checksum.Format(digest), "data.bin"), out)
}

func TestGenConfigCommand(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	out, err := runCommand(t, "genconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "[link]")
	assert.Contains(t, out, "[prune]")

	_, err = runCommand(t, "genconfig", "-w")
	require.NoError(t, err)
	assert.True(t, testutil.FileExists(t, filepath.Join(env.ConfigDir, "dataroot.toml")))
}

func TestTopicsCommand(t *testing.T) {
	testutil.NewTestEnvironment(t)

	out, err := runCommand(t, "topics")
	require.NoError(t, err)

	assert.Contains(t, out, "Available help topics:")
	assert.Contains(t, out, "redirection")
	assert.Contains(t, out, "trees")
}

func TestRootCommandNoArgs(t *testing.T) {
	testutil.NewTestEnvironment(t)

	_, err := runCommand(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}
