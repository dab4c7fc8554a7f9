package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawerks/dataroot/pkg/catalog"
)

func TestListDatasets(t *testing.T) {
	existing := t.TempDir()
	cat, err := catalog.New(map[string]string{
		"tau":    existing,
		"models": "/nonexistent/models",
	})
	require.NoError(t, err)

	result, err := ListDatasets(Options{Catalog: cat})
	require.NoError(t, err)
	require.Len(t, result.Datasets, 2)

	// Names() sorts, so models comes first
	assert.Equal(t, "models", result.Datasets[0].Name)
	assert.Equal(t, "/nonexistent/models", result.Datasets[0].Source)
	assert.False(t, result.Datasets[0].Exists)
	assert.False(t, result.Datasets[0].Override)

	assert.Equal(t, "tau", result.Datasets[1].Name)
	assert.Equal(t, existing, result.Datasets[1].Source)
	assert.True(t, result.Datasets[1].Exists)
}

func TestListDatasetsEnvOverride(t *testing.T) {
	overrideDir := t.TempDir()
	cat, err := catalog.New(map[string]string{"tau": "/data/tau"})
	require.NoError(t, err)

	t.Setenv("DATAROOT_SRC_TAU", overrideDir)

	result, err := ListDatasets(Options{Catalog: cat})
	require.NoError(t, err)
	require.Len(t, result.Datasets, 1)

	assert.Equal(t, overrideDir, result.Datasets[0].Source)
	assert.True(t, result.Datasets[0].Override)
	assert.True(t, result.Datasets[0].Exists)
}

func TestListDatasetsEmptyCatalog(t *testing.T) {
	cat, err := catalog.New(map[string]string{})
	require.NoError(t, err)

	result, err := ListDatasets(Options{Catalog: cat})
	require.NoError(t, err)
	assert.Empty(t, result.Datasets)
}
