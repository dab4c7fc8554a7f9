package testutil

import (
	"github.com/datawerks/dataroot/pkg/filesystem"
	"github.com/datawerks/dataroot/pkg/types"
	"github.com/spf13/afero"
)

// NewTestFS creates a new in-memory filesystem for testing.
func NewTestFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}
