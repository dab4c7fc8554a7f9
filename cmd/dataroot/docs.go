package dataroot

import (
	"embed"
	"io/fs"
)

//go:embed docs
var docsFiles embed.FS

// docsFS returns the embedded help topics, rooted at the docs directory.
func docsFS() fs.FS {
	sub, err := fs.Sub(docsFiles, "docs")
	if err != nil {
		return docsFiles
	}
	return sub
}
