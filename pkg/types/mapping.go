package types

// FileMapping names one entry of a synthetic source tree: the relative
// destination inside the tree and the existing path it is built from.
type FileMapping struct {
	// Dest is the path relative to the tree root. An empty Dest takes
	// the base name of Source; a Dest ending in a path separator is a
	// directory the base name of Source is placed into.
	Dest string

	// Source is the existing file or directory the entry points at.
	Source string
}
