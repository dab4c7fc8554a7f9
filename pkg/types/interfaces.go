package types

import (
	"io/fs"
)

// FS is the filesystem interface required for dataroot operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Optional operations - implementations should check for support
	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// Pather provides directory locations for dataroot operations
type Pather interface {
	// DataDir returns the XDG data directory for dataroot
	DataDir() string

	// ConfigDir returns the XDG config directory for dataroot
	ConfigDir() string

	// CacheDir returns the XDG cache directory for dataroot
	CacheDir() string

	// StateDir returns the XDG state directory for dataroot
	StateDir() string

	// TreesDir returns the directory synthetic source trees are built under
	TreesDir() string
}
