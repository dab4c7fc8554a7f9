package checksum

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/paths"
)

// DefaultCacheSize bounds the per-root cache when no capacity is given.
const DefaultCacheSize = 1024

// Hash is a 32-byte BLAKE3 digest of a file's content.
type Hash [32]byte

// Format returns the hex-encoded string representation of a hash.
func Format(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// Parse parses a 64-character hex string into a Hash.
func Parse(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, errors.Wrapf(err, errors.ErrInvalidInput,
			"parsing checksum %q", hexString)
	}
	if len(decoded) != len(hash) {
		return hash, errors.Newf(errors.ErrInvalidInput,
			"checksum is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// HashFile computes the BLAKE3 digest of the file at path, streaming
// its content.
func HashFile(path string) (Hash, error) {
	var hash Hash

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return hash, errors.Wrapf(err, errors.ErrFileNotFound,
				"no such file %s", path)
		}
		return hash, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot open %s", path)
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return hash, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read %s", path)
	}

	copy(hash[:], hasher.Sum(nil))
	return hash, nil
}

type cacheEntry struct {
	hash  Hash
	size  int64
	mtime time.Time
}

// Cache memoizes content hashes of files under one root directory,
// keyed by their path relative to it. Entries are reused while a file's
// size and modification time are unchanged.
//
// The root is the dataset's default source directory; cache keys are
// only meaningful relative to it, which is why redirected sources must
// never land inside it.
type Cache struct {
	logger  zerolog.Logger
	root    string
	entries *lru.Cache[string, cacheEntry]
}

// NewCache builds a cache rooted at root. A capacity of zero or less
// uses DefaultCacheSize.
func NewCache(root string, capacity int) (*Cache, error) {
	normalized, err := paths.NormalizePath(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"invalid cache root %q", root)
	}

	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	entries, err := lru.New[string, cacheEntry](capacity)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "creating checksum cache")
	}

	return &Cache{
		logger:  logging.GetLogger("checksum"),
		root:    normalized,
		entries: entries,
	}, nil
}

// Root returns the directory cache keys are relative to.
func (c *Cache) Root() string {
	return c.root
}

// File returns the BLAKE3 digest of the file at relPath under the
// cache root, hashing it only when the cached entry is missing or
// stale.
func (c *Cache) File(relPath string) (Hash, error) {
	var hash Hash

	key, err := cacheKey(relPath)
	if err != nil {
		return hash, err
	}
	fullPath := filepath.Join(c.root, key)

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return hash, errors.Wrapf(err, errors.ErrFileNotFound,
				"no such file %s", fullPath)
		}
		return hash, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot stat %s", fullPath)
	}
	if info.IsDir() {
		return hash, errors.Newf(errors.ErrInvalidInput,
			"%s is a directory", fullPath)
	}

	if entry, ok := c.entries.Get(key); ok {
		if entry.size == info.Size() && entry.mtime.Equal(info.ModTime()) {
			c.logger.Trace().Str("path", key).Msg("Checksum cache hit")
			return entry.hash, nil
		}
		c.logger.Trace().Str("path", key).Msg("Checksum cache entry stale")
	}

	hash, err = HashFile(fullPath)
	if err != nil {
		return hash, err
	}

	c.entries.Add(key, cacheEntry{hash: hash, size: info.Size(), mtime: info.ModTime()})
	c.logger.Trace().Str("path", key).Str("hash", Format(hash)).Msg("Checksum cached")
	return hash, nil
}

// cacheKey cleans a cache-relative path and rejects anything that is
// empty, absolute or escapes the root.
func cacheKey(relPath string) (string, error) {
	if relPath == "" {
		return "", errors.New(errors.ErrInvalidInput, "relative path cannot be empty")
	}
	if filepath.IsAbs(relPath) {
		return "", errors.Newf(errors.ErrInvalidInput,
			"path must be relative to the source directory: %s", relPath)
	}

	cleaned := filepath.Clean(relPath)
	if cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidInput,
			"path escapes the source directory: %s", relPath)
	}
	return cleaned, nil
}
