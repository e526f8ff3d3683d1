package cas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArchiveCache = (*ArchiveCache)(nil)

// archiveExt marks cache entries so Clear never touches foreign files.
const archiveExt = ".archive"

// ArchiveCache implements ports.ArchiveCache with content-keyed file names.
type ArchiveCache struct{}

// NewArchiveCache creates a new ArchiveCache.
func NewArchiveCache() *ArchiveCache {
	return &ArchiveCache{}
}

// Key returns the cache file name for key.
// The name embeds an xxhash of the dependency coordinates and the source URL,
// so a changed mirror or version never reuses a stale archive.
func Key(key ports.ArchiveKey) string {
	hasher := xxhash.New()
	_, _ = hasher.WriteString(key.Name)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(key.Version)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(key.URL)

	return fmt.Sprintf("%s-%s-%016x%s", key.Name, key.Version, hasher.Sum64(), archiveExt)
}

// Locate returns the path for key under dir and whether a cached archive exists there.
func (c *ArchiveCache) Locate(dir string, key ports.ArchiveKey) (string, bool, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", false, zerr.With(errors.Join(domain.ErrPrepareFailed, err), "path", dir)
	}

	path := filepath.Join(dir, Key(key))

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path, false, nil
	case err != nil:
		return "", false, zerr.With(zerr.Wrap(err, "failed to stat cached archive"), "path", path)
	case !info.Mode().IsRegular() || info.Size() == 0:
		// Not usable. The fetcher replaces it.
		return path, false, nil
	default:
		return path, true, nil
	}
}

// Evict removes a cached archive.
func (c *ArchiveCache) Evict(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to evict cached archive"), "path", path)
	}
	return nil
}

// Clear removes every cached archive under dir.
func (c *ArchiveCache) Clear(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, zerr.With(zerr.Wrap(err, "failed to list archive cache"), "path", dir)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveExt) {
			continue
		}
		if err := c.Evict(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
