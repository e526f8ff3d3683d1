package ports

// ArchiveKey identifies a cached source archive.
type ArchiveKey struct {
	Name    string
	Version string
	URL     string
}

// ArchiveCache stores downloaded source archives across runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=archive_cache.go -destination=mocks/mock_archive_cache.go -package=mocks
type ArchiveCache interface {
	// Locate returns the path for key under dir and whether a cached archive exists there.
	// The directory is created if missing.
	Locate(dir string, key ArchiveKey) (path string, hit bool, err error)

	// Evict removes a cached archive. Removing a missing entry is not an error.
	Evict(path string) error

	// Clear removes every cached archive under dir and returns how many were removed.
	Clear(dir string) (int, error)
}
