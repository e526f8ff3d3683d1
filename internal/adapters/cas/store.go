// Package cas implements the source archive cache and the run manifest store.
package cas

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ManifestStore = (*Store)(nil)

// Store implements ports.ManifestStore using a YAML file inside the working directory.
type Store struct {
	mu sync.Mutex
}

// NewStore creates a new ManifestStore.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the manifest of the last run in workDir.
func (s *Store) Get(workDir string) (*domain.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := domain.ManifestPath(workDir)

	//nolint:gosec // Path is derived from the configured working directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(errors.Join(domain.ErrManifestReadFailed, err), "path", path)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var m domain.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrManifestReadFailed, err), "path", path)
	}

	return &m, nil
}

// Put stores the manifest, replacing the previous one atomically.
func (s *Store) Put(workDir string, manifest domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := domain.ManifestPath(workDir)

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrManifestWriteFailed, err), "path", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrManifestWriteFailed, err), "path", dir)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return zerr.With(errors.Join(domain.ErrManifestWriteFailed, err), "path", path)
	}

	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
