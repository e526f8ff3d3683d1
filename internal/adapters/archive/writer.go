package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// writer materializes archive entries below root.
// root must be free of symlinks.
type writer struct {
	root  string
	strip int
}

func (w *writer) untar(ctx context.Context, r io.Reader) error {
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "corrupt tar stream")
		}

		target, ok, err := w.target(hdr.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		mode := fs.FileMode(hdr.Mode).Perm() //nolint:gosec // tar modes fit in 32 bits

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := w.dir(target, mode); err != nil {
				return err
			}
		case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // old archives still use TypeRegA
			if err := w.file(target, mode, tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := w.symlink(target, hdr.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			if err := w.hardlink(target, hdr.Linkname); err != nil {
				return err
			}
		default:
			// Devices, fifos and PAX metadata are not materialized.
		}
	}
}

func (w *writer) unzip(ctx context.Context, r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return zerr.Wrap(err, "corrupt zip archive")
	}

	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, ok, err := w.target(file.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		mode := file.Mode()
		switch {
		case mode.IsDir():
			err = w.dir(target, mode.Perm())
		case mode&fs.ModeSymlink != 0:
			err = w.zipSymlink(target, file)
		default:
			err = w.zipFile(target, file)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) zipFile(target string, file *zip.File) error {
	rc, err := file.Open()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open zip entry"), "entry", file.Name)
	}
	defer func() {
		_ = rc.Close()
	}()
	return w.file(target, file.Mode().Perm(), rc)
}

func (w *writer) zipSymlink(target string, file *zip.File) error {
	rc, err := file.Open()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open zip entry"), "entry", file.Name)
	}
	defer func() {
		_ = rc.Close()
	}()
	link, err := io.ReadAll(io.LimitReader(rc, 4096))
	if err != nil {
		return err
	}
	return w.symlink(target, string(link))
}

// target maps an entry name to its destination after stripping leading components.
// It reports false for entries that strip to nothing.
func (w *writer) target(name string) (string, bool, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false, unsafePath(name)
	}

	parts := strings.Split(clean, "/")
	if clean == "." || len(parts) <= w.strip {
		return "", false, nil
	}
	rel := filepath.FromSlash(strings.Join(parts[w.strip:], "/"))

	dest := filepath.Join(w.root, rel)
	if !w.within(dest) {
		return "", false, unsafePath(name)
	}
	return dest, true, nil
}

func (w *writer) within(dest string) bool {
	rel, err := filepath.Rel(w.root, dest)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *writer) dir(target string, mode fs.FileMode) error {
	target, err := w.confine(target)
	if err != nil {
		return err
	}
	if info, err := os.Lstat(target); err == nil && !info.IsDir() {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	return os.MkdirAll(target, dirMode(mode))
}

func (w *writer) file(target string, mode fs.FileMode, r io.Reader) (err error) {
	target, err = w.replace(target)
	if err != nil {
		return err
	}

	//nolint:gosec // target is confined to the destination root
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode(mode))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, r) //nolint:gosec // archives come from configured sources
	return err
}

func (w *writer) symlink(target, link string) error {
	if filepath.IsAbs(link) {
		return zerr.With(unsafePath(target), "link", link)
	}

	confined, err := w.confine(target)
	if err != nil {
		return err
	}

	resolved := filepath.Join(filepath.Dir(confined), link)
	if !w.within(resolved) {
		return zerr.With(unsafePath(target), "link", link)
	}
	if evaluated, err := filepath.EvalSymlinks(resolved); err == nil && !w.within(evaluated) {
		return zerr.With(unsafePath(target), "link", link)
	}

	confined, err = w.replace(target)
	if err != nil {
		return err
	}
	return os.Symlink(link, confined)
}

func (w *writer) hardlink(target, link string) error {
	source, ok, err := w.target(link)
	if err != nil {
		return err
	}
	if !ok {
		return zerr.With(unsafePath(target), "link", link)
	}

	source, err = w.confine(source)
	if err != nil {
		return err
	}

	target, err = w.replace(target)
	if err != nil {
		return err
	}
	return os.Link(source, target)
}

// replace confines target, clears whatever occupies it and ensures its parent exists.
func (w *writer) replace(target string) (string, error) {
	target, err := w.confine(target)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return "", err
	}
	if err := os.RemoveAll(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return target, nil
}

// confine resolves symlinks already on disk in the parent of target and returns target
// rebased onto the resolved parent. Parents resolving outside root are rejected.
func (w *writer) confine(target string) (string, error) {
	existing := filepath.Dir(target)
	var missing []string
	for existing != w.root {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return "", unsafePath(target)
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", zerr.With(unsafePath(target), "cause", err.Error())
	}
	if !w.within(resolved) {
		return "", unsafePath(target)
	}

	parts := append([]string{resolved}, missing...)
	return filepath.Join(append(parts, filepath.Base(target))...), nil
}

func unsafePath(name string) error {
	return zerr.With(errors.Join(domain.ErrExtractionFailed, domain.ErrUnsafeArchivePath), "entry", name)
}

func dirMode(mode fs.FileMode) fs.FileMode {
	if mode == 0 {
		return domain.DirPerm
	}
	return mode | 0o700
}

func fileMode(mode fs.FileMode) fs.FileMode {
	if mode == 0 {
		return domain.FilePerm
	}
	return mode | 0o600
}
