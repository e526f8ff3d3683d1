// Package envfile renders the environment descriptor as a POSIX shell file.
package envfile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/syntax"
)

var _ ports.DescriptorStore = (*Writer)(nil)

const header = "# Generated by kiln. Source this file to use the provisioned toolchains.\n"

// Writer implements ports.DescriptorStore.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Render returns the descriptor as export statements in emission order.
// Path lists without a value at emission time defer to the value present when sourced.
func Render(d domain.EnvironmentDescriptor) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	for _, e := range d.Entries() {
		value, err := syntax.Quote(e.Value, syntax.LangPOSIX)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "value cannot be quoted"), "variable", e.Name)
		}

		buf.WriteString("export ")
		buf.WriteString(e.Name)
		buf.WriteByte('=')
		buf.WriteString(value)
		if e.Kind == domain.EntryPathList && e.Inherit {
			buf.WriteString(`"${` + e.Name + `:+:${` + e.Name + `}}"`)
		}
		buf.WriteByte('\n')
	}

	data := buf.Bytes()
	if _, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(bytes.NewReader(data), domain.DescriptorFileName); err != nil {
		return nil, zerr.Wrap(err, "rendered descriptor is not valid shell")
	}
	return data, nil
}

// Write renders d and replaces the file at path atomically.
func (w *Writer) Write(path string, d domain.EnvironmentDescriptor) error {
	data, err := Render(d)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrDescriptorWriteFailed, err), "path", path)
	}

	if err := writeAtomic(path, data); err != nil {
		return zerr.With(errors.Join(domain.ErrDescriptorWriteFailed, err), "path", path)
	}
	return nil
}

// Read returns the descriptor at path.
func (w *Writer) Read(path string) ([]byte, error) {
	//nolint:gosec // Path is derived from the configured working directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrDescriptorNotFound, "no descriptor"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read descriptor"), "path", path)
	}
	return data, nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
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
	if err := tmp.Sync(); err != nil {
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
