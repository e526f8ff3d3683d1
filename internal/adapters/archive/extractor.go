// Package archive implements the Extractor port for tar and zip archives.
package archive

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Extractor = (*Extractor)(nil)

// Format is a detected archive encoding.
type Format int

const (
	// FormatUnknown is not a supported archive.
	FormatUnknown Format = iota
	// FormatTar is an uncompressed tar stream.
	FormatTar
	// FormatTarGzip is a gzip-compressed tar stream.
	FormatTarGzip
	// FormatTarZstd is a zstd-compressed tar stream.
	FormatTarZstd
	// FormatTarBzip2 is a bzip2-compressed tar stream.
	FormatTarBzip2
	// FormatZip is a zip archive.
	FormatZip
)

var formatNames = map[Format]string{
	FormatUnknown:  "unknown",
	FormatTar:      "tar",
	FormatTarGzip:  "tar.gz",
	FormatTarZstd:  "tar.zst",
	FormatTarBzip2: "tar.bz2",
	FormatZip:      "zip",
}

func (f Format) String() string {
	return formatNames[f]
}

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicBzip2 = []byte("BZh")
	magicZip   = []byte("PK\x03\x04")
	magicUstar = []byte("ustar")
)

// ustarOffset is where the ustar magic sits in a tar header.
const ustarOffset = 257

// Detect identifies the archive format from its leading bytes.
func Detect(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, magicGzip):
		return FormatTarGzip
	case bytes.HasPrefix(header, magicZstd):
		return FormatTarZstd
	case bytes.HasPrefix(header, magicBzip2):
		return FormatTarBzip2
	case bytes.HasPrefix(header, magicZip):
		return FormatZip
	case len(header) >= ustarOffset+len(magicUstar) &&
		bytes.Equal(header[ustarOffset:ustarOffset+len(magicUstar)], magicUstar):
		return FormatTar
	default:
		return FormatUnknown
	}
}

// Extractor implements ports.Extractor.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks req.Archive into req.Destination.
func (e *Extractor) Extract(ctx context.Context, req ports.ExtractRequest) error {
	err := e.extract(ctx, req)
	if err == nil || errors.Is(err, domain.ErrExtractionFailed) {
		return err
	}
	return zerr.With(errors.Join(domain.ErrExtractionFailed, err), "archive", req.Archive)
}

func (e *Extractor) extract(ctx context.Context, req ports.ExtractRequest) error {
	f, err := os.Open(req.Archive)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	br := bufio.NewReaderSize(f, 1024)
	header, err := br.Peek(ustarOffset + len(magicUstar))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	format := Detect(header)
	if format == FormatUnknown {
		return zerr.With(errors.Join(domain.ErrExtractionFailed, domain.ErrUnsupportedArchive), "archive", req.Archive)
	}

	if err := os.MkdirAll(req.Destination, domain.DirPerm); err != nil {
		return err
	}

	root, err := filepath.EvalSymlinks(req.Destination)
	if err != nil {
		return err
	}

	w := &writer{root: root, strip: req.StripComponents}

	switch format {
	case FormatZip:
		info, err := f.Stat()
		if err != nil {
			return err
		}
		return w.unzip(ctx, f, info.Size())
	case FormatTarGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return zerr.Wrap(err, "invalid gzip stream")
		}
		defer func() {
			_ = gz.Close()
		}()
		return w.untar(ctx, gz)
	case FormatTarZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return zerr.Wrap(err, "invalid zstd stream")
		}
		defer zr.Close()
		return w.untar(ctx, zr)
	case FormatTarBzip2:
		return w.untar(ctx, bzip2.NewReader(br))
	default:
		return w.untar(ctx, br)
	}
}
