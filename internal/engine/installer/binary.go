package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.BinaryInstaller = (*Binary)(nil)

// Binary installs prebuilt distributions.
type Binary struct {
	fetcher   ports.Fetcher
	extractor ports.Extractor
	logger    ports.Logger
}

// NewBinary creates a Binary installer.
func NewBinary(fetcher ports.Fetcher, extractor ports.Extractor, logger ports.Logger) *Binary {
	return &Binary{fetcher: fetcher, extractor: extractor, logger: logger}
}

// InstallBinary fetches the distribution archive into the download directory and unpacks it
// into the target directory without its top-level directory. The archive is deleted afterwards.
//
// Entries already present in the target are replaced, so repeated installs yield the same layout.
func (b *Binary) InstallBinary(ctx context.Context, cfg domain.RunConfig, spec domain.DependencySpec) (string, error) {
	url, err := sourceURL(ctx, cfg, spec)
	if err != nil {
		return "", err
	}

	if err := prepareTarget(ctx, spec); err != nil {
		return "", err
	}

	b.logger.Info(fmt.Sprintf("%s installing %s %s into %s",
		domain.LogPrefix(spec.Name(), domain.StageInstall), spec.Name(), spec.Version(), spec.TargetDir()))

	archive := filepath.Join(cfg.DownloadDir(), spec.ArchiveName(cfg.Platform))
	if err := fetchArchive(ctx, b.fetcher, cfg, spec, url, archive); err != nil {
		return "", err
	}
	defer b.discard(spec, archive)

	b.logger.Info(fmt.Sprintf("%s unpacking %s", domain.LogPrefix(spec.Name(), domain.StageExtract), filepath.Base(archive)))

	err = b.extractor.Extract(ctx, ports.ExtractRequest{
		Archive:         archive,
		Destination:     spec.TargetDir(),
		StripComponents: stripTopLevel,
	})
	if err != nil {
		return "", fail(ctx, spec, domain.StageExtract, domain.ErrExtractionFailed, err)
	}

	b.logger.Info(fmt.Sprintf("%s installed %s", domain.LogPrefix(spec.Name(), domain.StageInstall), spec.TargetDir()))

	return spec.TargetDir(), nil
}

func (b *Binary) discard(spec domain.DependencySpec, archive string) {
	if err := os.Remove(archive); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.logger.Warn(fmt.Sprintf("%s could not remove %s: %v",
			domain.LogPrefix(spec.Name(), domain.StageExtract), archive, err))
	}
}
