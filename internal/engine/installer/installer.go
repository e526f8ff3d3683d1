// Package installer places dependencies into their target directories.
package installer

import (
	"context"
	"errors"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// stripTopLevel drops the single top-level directory distribution archives wrap their contents in.
const stripTopLevel = 1

// fail builds the stage error for a failed step.
// A canceled run carries no kind so the cancellation is not reported as a fetch or build failure.
func fail(ctx context.Context, spec domain.DependencySpec, stage domain.Stage, kind, err error) error {
	if ctx.Err() != nil {
		kind = nil
	}
	return domain.NewStageError(spec.Name(), stage, kind, err)
}

// prepareTarget creates the install directory.
func prepareTarget(ctx context.Context, spec domain.DependencySpec) error {
	if err := os.MkdirAll(spec.TargetDir(), domain.DirPerm); err != nil {
		return fail(ctx, spec, domain.StagePrepare, domain.ErrPrepareFailed, err)
	}
	return nil
}

// fetchArchive retrieves the dependency archive into dest.
func fetchArchive(
	ctx context.Context,
	fetcher ports.Fetcher,
	cfg domain.RunConfig,
	spec domain.DependencySpec,
	url, dest string,
) error {
	_, err := fetcher.Fetch(ctx, ports.FetchRequest{
		Dependency:  spec.Name(),
		URL:         url,
		Destination: dest,
		Policy:      cfg.Retry,
		S3:          cfg.S3,
	})
	if err != nil {
		return fail(ctx, spec, domain.StageFetch, domain.ErrFetchExhausted, err)
	}
	return nil
}

// sourceURL renders the dependency URL for the run's platform.
func sourceURL(ctx context.Context, cfg domain.RunConfig, spec domain.DependencySpec) (string, error) {
	url, err := spec.URL(cfg.Platform)
	if err != nil {
		kind := domain.ErrInvalidURLTemplate
		if errors.Is(err, domain.ErrUnsupportedScheme) {
			kind = domain.ErrUnsupportedScheme
		}
		return "", fail(ctx, spec, domain.StagePrepare, kind, err)
	}
	return url, nil
}
