// Package fetch implements the Fetcher port: bounded, retried transfers over pluggable transports.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// jitter is the randomization factor of the exponential strategy.
const jitter = 0.5

// Fetcher implements ports.Fetcher.
type Fetcher struct {
	logger     ports.Logger
	transports map[string]ports.Transport
}

// NewFetcher creates a Fetcher dispatching on URL scheme to the given transports.
// Later transports win when two claim the same scheme.
func NewFetcher(logger ports.Logger, transports ...ports.Transport) *Fetcher {
	byScheme := make(map[string]ports.Transport)
	for _, t := range transports {
		for _, scheme := range t.Schemes() {
			byScheme[scheme] = t
		}
	}
	return &Fetcher{logger: logger, transports: byScheme}
}

// Fetch retrieves req.URL into req.Destination.
func (f *Fetcher) Fetch(ctx context.Context, req ports.FetchRequest) (domain.FetchResult, error) {
	prefix := domain.LogPrefix(req.Dependency, domain.StageFetch)

	transport, err := f.transportFor(req.URL)
	if err != nil {
		return domain.FetchResult{}, err
	}

	dir := filepath.Dir(req.Destination)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return domain.FetchResult{}, zerr.With(errors.Join(domain.ErrPrepareFailed, err), "path", dir)
	}

	// A destination left by an earlier run must not survive a failed fetch.
	if err := os.Remove(req.Destination); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.FetchResult{}, zerr.With(errors.Join(domain.ErrPrepareFailed, err), "path", req.Destination)
	}

	maxAttempts := max(req.Policy.MaxAttempts, 1)
	attempts := 0

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempts++
		f.logger.Info(fmt.Sprintf("%s attempt %d/%d: %s", prefix, attempts, maxAttempts, req.URL))

		if err := f.attempt(ctx, transport, req); err != nil {
			f.logger.Warn(fmt.Sprintf("%s attempt %d/%d failed: %v", prefix, attempts, maxAttempts, err))
			return zerr.With(errors.Join(domain.ErrTransientFetch, err), "attempt", attempts)
		}
		return nil
	}

	notify := func(_ error, wait time.Duration) {
		f.logger.Info(fmt.Sprintf("%s retrying in %s", prefix, wait))
	}

	b := backoff.WithContext(newBackOff(req.Policy, maxAttempts), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		result := domain.FetchResult{Attempts: attempts}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, zerr.With(zerr.Wrap(ctxErr, "fetch canceled"), "url", req.URL)
		}
		exhausted := zerr.With(errors.Join(domain.ErrFetchExhausted, err), "url", req.URL)
		return result, zerr.With(exhausted, "attempts", attempts)
	}

	f.logger.Info(fmt.Sprintf("%s fetched %s", prefix, filepath.Base(req.Destination)))

	return domain.FetchResult{Path: req.Destination, Success: true, Attempts: attempts}, nil
}

func (f *Fetcher) transportFor(rawURL string) (ports.Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrUnsupportedScheme, err), "url", rawURL)
	}
	t, ok := f.transports[u.Scheme]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedScheme, "no transport for scheme"), "url", rawURL)
	}
	return t, nil
}

// attempt performs one transfer into a fresh temp file and renames it into place on success.
// Partial data from a failed attempt is discarded with the temp file.
func (f *Fetcher) attempt(ctx context.Context, transport ports.Transport, req ports.FetchRequest) (err error) {
	if req.Policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Policy.AttemptTimeout)
		defer cancel()
	}

	tmp, err := os.CreateTemp(filepath.Dir(req.Destination), "."+filepath.Base(req.Destination)+".part-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err := transport.Get(ctx, req, tmp); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, req.Destination)
}

// newBackOff returns the delay schedule allowing maxAttempts-1 retries.
func newBackOff(p domain.RetryPolicy, maxAttempts int) backoff.BackOff {
	var b backoff.BackOff
	switch p.Strategy {
	case domain.StrategyExponential:
		b = backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(p.Delay),
			backoff.WithMaxInterval(max(p.MaxDelay, p.Delay)),
			backoff.WithMultiplier(2),
			backoff.WithRandomizationFactor(jitter),
			backoff.WithMaxElapsedTime(0),
		)
	default:
		b = backoff.NewConstantBackOff(p.Delay)
	}
	return backoff.WithMaxRetries(b, uint64(maxAttempts-1)) //nolint:gosec // maxAttempts >= 1
}
