package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fetch"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// flakyTransport fails the first failures calls after writing a partial payload.
type flakyTransport struct {
	failures int
	calls    atomic.Int32
	payload  string
}

func (f *flakyTransport) Schemes() []string { return []string{"https"} }

func (f *flakyTransport) Get(_ context.Context, _ ports.FetchRequest, w io.Writer) error {
	n := int(f.calls.Add(1))
	if n <= f.failures {
		_, _ = io.WriteString(w, "partial")
		return errors.New("connection reset by peer")
	}
	_, err := io.WriteString(w, f.payload)
	return err
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func request(t *testing.T, attempts int) ports.FetchRequest {
	t.Helper()
	return ports.FetchRequest{
		Dependency:  "python",
		URL:         "https://mirror.invalid/Python-3.11.6.tgz",
		Destination: filepath.Join(t.TempDir(), "downloads", "python.tgz"),
		Policy: domain.RetryPolicy{
			MaxAttempts: attempts,
			Strategy:    domain.StrategyFixed,
			Delay:       time.Millisecond,
		},
	}
}

func TestFetch_SucceedsFirstAttempt(t *testing.T) {
	transport := &flakyTransport{payload: "archive-bytes"}
	f := fetch.NewFetcher(quietLogger(t), transport)
	req := request(t, 3)

	res, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, req.Destination, res.Path)

	data, err := os.ReadFile(req.Destination)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))
}

func TestFetch_RecoversAfterTransientFailures(t *testing.T) {
	transport := &flakyTransport{failures: 2, payload: "archive-bytes"}
	f := fetch.NewFetcher(quietLogger(t), transport)
	req := request(t, 3)

	res, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), transport.calls.Load())

	data, err := os.ReadFile(req.Destination)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data), "partial data of failed attempts must not leak")

	entries, err := os.ReadDir(filepath.Dir(req.Destination))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestFetch_ExhaustsAttempts(t *testing.T) {
	for _, attempts := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("%d attempts", attempts), func(t *testing.T) {
			transport := &flakyTransport{failures: 10}
			f := fetch.NewFetcher(quietLogger(t), transport)
			req := request(t, attempts)

			res, err := f.Fetch(context.Background(), req)
			require.Error(t, err)

			assert.ErrorIs(t, err, domain.ErrFetchExhausted)
			assert.ErrorIs(t, err, domain.ErrTransientFetch)
			assert.False(t, res.Success)
			assert.Equal(t, attempts, res.Attempts)
			assert.Equal(t, int32(attempts), transport.calls.Load()) //nolint:gosec // small test values
			assert.NoFileExists(t, req.Destination)
		})
	}
}

func TestFetch_RemovesStaleDestination(t *testing.T) {
	transport := &flakyTransport{failures: 10}
	f := fetch.NewFetcher(quietLogger(t), transport)
	req := request(t, 1)

	require.NoError(t, os.MkdirAll(filepath.Dir(req.Destination), 0o750))
	require.NoError(t, os.WriteFile(req.Destination, []byte("stale"), 0o600))

	_, err := f.Fetch(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrFetchExhausted)
	assert.NoFileExists(t, req.Destination)
}

func TestFetch_ZeroAttemptsMakesOneAttempt(t *testing.T) {
	transport := &flakyTransport{failures: 10}
	f := fetch.NewFetcher(quietLogger(t), transport)

	res, err := f.Fetch(context.Background(), request(t, 0))
	require.ErrorIs(t, err, domain.ErrFetchExhausted)
	assert.Equal(t, 1, res.Attempts)
}

func TestFetch_ExponentialStrategy(t *testing.T) {
	transport := &flakyTransport{failures: 3, payload: "ok"}
	f := fetch.NewFetcher(quietLogger(t), transport)
	req := request(t, 4)
	req.Policy.Strategy = domain.StrategyExponential
	req.Policy.MaxDelay = 4 * time.Millisecond

	res, err := f.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Attempts)
}

func TestFetch_LogsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var infos, warns []string
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) { infos = append(infos, msg) }).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).Do(func(msg string) { warns = append(warns, msg) }).AnyTimes()

	transport := &flakyTransport{failures: 1, payload: "ok"}
	f := fetch.NewFetcher(log, transport)

	_, err := f.Fetch(context.Background(), request(t, 2))
	require.NoError(t, err)

	require.Len(t, warns, 1)
	assert.True(t, strings.HasPrefix(warns[0], "[python:fetch] attempt 1/2 failed"), warns[0])
	assert.Contains(t, infos, "[python:fetch] attempt 2/2: https://mirror.invalid/Python-3.11.6.tgz")
	for _, msg := range infos {
		assert.True(t, strings.HasPrefix(msg, "[python:fetch]"), msg)
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	f := fetch.NewFetcher(quietLogger(t), &flakyTransport{})
	req := request(t, 3)
	req.URL = "ftp://mirror.invalid/python.tgz"

	_, err := f.Fetch(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrUnsupportedScheme)
}

func TestFetch_CanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Schemes().Return([]string{"https"})
	transport.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ ports.FetchRequest, _ io.Writer) error {
			cancel()
			return errors.New("interrupted")
		}).Times(1)

	f := fetch.NewFetcher(quietLogger(t), transport)
	req := request(t, 5)
	req.Policy.Delay = time.Hour

	res, err := f.Fetch(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrFetchExhausted)
	assert.Equal(t, 1, res.Attempts)
	assert.NoFileExists(t, req.Destination)
}

func TestFetch_AttemptTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Schemes().Return([]string{"https"})
	transport.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ ports.FetchRequest, _ io.Writer) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(2)

	f := fetch.NewFetcher(quietLogger(t), transport)
	req := request(t, 2)
	req.Policy.AttemptTimeout = 10 * time.Millisecond

	_, err := f.Fetch(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrFetchExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
