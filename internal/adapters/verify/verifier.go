// Package verify runs installed tools' version commands.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier implements ports.Verifier on top of an Executor.
type Verifier struct {
	executor ports.Executor
	logger   ports.Logger
}

// NewVerifier creates a new Verifier.
func NewVerifier(executor ports.Executor, logger ports.Logger) *Verifier {
	return &Verifier{executor: executor, logger: logger}
}

// Verify runs req.Executable with req.Flag.
// Failures are reported as a warning and logged, never returned.
func (v *Verifier) Verify(ctx context.Context, req ports.VerifyRequest) domain.Verification {
	prefix := domain.LogPrefix(req.Dependency, domain.StageVerify)

	if err := checkExecutable(req.Executable); err != nil {
		return v.warn(prefix, "", err)
	}

	args := []string{req.Executable}
	if req.Flag != "" {
		args = append(args, req.Flag)
	}

	// Version banners go to stdout or stderr depending on the tool.
	var out syncBuffer
	err := v.executor.Execute(ctx, domain.Command{
		Dependency: req.Dependency,
		Stage:      domain.StageVerify,
		Args:       args,
		Env:        req.Env,
	}, &out, &out)

	firstLine := firstLine(out.String())
	if err != nil {
		return v.warn(prefix, firstLine, err)
	}

	v.logger.Info(fmt.Sprintf("%s %s", prefix, firstLine))
	return domain.Verification{Status: domain.VerificationOK, Output: firstLine}
}

func (v *Verifier) warn(prefix, output string, cause error) domain.Verification {
	err := errors.Join(domain.ErrVerificationFailed, cause)
	v.logger.Warn(fmt.Sprintf("%s %v", prefix, domain.ErrVerificationFailed))
	return domain.Verification{Status: domain.VerificationWarning, Output: output, Err: err}
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "executable not found"), "path", path)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return zerr.With(zerr.New("file is not executable"), "path", path)
	}
	return nil
}

func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// syncBuffer lets stdout and stderr share one buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
