// Package shell provides the executor adapter for delegated host commands.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Option configures an Executor.
type Option func(*Executor)

// WithPTY runs commands attached to a pseudo-terminal.
// Build tools then emit the same progress output they show interactively.
// Stdout and stderr are merged in that mode.
func WithPTY(enabled bool) Option {
	return func(e *Executor) {
		e.pty = enabled
	}
}

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	logger ports.Logger
	pty    bool
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs cmd and waits for it to complete.
// Every output line is logged with the command's dependency and stage prefix
// and copied to stdout or stderr when those are non-nil.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	if cmd.Program() == "" {
		return zerr.Wrap(domain.ErrCommandFailed, "empty command")
	}

	prefix := domain.LogPrefix(cmd.Dependency, cmd.Stage)
	stdoutLog := &logWriter{logger: e.logger, prefix: prefix}
	stderrLog := &logWriter{logger: e.logger, prefix: prefix, warn: true}
	defer func() {
		_ = stdoutLog.Close()
		_ = stderrLog.Close()
	}()

	c := command(ctx, cmd)

	var err error
	if e.pty {
		err = runPTY(c, tee(stdoutLog, stdout))
	} else {
		c.Stdout = tee(stdoutLog, stdout)
		c.Stderr = tee(stderrLog, stderr)
		err = c.Run()
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		failed := zerr.With(errors.Join(domain.ErrCommandFailed, err), "command", strings.Join(cmd.Args, " "))
		return zerr.With(failed, "exit_code", exitCode)
	}

	return nil
}

func command(ctx context.Context, cmd domain.Command) *exec.Cmd {
	name := cmd.Program()

	// Bare names resolve against the command's own PATH, not the host process PATH.
	executable := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, cmd.Env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // commands come from the provisioning plan
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	if c.Env == nil {
		c.Env = []string{}
	}
	return c
}

func runPTY(c *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(c)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		_, _ = io.Copy(out, ptmx)
	}()

	err = c.Wait()
	<-ioDone
	return err
}

func tee(log io.Writer, w io.Writer) io.Writer {
	if w == nil {
		return log
	}
	return io.MultiWriter(log, w)
}

// logWriter forwards complete lines to the logger.
type logWriter struct {
	logger ports.Logger
	prefix string
	warn   bool
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r.
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}

	msg = w.prefix + " " + msg
	if w.warn {
		w.logger.Warn(msg)
		return
	}
	w.logger.Info(msg)
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	path := domain.LookupEnv(env, domain.PathVar)
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
