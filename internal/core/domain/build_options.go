package domain

import (
	"path/filepath"
	"slices"
	"strconv"
)

// BuildOptions is the option set handed to the source build's configure step.
type BuildOptions struct {
	// Flags are passed verbatim after --prefix.
	Flags  []string
	CFlags string
	// RPath embeds <prefix>/lib as the runtime library path so a shared build runs without LD_LIBRARY_PATH.
	RPath bool
}

// DefaultBuildOptions returns the interpreter's fixed configure options.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Flags: []string{
			"--enable-shared",
			"--with-ensurepip=install",
			"--without-doc-strings",
			"--disable-test-modules",
			"--without-pymalloc",
			"--disable-ipv6",
		},
		CFlags: "-fPIC -O2",
		RPath:  true,
	}
}

// ConfigureArgs renders the configure arguments for an install prefix.
func (o BuildOptions) ConfigureArgs(prefix string) []string {
	args := make([]string, 0, len(o.Flags)+3)
	args = append(args, "--prefix="+prefix)
	args = append(args, o.Flags...)
	if o.CFlags != "" {
		args = append(args, "CFLAGS="+o.CFlags)
	}
	if o.RPath {
		args = append(args, "LDFLAGS=-Wl,-rpath,"+filepath.Join(prefix, "lib"))
	}
	return args
}

// CompileArgs renders the build driver arguments for a job count.
func (o BuildOptions) CompileArgs(jobs int) []string {
	if jobs < 1 {
		jobs = 1
	}
	return []string{"-j", strconv.Itoa(jobs)}
}

// InstallArgs renders the build driver arguments for the install step.
func (o BuildOptions) InstallArgs() []string {
	return []string{"install"}
}

// Clone returns a deep copy.
func (o BuildOptions) Clone() BuildOptions {
	o.Flags = slices.Clone(o.Flags)
	return o
}
