package domain

import "runtime"

// Platform identifies the operating system and CPU architecture a runtime distribution is built for.
// Values use the vocabulary of binary distribution mirrors (linux/mac, x64/aarch64) rather than Go's.
type Platform struct {
	OS   string
	Arch string
}

var (
	osNames = map[string]string{
		"linux":   "linux",
		"darwin":  "mac",
		"windows": "windows",
		"freebsd": "freebsd",
	}

	archNames = map[string]string{
		"amd64":   "x64",
		"arm64":   "aarch64",
		"386":     "x32",
		"arm":     "arm",
		"ppc64le": "ppc64le",
		"s390x":   "s390x",
		"riscv64": "riscv64",
	}
)

// HostPlatform returns the platform of the running process.
func HostPlatform() Platform {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}

// PlatformFor maps a Go GOOS/GOARCH pair to mirror naming.
// Unknown values are passed through unchanged.
func PlatformFor(goos, goarch string) Platform {
	p := Platform{OS: goos, Arch: goarch}
	if name, ok := osNames[goos]; ok {
		p.OS = name
	}
	if name, ok := archNames[goarch]; ok {
		p.Arch = name
	}
	return p
}

// String returns the platform as "os/arch".
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// IsZero reports whether the platform is unset.
func (p Platform) IsZero() bool {
	return p.OS == "" && p.Arch == ""
}
