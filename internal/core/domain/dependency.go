package domain

import (
	"bytes"
	"errors"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
)

// InstallKind selects how a dependency is placed into its target directory.
type InstallKind uint8

const (
	// KindBinary unpacks a prebuilt distribution archive.
	KindBinary InstallKind = iota
	// KindSource builds the dependency from a source archive.
	KindSource
)

// String returns the configuration name of the kind.
func (k InstallKind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindSource:
		return "source"
	default:
		return "unknown"
	}
}

// probePlatform renders templates during validation so platform fields are exercised.
var probePlatform = Platform{OS: "linux", Arch: "x64"}

// TemplateData is the value URL and module directory templates are rendered with.
type TemplateData struct {
	Name       string
	Version    string
	MajorMinor string
	OS         string
	Arch       string
}

// DependencyParams holds the raw fields a DependencySpec is constructed from.
type DependencyParams struct {
	// Name identifies the dependency in logs, errors and cache keys (e.g. "jdk").
	Name string
	// Version is the single target version (e.g. "17.0.9+9").
	Version string
	// URLTemplate is a text/template rendered with TemplateData.
	URLTemplate string
	// TargetDir is the absolute install directory.
	TargetDir string
	// Kind selects the installer.
	Kind InstallKind
	// Executable is the tool path relative to TargetDir (e.g. "bin/java").
	Executable string
	// VersionFlag is passed to Executable during verification.
	VersionFlag string
	// HomeVar is the variable exported with TargetDir as value. Optional.
	HomeVar string
	// ModuleVar is the module search path variable. Optional.
	ModuleVar string
	// ModuleDir is a template, relative to TargetDir, prepended to ModuleVar.
	ModuleDir string
}

// DependencySpec is the validated, immutable description of one dependency.
type DependencySpec struct {
	name        string
	version     string
	kind        InstallKind
	targetDir   string
	executable  string
	versionFlag string
	homeVar     string
	moduleVar   string
	moduleDir   string
	urlTemplate string
	url         *template.Template
}

// NewDependencySpec validates params and returns the spec.
func NewDependencySpec(p DependencyParams) (DependencySpec, error) {
	if strings.TrimSpace(p.Name) == "" {
		return DependencySpec{}, zerr.Wrap(ErrInvalidDependencySpec, "dependency name is required")
	}

	if !semver.IsValid("v" + versionCore(p.Version)) {
		return DependencySpec{}, zerr.With(
			zerr.With(zerr.Wrap(ErrInvalidVersion, "cannot parse version"), "dependency", p.Name),
			"version", p.Version)
	}

	if p.TargetDir == "" || !filepath.IsAbs(p.TargetDir) {
		return DependencySpec{}, zerr.With(
			zerr.With(zerr.Wrap(ErrInvalidDependencySpec, "target directory must be absolute"), "dependency", p.Name),
			"target_dir", p.TargetDir)
	}

	if p.Executable == "" || filepath.IsAbs(p.Executable) {
		return DependencySpec{}, zerr.With(
			zerr.With(zerr.Wrap(ErrInvalidDependencySpec, "executable must be a relative path"), "dependency", p.Name),
			"executable", p.Executable)
	}

	if p.ModuleDir != "" && p.ModuleVar == "" {
		return DependencySpec{}, zerr.With(
			zerr.Wrap(ErrInvalidDependencySpec, "module directory requires a module variable"), "dependency", p.Name)
	}

	tmpl, err := template.New(p.Name).Option("missingkey=error").Parse(p.URLTemplate)
	if err != nil {
		return DependencySpec{}, zerr.With(errors.Join(ErrInvalidURLTemplate, err), "dependency", p.Name)
	}

	spec := DependencySpec{
		name:        p.Name,
		version:     p.Version,
		kind:        p.Kind,
		targetDir:   filepath.Clean(p.TargetDir),
		executable:  filepath.Clean(p.Executable),
		versionFlag: p.VersionFlag,
		homeVar:     p.HomeVar,
		moduleVar:   p.ModuleVar,
		moduleDir:   p.ModuleDir,
		urlTemplate: p.URLTemplate,
		url:         tmpl,
	}

	if _, err := spec.URL(probePlatform); err != nil {
		return DependencySpec{}, err
	}

	if _, err := spec.render(spec.name+"-module", spec.moduleDir, probePlatform); err != nil {
		return DependencySpec{}, err
	}

	return spec, nil
}

// Name returns the dependency name.
func (s DependencySpec) Name() string { return s.name }

// Version returns the target version.
func (s DependencySpec) Version() string { return s.version }

// Kind returns the install kind.
func (s DependencySpec) Kind() InstallKind { return s.kind }

// TargetDir returns the absolute install directory.
func (s DependencySpec) TargetDir() string { return s.targetDir }

// VersionFlag returns the flag that makes the executable report its version.
func (s DependencySpec) VersionFlag() string { return s.versionFlag }

// URLTemplate returns the unrendered source URL template.
func (s DependencySpec) URLTemplate() string { return s.urlTemplate }

// BinDir returns the directory added to PATH.
func (s DependencySpec) BinDir() string {
	return filepath.Join(s.targetDir, "bin")
}

// ExecutablePath returns the absolute path of the tool's executable.
func (s DependencySpec) ExecutablePath() string {
	return filepath.Join(s.targetDir, s.executable)
}

// MajorMinor returns the "X.Y" prefix of the version.
func (s DependencySpec) MajorMinor() string {
	return strings.TrimPrefix(semver.MajorMinor("v"+versionCore(s.version)), "v")
}

// versionPattern matches a dotted numeric release followed by an optional
// upstream qualifier, e.g. 3.11.6, 3.13.0rc1, 17.0.9+9 or 21+35.
var versionPattern = regexp.MustCompile(`^(\d+(?:\.\d+){0,2})(?:[-+._]?[0-9A-Za-z][0-9A-Za-z.+_-]*)?$`)

// versionCore returns the dotted numeric release of v, or "" when v does not parse.
func versionCore(v string) string {
	m := versionPattern.FindStringSubmatch(v)
	if m == nil {
		return ""
	}
	return m[1]
}

// URL renders the source URL for the given platform.
func (s DependencySpec) URL(p Platform) (string, error) {
	if s.url == nil {
		return "", zerr.With(zerr.Wrap(ErrInvalidURLTemplate, "no template"), "dependency", s.name)
	}

	var buf bytes.Buffer
	if err := s.url.Execute(&buf, s.templateData(p)); err != nil {
		return "", zerr.With(errors.Join(ErrInvalidURLTemplate, err), "dependency", s.name)
	}

	raw := buf.String()
	u, err := url.Parse(raw)
	if err != nil {
		return "", zerr.With(errors.Join(ErrInvalidURLTemplate, err), "url", raw)
	}

	switch u.Scheme {
	case "http", "https", "s3":
	default:
		return "", zerr.With(zerr.Wrap(ErrUnsupportedScheme, "cannot fetch "+u.Scheme), "url", raw)
	}

	if u.Host == "" {
		return "", zerr.With(zerr.Wrap(ErrInvalidURLTemplate, "URL has no host"), "url", raw)
	}

	return raw, nil
}

// ArchiveName returns the base name of the rendered source URL, used for temporary downloads.
func (s DependencySpec) ArchiveName(p Platform) string {
	raw, err := s.URL(p)
	if err == nil {
		if u, perr := url.Parse(raw); perr == nil {
			if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
				return s.name + "-" + base
			}
		}
	}
	return s.name + "-" + s.version + ".archive"
}

// Contribution returns the environment variables the installed dependency provides.
func (s DependencySpec) Contribution() Contribution {
	c := Contribution{
		HomeVar: s.homeVar,
		BinDir:  s.BinDir(),
	}
	if s.homeVar != "" {
		c.Home = s.targetDir
	}
	if s.moduleVar != "" {
		c.ModuleVar = s.moduleVar
		// Validated at construction.
		rel, _ := s.render(s.name+"-module", s.moduleDir, probePlatform)
		if rel != "" {
			c.ModuleDir = filepath.Join(s.targetDir, rel)
		}
	}
	return c
}

func (s DependencySpec) templateData(p Platform) TemplateData {
	return TemplateData{
		Name:       s.name,
		Version:    s.version,
		MajorMinor: s.MajorMinor(),
		OS:         p.OS,
		Arch:       p.Arch,
	}
}

func (s DependencySpec) render(name, text string, p Platform) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", zerr.With(errors.Join(ErrInvalidDependencySpec, err), "template", text)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s.templateData(p)); err != nil {
		return "", zerr.With(errors.Join(ErrInvalidDependencySpec, err), "template", text)
	}
	return buf.String(), nil
}
