package domain

import (
	"slices"
	"strings"
)

// PathVar is the executable search path variable.
const PathVar = "PATH"

// pathListSeparator joins path-list values; descriptors target POSIX shells.
const pathListSeparator = ":"

// EntryKind distinguishes plain values from colon-separated search paths.
type EntryKind uint8

const (
	// EntryScalar replaces any previous value.
	EntryScalar EntryKind = iota
	// EntryPathList prepends to a previous value.
	EntryPathList
)

// EnvironmentEntry is one variable assignment in the descriptor.
type EnvironmentEntry struct {
	Name  string
	Value string
	Kind  EntryKind
	// Inherit is set on path lists that had no value at emission time.
	// The rendered assignment then appends whatever value is present when sourced.
	Inherit bool
}

// EnvironmentDescriptor is the ordered set of assignments downstream processes source.
// It is built once and never mutated.
type EnvironmentDescriptor struct {
	entries []EnvironmentEntry
}

// NewEnvironmentDescriptor builds the descriptor from install outcomes in install order.
// base is the environment snapshot the run started with, in "KEY=VALUE" form.
//
// Home variables come first, then PATH, then module search paths.
func NewEnvironmentDescriptor(outcomes []InstallOutcome, base []string) EnvironmentDescriptor {
	var (
		entries    []EnvironmentEntry
		bins       []string
		moduleVars []string
		modules    = make(map[string][]string)
	)

	for _, o := range outcomes {
		c := o.Contribution
		if c.HomeVar != "" && c.Home != "" {
			entries = append(entries, EnvironmentEntry{Name: c.HomeVar, Value: c.Home, Kind: EntryScalar})
		}
		if c.BinDir != "" {
			bins = append(bins, c.BinDir)
		}
		if c.ModuleVar != "" && c.ModuleDir != "" {
			if _, seen := modules[c.ModuleVar]; !seen {
				moduleVars = append(moduleVars, c.ModuleVar)
			}
			modules[c.ModuleVar] = append(modules[c.ModuleVar], c.ModuleDir)
		}
	}

	if len(bins) > 0 {
		entries = append(entries, pathEntry(PathVar, bins, base))
	}
	for _, name := range moduleVars {
		entries = append(entries, pathEntry(name, modules[name], base))
	}

	return EnvironmentDescriptor{entries: entries}
}

func pathEntry(name string, additions []string, base []string) EnvironmentEntry {
	existing := LookupEnv(base, name)
	return EnvironmentEntry{
		Name:    name,
		Value:   PrependPath(existing, additions...),
		Kind:    EntryPathList,
		Inherit: existing == "",
	}
}

// PrependPath places additions, in order, ahead of an existing path list.
// Empty additions are skipped and an empty existing value adds no separator.
func PrependPath(existing string, additions ...string) string {
	parts := make([]string, 0, len(additions)+1)
	for _, a := range additions {
		if a != "" {
			parts = append(parts, a)
		}
	}
	if existing != "" {
		parts = append(parts, existing)
	}
	return strings.Join(parts, pathListSeparator)
}

// LookupEnv returns the value of name in a "KEY=VALUE" list. The last assignment wins.
func LookupEnv(env []string, name string) string {
	prefix := name + "="
	value := ""
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, prefix); ok {
			value = v
		}
	}
	return value
}

// Entries returns a copy of the assignments in emission order.
func (d EnvironmentDescriptor) Entries() []EnvironmentEntry {
	return slices.Clone(d.entries)
}

// Lookup returns the value assigned to name.
func (d EnvironmentDescriptor) Lookup(name string) (string, bool) {
	for _, e := range d.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Names returns the assigned variable names in emission order.
func (d EnvironmentDescriptor) Names() []string {
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of assignments.
func (d EnvironmentDescriptor) Len() int {
	return len(d.entries)
}
