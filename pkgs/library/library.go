package library

import (
	"path/filepath"
	"strings"
)

// Kind classifies a discovered file by the way it takes part in a build.
type Kind int

const (
	Header Kind = iota
	StaticLib
	SharedLib
)

func (k Kind) String() string {
	switch k {
	case Header:
		return "header"
	case StaticLib:
		return "static"
	case SharedLib:
		return "shared"
	}
	return "unknown"
}

// MarshalText lets reports print the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var kinds = map[string]Kind{
	".h":  Header,
	".a":  StaticLib,
	".so": SharedLib,
}

// KindOf infers the kind of path from its extension.
// It reports false for anything that is not a header or a library.
func KindOf(path string) (Kind, bool) {
	k, ok := kinds[filepath.Ext(path)]
	return k, ok
}

// Entry is a header or library file found by Scan.
type Entry struct {
	Path     string `yaml:"path"`
	Kind     Kind   `yaml:"kind"`
	Selected bool   `yaml:"selected"`
}

// Dir returns the directory containing the entry.
func (e Entry) Dir() string {
	return filepath.Dir(e.Path)
}

// LinkName returns the name used with -l for a library entry:
// the file name without extension and without a leading "lib".
func (e Entry) LinkName() string {
	name := filepath.Base(e.Path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimPrefix(name, "lib")
}

// Filter returns the entries whose path contains pattern, ignoring case.
// An empty pattern matches everything.
func Filter(entries []Entry, pattern string) []Entry {
	pattern = strings.ToLower(pattern)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Path), pattern) {
			out = append(out, e)
		}
	}
	return out
}

// Selected returns the selected entries, keeping their order.
func Selected(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Selected {
			out = append(out, e)
		}
	}
	return out
}
