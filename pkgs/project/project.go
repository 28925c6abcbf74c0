package project

import (
	"os"
	"path/filepath"

	"github.com/goplus/ccpick/pkgs/library"
)

// SourceFile is a compilable file directly inside a project directory.
type SourceFile struct {
	Name     string `yaml:"name"`
	Selected bool   `yaml:"selected"`
}

var sourceExts = map[string]bool{
	".c":   true,
	".cpp": true,
}

// IsSource reports whether name has a C or C++ source extension.
func IsSource(name string) bool {
	return sourceExts[filepath.Ext(name)]
}

// ListSources returns the .c and .cpp files directly inside dir, sorted by
// name and all selected. Subdirectories are not searched.
func ListSources(dir string) ([]SourceFile, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, &library.ScanError{Root: dir, Err: err}
	}
	var out []SourceFile
	for _, de := range des {
		if de.IsDir() || !IsSource(de.Name()) {
			continue
		}
		if !de.Type().IsRegular() {
			fi, err := os.Stat(filepath.Join(dir, de.Name()))
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
		}
		out = append(out, SourceFile{Name: de.Name(), Selected: true})
	}
	return out, nil
}

// Paths resolves the selected files against dir, keeping their order.
func Paths(dir string, files []SourceFile) []string {
	var out []string
	for _, f := range files {
		if f.Selected {
			out = append(out, filepath.Join(dir, f.Name))
		}
	}
	return out
}
