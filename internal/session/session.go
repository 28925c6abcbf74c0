// Package session keeps the user's choices between discovery and build: the
// active project directory, its source files, the scanned libraries, and
// which of them are selected.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/qiniu/x/log"

	"github.com/goplus/ccpick/internal/build"
	"github.com/goplus/ccpick/pkgs/buildsys"
	"github.com/goplus/ccpick/pkgs/library"
	"github.com/goplus/ccpick/pkgs/project"
)

var (
	ErrNoProject      = errors.New("no project directory selected")
	ErrUnknownSource  = errors.New("unknown source file")
	ErrUnknownLibrary = errors.New("unknown library")
)

// DefaultOutput is the file name used when a build names no output path.
const DefaultOutput = "output"

// Session is not safe for concurrent use.
type Session struct {
	runner *build.Runner

	dir       string
	sources   []project.SourceFile
	libraries []library.Entry
}

// Option configures a Session.
type Option func(*Session)

// WithRunner sets the runner used by RequestBuild.
func WithRunner(r *build.Runner) Option {
	return func(s *Session) {
		s.runner = r
	}
}

// New returns an empty Session that builds with a default Runner.
func New(opts ...Option) *Session {
	s := &Session{runner: &build.Runner{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectProject makes dir the active project and replaces the source set
// with its .c and .cpp files, all selected. On error the previous project
// stays active.
func (s *Session) SelectProject(dir string) ([]project.SourceFile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &library.ScanError{Root: dir, Err: err}
	}
	sources, err := project.ListSources(abs)
	if err != nil {
		return nil, err
	}
	s.dir = abs
	s.sources = sources
	log.Debugf("session: project %s, %d sources", abs, len(sources))
	return slices.Clone(sources), nil
}

// ScanLibraries replaces the library set with the headers and libraries
// found below root. Nothing is selected afterwards. On error the previous
// entries are kept.
func (s *Session) ScanLibraries(root string) ([]library.Entry, error) {
	entries, err := library.Scan(root)
	if err != nil {
		return nil, err
	}
	s.libraries = entries
	log.Debugf("session: %d libraries under %s", len(entries), root)
	return slices.Clone(entries), nil
}

// Project returns the active project directory, or "" when none is set.
func (s *Session) Project() string {
	return s.dir
}

// Sources returns a copy of the current source set.
func (s *Session) Sources() []project.SourceFile {
	return slices.Clone(s.sources)
}

// Libraries returns a copy of the scanned headers and libraries.
func (s *Session) Libraries() []library.Entry {
	return slices.Clone(s.libraries)
}

// SetSourceSelection selects exactly the named source files. Naming a file
// that is not part of the project fails and leaves the selection unchanged.
func (s *Session) SetSourceSelection(names []string) error {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	for _, f := range s.sources {
		delete(want, f.Name)
	}
	if len(want) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSource, firstKey(want))
	}
	sel := make(map[string]bool, len(names))
	for _, name := range names {
		sel[name] = true
	}
	for i := range s.sources {
		s.sources[i].Selected = sel[s.sources[i].Name]
	}
	return nil
}

// SetLibrarySelection selects exactly the libraries with the given paths.
// Relative paths are made absolute first. Naming a path the last scan did not
// find fails and leaves the selection unchanged.
func (s *Session) SetLibrarySelection(paths []string) error {
	sel := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnknownLibrary, p, err)
		}
		sel[abs] = true
	}
	missing := make(map[string]bool, len(sel))
	for p := range sel {
		missing[p] = true
	}
	for _, e := range s.libraries {
		delete(missing, e.Path)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLibrary, firstKey(missing))
	}
	for i := range s.libraries {
		s.libraries[i].Selected = sel[s.libraries[i].Path]
	}
	return nil
}

// Command synthesizes the compile command for the current selection.
// An empty compiler means "g++"; an empty output means "output" inside the
// project directory.
func (s *Session) Command(compiler, output string) (buildsys.Command, error) {
	if s.dir == "" {
		return nil, ErrNoProject
	}
	if compiler == "" {
		compiler = "g++"
	}
	if output == "" {
		output = filepath.Join(s.dir, DefaultOutput)
	}
	return buildsys.Synthesize(compiler, output, project.Paths(s.dir, s.sources), library.Selected(s.libraries))
}

// RequestBuild synthesizes the command for the current selection and runs
// it. Precondition failures are returned before any process starts.
func (s *Session) RequestBuild(ctx context.Context, compiler, output string) (*build.Result, error) {
	cmd, err := s.Command(compiler, output)
	if err != nil {
		return nil, err
	}
	log.Infof("building %s", cmd)
	res, err := s.runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		log.Infof("%s exited with status %d", cmd.Name(), res.ExitCode)
	}
	return res, nil
}

func firstKey(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys[0]
}
