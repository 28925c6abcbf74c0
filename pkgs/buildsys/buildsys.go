package buildsys

import (
	"errors"
	"strings"

	"github.com/goplus/ccpick/pkgs/library"
)

var (
	ErrNoSources  = errors.New("no source files selected")
	ErrNoOutput   = errors.New("output path is empty")
	ErrNoCompiler = errors.New("compiler is empty")
)

// Command is a compiler invocation: the executable followed by its arguments.
type Command []string

// Name returns the executable.
func (c Command) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments after the executable.
func (c Command) Args() []string {
	if len(c) == 0 {
		return nil
	}
	return c[1:]
}

// String joins the tokens with spaces, the form handed to a shell.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// Synthesize builds the command compiling sources into output and linking
// libs. An empty source list is reported before any other missing input. Tokens come in a fixed order: compiler, -o output, sources as given,
// then per library as given. A header adds -I<dir>; a static or shared
// library adds -L<dir> followed by -l<name>.
//
// Flags are emitted once per entry, so two headers in one directory give two
// identical -I flags. Synthesize never touches the filesystem.
func Synthesize(compiler, output string, sources []string, libs []library.Entry) (Command, error) {
	switch {
	case len(sources) == 0:
		return nil, ErrNoSources
	case compiler == "":
		return nil, ErrNoCompiler
	case output == "":
		return nil, ErrNoOutput
	}

	cmd := make(Command, 0, 3+len(sources)+2*len(libs))
	cmd = append(cmd, compiler, "-o", output)
	cmd = append(cmd, sources...)
	for _, lib := range libs {
		cmd = append(cmd, LinkFlags(lib)...)
	}
	return cmd, nil
}

// LinkFlags returns the flags contributed by a single library entry.
// A library whose link name is empty (lib.so, .a) only adds its directory:
// a bare -l would swallow the next token.
func LinkFlags(lib library.Entry) []string {
	switch lib.Kind {
	case library.Header:
		return []string{"-I" + lib.Dir()}
	case library.StaticLib, library.SharedLib:
		name := lib.LinkName()
		if name == "" {
			return []string{"-L" + lib.Dir()}
		}
		return []string{"-L" + lib.Dir(), "-l" + name}
	}
	return nil
}
