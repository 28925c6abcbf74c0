package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goplus/ccpick/internal/build"
	"github.com/goplus/ccpick/internal/session"
	"github.com/goplus/ccpick/pkgs/buildsys"
	"github.com/goplus/ccpick/pkgs/library"
	"github.com/goplus/ccpick/pkgs/project"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func withFormat(t *testing.T, f string) {
	t.Helper()
	saved := format
	format = f
	t.Cleanup(func() { format = saved })
}

func TestDryRun(t *testing.T) {
	withFormat(t, "text")
	base := t.TempDir()
	proj := filepath.Join(base, "proj")
	root := filepath.Join(base, "usr")
	touch(t, proj, "main.cpp", "util.c")
	touch(t, root, "include/stdio.h", "lib/libm.so", "lib/libz.a")

	var stdout, stderr bytes.Buffer
	err := doBuild(context.Background(), &stdout, &stderr, proj, buildOptions{
		compiler: "g++",
		output:   filepath.Join(proj, "out"),
		root:     root,
		libs: []string{
			filepath.Join(root, "include", "stdio.h"),
			filepath.Join(root, "lib", "libm.so"),
		},
		dryRun: true,
	})
	if err != nil {
		t.Fatalf("doBuild: %v", err)
	}
	want := strings.Join([]string{
		"g++", "-o", filepath.Join(proj, "out"),
		filepath.Join(proj, "main.cpp"), filepath.Join(proj, "util.c"),
		"-I" + filepath.Join(root, "include"),
		"-L" + filepath.Join(root, "lib"), "-lm",
	}, " ") + "\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q\nwant     %q", stdout.String(), want)
	}
}

func TestDryRunSourceSelection(t *testing.T) {
	withFormat(t, "text")
	proj := t.TempDir()
	touch(t, proj, "a.c", "b.c")

	var stdout bytes.Buffer
	err := doBuild(context.Background(), &stdout, &bytes.Buffer{}, proj, buildOptions{
		compiler: "cc",
		output:   "app",
		sources:  []string{"b.c"},
		dryRun:   true,
	})
	if err != nil {
		t.Fatalf("doBuild: %v", err)
	}
	if want := "cc -o app " + filepath.Join(proj, "b.c") + "\n"; stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestBuildErrors(t *testing.T) {
	withFormat(t, "text")
	proj := t.TempDir()
	touch(t, proj, "main.c")
	empty := t.TempDir()

	tests := []struct {
		name string
		dir  string
		opts buildOptions
		want error
	}{
		{"missing project", filepath.Join(proj, "missing"), buildOptions{compiler: "cc", dryRun: true}, library.ErrFilesystem},
		{"no sources", empty, buildOptions{compiler: "cc", dryRun: true}, buildsys.ErrNoSources},
		{"unknown source", proj, buildOptions{compiler: "cc", sources: []string{"other.c"}, dryRun: true}, session.ErrUnknownSource},
		{"missing library root", proj, buildOptions{compiler: "cc", root: filepath.Join(proj, "nope"), libs: []string{"/x/libfoo.so"}, dryRun: true}, library.ErrFilesystem},
		{"unknown library", proj, buildOptions{compiler: "cc", root: proj, libs: []string{"/x/libfoo.so"}, dryRun: true}, session.ErrUnknownLibrary},
		{"missing compiler", proj, buildOptions{compiler: "ccpick-no-such-compiler"}, build.ErrLaunch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := doBuild(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, tt.dir, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func fakeCompiler(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
	p := filepath.Join(t.TempDir(), "fakecc")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildFailurePrintsHints(t *testing.T) {
	withFormat(t, "text")
	cc := fakeCompiler(t, "echo linking\necho \"main.o: undefined reference to \\`sqrt'\" >&2\nexit 2\n")
	proj := t.TempDir()
	touch(t, proj, "main.c")

	var stdout, stderr bytes.Buffer
	err := doBuild(context.Background(), &stdout, &stderr, proj, buildOptions{compiler: cc})
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != 2 {
		t.Fatalf("err = %v, want exit status 2", err)
	}
	if stdout.String() != "linking\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "undefined reference to `sqrt'") {
		t.Errorf("stderr lacks compiler output: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "[!] Function `sqrt` not found") {
		t.Errorf("stderr lacks hint: %q", stderr.String())
	}
}

func TestBuildYAMLReport(t *testing.T) {
	withFormat(t, "yaml")
	cc := fakeCompiler(t, "echo ok\n")
	proj := t.TempDir()
	touch(t, proj, "main.c")

	var stdout bytes.Buffer
	if err := doBuild(context.Background(), &stdout, &bytes.Buffer{}, proj, buildOptions{compiler: cc}); err != nil {
		t.Fatalf("doBuild: %v", err)
	}
	var report struct {
		Command  []string `yaml:"command"`
		ExitCode int      `yaml:"exit_code"`
		Stdout   string   `yaml:"stdout"`
		Hints    []string `yaml:"hints"`
	}
	if err := yaml.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("report is not yaml: %v\n%s", err, stdout.String())
	}
	if report.ExitCode != 0 || report.Stdout != "ok\n" || len(report.Hints) != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Command) == 0 || report.Command[0] != cc {
		t.Errorf("command = %v", report.Command)
	}
}

func TestMinVersion(t *testing.T) {
	withFormat(t, "text")
	cc := fakeCompiler(t, "echo 8.5.0\n")
	proj := t.TempDir()
	touch(t, proj, "main.c")

	err := doBuild(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, proj, buildOptions{compiler: cc, minVersion: "9"})
	if err == nil || !strings.Contains(err.Error(), "need 9 or newer") {
		t.Fatalf("err = %v, want version refusal", err)
	}

	var out bytes.Buffer
	if err := showToolchain(context.Background(), &out, cc, "8"); err != nil {
		t.Fatalf("showToolchain: %v", err)
	}
	if !strings.Contains(out.String(), "v8.5.0") {
		t.Errorf("toolchain output = %q", out.String())
	}
}

func TestPrintEntriesAndSources(t *testing.T) {
	withFormat(t, "text")
	entries := []library.Entry{
		{Path: "/usr/include/stdio.h", Kind: library.Header},
		{Path: "/usr/lib/libm.so", Kind: library.SharedLib, Selected: true},
	}
	var buf bytes.Buffer
	if err := printEntries(&buf, entries); err != nil {
		t.Fatal(err)
	}
	want := "header /usr/include/stdio.h\nshared /usr/lib/libm.so\n"
	if buf.String() != want {
		t.Errorf("printEntries = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	sources := []project.SourceFile{{Name: "main.cpp", Selected: true}, {Name: "old.c"}}
	if err := printSources(&buf, sources); err != nil {
		t.Fatal(err)
	}
	if want := "[x] main.cpp\n[ ] old.c\n"; buf.String() != want {
		t.Errorf("printSources = %q, want %q", buf.String(), want)
	}

	withFormat(t, "yaml")
	buf.Reset()
	if err := printEntries(&buf, entries); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "kind: shared") || !strings.Contains(buf.String(), "selected: true") {
		t.Errorf("yaml entries = %q", buf.String())
	}
}
