package toolchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/qiniu/x/log"
	"golang.org/x/mod/semver"
	"golang.org/x/sys/execabs"

	"github.com/goplus/ccpick/internal/build"
	"github.com/goplus/ccpick/pkgs/buildsys"
)

// Info describes a compiler found on PATH.
type Info struct {
	Compiler string `yaml:"compiler"`
	Path     string `yaml:"path"`
	Version  string `yaml:"version"` // canonical semver, e.g. v13.2.0
}

// Probe locates compiler and asks it for its version. GCC needs
// -dumpfullversion for the full version; compilers that reject it are
// retried with -dumpversion alone.
func Probe(ctx context.Context, compiler string) (Info, error) {
	path, err := execabs.LookPath(compiler)
	if err != nil {
		return Info{}, &build.LaunchError{Name: compiler, Err: err}
	}

	r := &build.Runner{Env: map[string]string{"LC_ALL": "C"}}
	res, err := r.Run(ctx, buildsys.Command{path, "-dumpfullversion", "-dumpversion"})
	if err != nil {
		return Info{}, err
	}
	if res.Failed() {
		log.Debugf("toolchain: %s rejected -dumpfullversion: %s", compiler, strings.TrimSpace(res.Stderr))
		if res, err = r.Run(ctx, buildsys.Command{path, "-dumpversion"}); err != nil {
			return Info{}, err
		}
		if res.Failed() {
			return Info{}, fmt.Errorf("%s -dumpversion: exit status %d: %s", compiler, res.ExitCode, strings.TrimSpace(res.Stderr))
		}
	}

	v, err := Canonical(res.Stdout)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", compiler, err)
	}
	return Info{Compiler: compiler, Path: path, Version: v}, nil
}

// Canonical turns a compiler version such as "13.2.0" or "9" into canonical
// semver form ("v13.2.0", "v9.0.0").
func Canonical(version string) (string, error) {
	v := strings.TrimSpace(version)
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("unrecognised version %q", strings.TrimSpace(version))
	}
	return semver.Canonical(v), nil
}

// AtLeast reports whether the probed version is minVersion or newer.
func (i Info) AtLeast(minVersion string) (bool, error) {
	m, err := Canonical(minVersion)
	if err != nil {
		return false, err
	}
	return semver.Compare(i.Version, m) >= 0, nil
}
