package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/qiniu/x/log"
)

// ErrFilesystem is matched by every error caused by a directory that
// cannot be read.
var ErrFilesystem = errors.New("filesystem error")

// ScanError reports a directory that could not be scanned.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

func (e *ScanError) Is(target error) bool {
	return target == ErrFilesystem
}

// Scan walks root recursively and returns every header, static archive and
// shared object below it, in traversal order. Entry paths are absolute.
//
// Symlinked directories are not descended. Subdirectories that cannot be
// read are skipped; only a root that cannot be read fails the scan, and in
// that case no entries are returned.
func Scan(root string) ([]Entry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	if !fi.IsDir() {
		return nil, &ScanError{Root: root, Err: errors.New("not a directory")}
	}

	var entries []Entry
	fsys := os.DirFS(abs)
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			log.Debugf("library: skip %s: %v", p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		kind, ok := KindOf(p)
		if !ok {
			return nil
		}
		if !isFile(fsys, p, d) {
			return nil
		}
		entries = append(entries, Entry{
			Path: filepath.Join(abs, filepath.FromSlash(p)),
			Kind: kind,
		})
		return nil
	})
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	return entries, nil
}

// isFile reports whether d is a regular file or a symlink to one.
func isFile(fsys fs.FS, p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := fs.Stat(fsys, p)
	if err != nil {
		// dangling link
		return false
	}
	return fi.Mode().IsRegular()
}
