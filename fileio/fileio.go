// Package fileio contains the small filesystem helpers shared by dataset discovery,
// the CLI and the camera components.
package fileio

import (
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a file, directory or named dataset does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotADirectory is returned when a path exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory")
)

// DefaultImageExtensions are the extensions ListImages matches when none are given.
var DefaultImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// expandHome replaces a leading ~ or ~user with that user's home directory. Unknown
// users leave p untouched.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	name, rest, _ := strings.Cut(p[1:], string(filepath.Separator))
	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return p
		}
		home = u.HomeDir
	}
	return filepath.Join(home, rest)
}

// ResolvePath expands a leading ~ or ~user and returns the absolute, symlink-resolved
// form of p. Components of p that do not exist yet are kept as-is.
func ResolvePath(p string) string {
	p = expandHome(p)
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}

	// walk up until something exists, resolve that, then re-attach the tail
	existing, tail := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(resolved, tail)
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs
		}
		tail = filepath.Join(filepath.Base(existing), tail)
		existing = parent
	}
}

// SplitExt splits a file name into its stem and extension. A leading dot does not
// start an extension and a trailing lone dot is not one either.
func SplitExt(name string) (string, string) {
	name = filepath.Base(name)
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}

// IsRegularFile reports whether path is a regular file, following symlinks.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Exists reports whether path exists right now.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListImages recursively lists the files under root whose extension, compared
// case-insensitively, is one of extensions (DefaultImageExtensions when empty).
// The result is sorted.
func ListImages(root string, extensions ...string) ([]string, error) {
	dir := ResolvePath(root)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "directory does not exist: %s", dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotADirectory, "path is not a directory: %s", dir)
	}

	if len(extensions) == 0 {
		extensions = DefaultImageExtensions
	}
	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var images []string
	err = WalkFiles(dir, func(path string) {
		if _, ext := SplitExt(path); wanted[strings.ToLower(ext)] {
			images = append(images, path)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(images)
	return images, nil
}

// WalkFiles calls fn for every regular file below root, root itself excluded.
// Symlinks to regular files are reported; symlinked directories are not descended.
func WalkFiles(root string, fn func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root || d.IsDir() {
			return nil
		}
		if d.Type().IsRegular() || (d.Type()&fs.ModeSymlink != 0 && IsRegularFile(path)) {
			fn(path)
		}
		return nil
	})
}

// LoadImageBytes returns the raw, undecoded contents of the file at path.
func LoadImageBytes(path string) ([]byte, error) {
	p := ResolvePath(path)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "image file not found: %s", p)
		}
		return nil, err
	}
	return data, nil
}
