// Package security guards file access driven by untrusted input, such as
// frame names read from a telemetry log.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveWithinDirectory joins name onto baseDir and returns the resulting
// path if it stays inside baseDir once symlinks are resolved. Absolute names
// and names that climb out with ".." are rejected.
func ResolveWithinDirectory(baseDir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path %q not allowed", name)
	}

	base, err := canonical(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}
	target, err := canonical(filepath.Join(baseDir, name))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", name, err)
	}

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("path is outside %s: %w", baseDir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s escapes %s", name, baseDir)
	}
	return filepath.Join(baseDir, name), nil
}

// canonical returns the absolute, symlink-free form of path. For a path that
// does not exist yet the nearest existing parent is resolved instead.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	parent := abs
	for {
		next := filepath.Dir(parent)
		if next == parent {
			return abs, nil
		}
		parent = next
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rest, err := filepath.Rel(parent, abs)
			if err != nil {
				return "", err
			}
			return filepath.Join(resolved, rest), nil
		}
	}
}
