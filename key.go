package gitkv

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// normalizeKey strips leading separators and cleans key into slash form. It
// returns false for keys that cannot name a file inside the repository: the
// root itself, paths that climb above it, and paths into git's metadata.
func normalizeKey(key string) (string, bool) {
	key = strings.TrimLeft(key, "/"+string(filepath.Separator))
	key = path.Clean(filepath.ToSlash(key))

	switch {
	case key == "." || key == "":
		return "", false
	case key == ".." || strings.HasPrefix(key, "../"):
		return "", false
	case key == ".git" || strings.HasPrefix(key, ".git/"):
		return "", false
	}
	return key, true
}

// contains reports whether p is root or lies beneath it. Both paths must be
// absolute and clean.
func contains(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveRead returns the path of an existing regular file for key. Keys that
// are invalid, missing, not regular files, or that reach outside root through
// a symlink resolve to false.
func resolveRead(root, key string) (string, bool) {
	k, ok := normalizeKey(key)
	if !ok {
		return "", false
	}

	p := filepath.Join(root, filepath.FromSlash(k))
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(p)
	if err != nil || !contains(root, resolved) {
		return "", false
	}
	return p, true
}

// checkWrite reports whether writing k, a normalized key, stays inside root.
// The deepest existing component of the path is resolved through symlinks and
// must remain under root. A dangling symlink anywhere on the path fails.
func checkWrite(root, k string) bool {
	p := filepath.Join(root, filepath.FromSlash(k))
	if !contains(root, p) {
		return false
	}

	for cur := p; ; {
		if _, err := os.Lstat(cur); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return false
			}
			parent := filepath.Dir(cur)
			if parent == cur {
				return false
			}
			cur = parent
			continue
		}

		resolved, err := filepath.EvalSymlinks(cur)
		if err != nil {
			return false
		}
		return contains(root, resolved)
	}
}
