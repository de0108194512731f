// Package pathsafe confines user-supplied file paths to an allowed root.
package pathsafe

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/recall/internal/errs"
)

// Resolve returns the absolute, symlink-resolved form of path and fails
// with path.outside_root.denied when it does not lie at or under root. A
// leading ~ expands to the user's home directory in both arguments. path
// need not exist yet; symlinks are resolved on its deepest existing
// ancestor.
func Resolve(root, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errs.New(errs.CodePathInvalid, "invalid path: must not be empty")
	}
	if strings.TrimSpace(root) == "" {
		return "", errs.New(errs.CodePathInvalid, "invalid root: must not be empty")
	}

	absRoot, err := canonical(root)
	if err != nil {
		return "", err
	}
	absPath, err := canonical(path)
	if err != nil {
		return "", err
	}

	if !Within(absRoot, absPath) {
		return "", errs.Errorf(errs.CodePathOutsideRoot, "path %q is outside %q", path, root)
	}
	return absPath, nil
}

// Within reports whether path equals root or is lexically below it. Both
// must be clean absolute paths.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func canonical(p string) (string, error) {
	p, err := expandHome(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errs.Wrapf(err, errs.CodePathInvalid, "resolving %q", p)
	}
	return evalExisting(filepath.Clean(abs))
}

// evalExisting resolves symlinks on the longest existing prefix of p and
// re-attaches the missing tail.
func evalExisting(p string) (string, error) {
	var tail []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			parts := append([]string{resolved}, tail...)
			return filepath.Join(parts...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", errs.Wrapf(err, errs.CodePathInvalid, "resolving %q", p)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p, nil
		}
		tail = append([]string{filepath.Base(cur)}, tail...)
		cur = parent
	}
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrap(err, errs.CodePathInvalid, "resolving home directory")
	}
	return filepath.Join(home, p[1:]), nil
}
