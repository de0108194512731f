package pathsafe_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/pathsafe"
)

func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestResolve(t *testing.T) {
	root := realTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))

	tests := []struct {
		name    string
		path    string
		want    string
		denied  bool
		invalid bool
	}{
		{"root itself", root, root, false, false},
		{"existing child", filepath.Join(root, "sub"), filepath.Join(root, "sub"), false, false},
		{"missing file", filepath.Join(root, "new", "memory.jsonl"), filepath.Join(root, "new", "memory.jsonl"), false, false},
		{"dot dot escape", filepath.Join(root, "sub", "..", "..", "etc"), "", true, false},
		{"sibling prefix", root + "-other/file", "", true, false},
		{"absolute elsewhere", "/etc/passwd", "", true, false},
		{"empty", "", "", false, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := pathsafe.Resolve(root, tt.path)
			switch {
			case tt.denied:
				require.Error(t, err)
				assert.True(t, errs.IsDenied(err))
			case tt.invalid:
				require.Error(t, err)
				assert.True(t, errs.HasCode(err, errs.CodePathInvalid))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	root := realTempDir(t)
	outside := realTempDir(t)
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	_, err := pathsafe.Resolve(root, filepath.Join(root, "link", "memory.jsonl"))
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.CodePathOutsideRoot))
}

func TestResolve_SymlinkedRoot(t *testing.T) {
	target := realTempDir(t)
	alias := filepath.Join(realTempDir(t), "alias")
	require.NoError(t, os.Symlink(target, alias))

	got, err := pathsafe.Resolve(alias, filepath.Join(alias, "memory.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "memory.jsonl"), got)
}

func TestResolve_Home(t *testing.T) {
	home := realTempDir(t)
	t.Setenv("HOME", home)

	got, err := pathsafe.Resolve("~/.recall", "~/.recall/memory.jsonl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".recall", "memory.jsonl"), got)
}

func TestWithin(t *testing.T) {
	assert.True(t, pathsafe.Within("/a/b", "/a/b"))
	assert.True(t, pathsafe.Within("/a/b", "/a/b/c"))
	assert.True(t, pathsafe.Within("/a/b", "/a/b/..c"))
	assert.False(t, pathsafe.Within("/a/b", "/a/bc"))
	assert.False(t, pathsafe.Within("/a/b", "/a"))
}
