package enum

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func collect(t *testing.T, e *FilesystemEnumerator) []string {
	t.Helper()
	var paths []string
	err := e.Enumerate(context.Background(), func(path string) error {
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)
	return paths
}

func TestFilesystemEnumerator(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "b.bin"), "b")
	writeFile(t, filepath.Join(tmpDir, "a.bin"), "a")
	writeFile(t, filepath.Join(tmpDir, "sub", "c.bin"), "c")

	paths := collect(t, NewFilesystemEnumerator(Config{Root: tmpDir}))

	assert.Equal(t, []string{
		filepath.Join(tmpDir, "a.bin"),
		filepath.Join(tmpDir, "b.bin"),
		filepath.Join(tmpDir, "sub", "c.bin"),
	}, paths)
}

func TestFilesystemEnumerator_Hidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "visible.bin"), "v")
	writeFile(t, filepath.Join(tmpDir, ".hidden.bin"), "h")
	writeFile(t, filepath.Join(tmpDir, ".git", "objects", "pack.bin"), "p")

	paths := collect(t, NewFilesystemEnumerator(Config{Root: tmpDir}))
	assert.Equal(t, []string{filepath.Join(tmpDir, "visible.bin")}, paths)

	paths = collect(t, NewFilesystemEnumerator(Config{Root: tmpDir, IncludeHidden: true}))
	assert.Len(t, paths, 3)
}

func TestFilesystemEnumerator_Gitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gitignore"), "*.log\nbuild/\n")
	writeFile(t, filepath.Join(tmpDir, "keep.bin"), "k")
	writeFile(t, filepath.Join(tmpDir, "debug.log"), "l")
	writeFile(t, filepath.Join(tmpDir, "build", "out.bin"), "o")

	paths := collect(t, NewFilesystemEnumerator(Config{Root: tmpDir}))
	assert.Equal(t, []string{filepath.Join(tmpDir, "keep.bin")}, paths)
}

func TestFilesystemEnumerator_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.bin"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(ctx, func(string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTargets(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "top.bin")
	writeFile(t, file, "t")
	writeFile(t, filepath.Join(tmpDir, "dir", "x.bin"), "x")
	missing := filepath.Join(tmpDir, "missing.bin")
	dir := filepath.Join(tmpDir, "dir")

	var got []string
	yield := func(path string) error {
		got = append(got, path)
		return nil
	}

	require.NoError(t, Targets(context.Background(), []string{file, dir, missing}, true, Config{}, yield))
	assert.Equal(t, []string{file, filepath.Join(dir, "x.bin"), missing}, got)

	got = nil
	require.NoError(t, Targets(context.Background(), []string{dir}, false, Config{}, yield))
	assert.Equal(t, []string{dir}, got, "directories pass through unchanged without recursion")
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".git"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
	assert.False(t, isHidden("file.bin"))
}

func TestFilesystemEnumerator_Symlinks(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(t.TempDir(), "outside.bin")
	writeFile(t, target, "o")
	writeFile(t, filepath.Join(tmpDir, "plain.bin"), "p")
	link := filepath.Join(tmpDir, "link.bin")
	require.NoError(t, os.Symlink(target, link))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "gone.bin"), filepath.Join(tmpDir, "dangling.bin")))

	paths := collect(t, NewFilesystemEnumerator(Config{Root: tmpDir}))
	assert.Equal(t, []string{filepath.Join(tmpDir, "plain.bin")}, paths)

	paths = collect(t, NewFilesystemEnumerator(Config{Root: tmpDir, FollowSymlinks: true}))
	assert.Equal(t, []string{link, filepath.Join(tmpDir, "plain.bin")}, paths)
}

func TestFilesystemEnumerator_WalkError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	err := NewFilesystemEnumerator(Config{Root: missing}).Enumerate(context.Background(), func(string) error { return nil })
	require.Error(t, err)

	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, types.InputOpenError, typed.Kind)
	assert.Equal(t, missing, typed.Value)

	var seen []error
	cfg := Config{Root: missing, OnError: func(err error) error {
		seen = append(seen, err)
		return nil
	}}
	require.NoError(t, NewFilesystemEnumerator(cfg).Enumerate(context.Background(), func(string) error { return nil }))
	require.Len(t, seen, 1)
	assert.True(t, errors.As(seen[0], &typed))
}

func TestFilesystemEnumerator_UnreadableGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".gitignore"), 0755))
	writeFile(t, filepath.Join(tmpDir, "a.bin"), "a")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	paths := collect(t, NewFilesystemEnumerator(Config{Root: tmpDir, Logger: logger}))
	assert.Equal(t, []string{filepath.Join(tmpDir, "a.bin")}, paths)
	assert.Contains(t, logs.String(), "ignoring unreadable .gitignore")
}
