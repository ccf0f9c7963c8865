package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestMove_FinalizesDownload(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, ".dl-1234.tmp")
	dst := filepath.Join(dir, "数学 一年级 上册.pdf")
	writeFile(t, tmp, "%PDF-1.7 new", FileModeSecure)
	writeFile(t, dst, "%PDF-1.7 stale", FileModeDefault)

	require.NoError(t, Move(tmp, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 new", string(got), "existing file is replaced")
	assert.NoFileExists(t, tmp)
}

func TestMove_CreatesDestinationDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, ".dl-1.tmp")
	dst := filepath.Join(dir, "textbooks", "grade7", "Math Book.pdf")
	writeFile(t, src, "%PDF", FileModeDefault)

	require.NoError(t, Move(src, dst))
	assert.FileExists(t, dst)

	info, err := os.Stat(filepath.Dir(dst))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMove_Rejects(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "textbooks")
	require.NoError(t, os.Mkdir(sub, DirModeDefault))

	tests := []struct {
		name    string
		src     string
		dst     string
		wantMsg string
	}{
		{"empty source", "", filepath.Join(dir, "a.pdf"), "cannot be empty"},
		{"empty destination", filepath.Join(dir, "a.pdf"), "", "cannot be empty"},
		{"missing source", filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "a.pdf"), "failed to stat source"},
		{"directory source", sub, filepath.Join(dir, "moved"), "is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Move(tt.src, tt.dst)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
	assert.DirExists(t, sub, "directory source is left in place")
}

func TestIsCrossFilesystemError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"exdev link error", &os.LinkError{Op: "rename", Old: "/tmp/a", New: "/mnt/b", Err: syscall.EXDEV}, true},
		{"other link error", &os.LinkError{Op: "rename", Old: "/tmp/a", New: "/mnt/b", Err: syscall.EACCES}, false},
		{"message only", errors.New("rename: invalid cross-device link"), true},
		{"unrelated", errors.New("permission denied"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCrossFilesystemError(tt.err))
		})
	}
}

// moveFile is the copy fallback taken when rename crosses devices.
func TestMoveFile_CopyFallback(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, ".dl-5678.tmp")
	dst := filepath.Join(dir, "Math Book.pdf")
	writeFile(t, src, "%PDF-1.7 body", FileModeSecure)

	stamp := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, stamp, stamp))
	srcInfo, err := os.Stat(src)
	require.NoError(t, err)

	require.NoError(t, moveFile(src, dst, srcInfo))

	assert.NoFileExists(t, src)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(got))

	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, srcInfo.Mode(), dstInfo.Mode())
	assert.True(t, stamp.Equal(dstInfo.ModTime()))
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	writeFile(t, src, "x", FileModeDefault)
	info, err := os.Stat(src)
	require.NoError(t, err)
	require.NoError(t, os.Remove(src))

	err = moveFile(src, filepath.Join(dir, "b.pdf"), info)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open source file")
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Math Book.pdf")
	dst := filepath.Join(dir, "copy.pdf")
	writeFile(t, src, "%PDF-1.7 copy", FileModeDefault)
	writeFile(t, dst, "older and longer content", FileModeDefault)

	require.NoError(t, Copy(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 copy", string(got), "destination is truncated")
	assert.FileExists(t, src)

	err = Copy(src, filepath.Join(dir, "missing", "copy.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create destination file")
}
