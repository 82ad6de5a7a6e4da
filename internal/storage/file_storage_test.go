package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiskStorage(t *testing.T) (FileStorage, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewLocalStorage(dir)
	require.NoError(t, err)
	return fs, dir
}

func TestResolve_RejectsEscapes(t *testing.T) {
	fs, _ := newDiskStorage(t)
	ds := fs.(*diskStorage)

	tests := []struct {
		name string
		path string
	}{
		{"simple traversal", "../etc/passwd"},
		{"double traversal", "../../etc/passwd"},
		{"traversal through subdir", "subdir/../../../etc/passwd"},
		{"windows style traversal", "..\\..\\windows\\system32"},
		{"windows absolute", "C:\\Windows\\System32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ds.resolve(tt.path)
			assert.ErrorIs(t, err, ErrPathTraversal)
		})
	}
}

func TestResolve_AcceptsPathsUnderRoot(t *testing.T) {
	fs, dir := newDiskStorage(t)
	ds := fs.(*diskStorage)
	absBase, err := filepath.Abs(dir)
	require.NoError(t, err)

	for _, path := range []string{"file.txt", "subdir/file.txt", "a/b/c/file.txt", "ab/ab123456-7890.pdf"} {
		t.Run(path, func(t *testing.T) {
			result, err := ds.resolve(path)
			assert.NoError(t, err)
			assert.True(t, strings.HasPrefix(result, absBase))
		})
	}
}

func TestGetAndDelete_RejectTraversal(t *testing.T) {
	fs, _ := newDiskStorage(t)

	_, err := fs.Get("../../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)

	err = fs.Delete("../../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestGet_FileNotFound(t *testing.T) {
	fs, _ := newDiskStorage(t)

	_, err := fs.Get("nonexistent.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{"executable blocked", "malware.exe", 1024, ErrBlockedExt},
		{"uppercase executable blocked", "MALWARE.EXE", 1024, ErrBlockedExt},
		{"shell script blocked", "script.sh", 1024, ErrBlockedExt},
		{"powershell blocked", "script.ps1", 1024, ErrBlockedExt},
		{"pdf allowed", "document.pdf", 1024, nil},
		{"image allowed", "photo.jpg", 1024, nil},
		{"at size limit", "document.pdf", MaxFileSize, nil},
		{"over size limit", "document.pdf", MaxFileSize + 1, ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.filename, tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveGetDelete_RoundTrip(t *testing.T) {
	fs, _ := newDiskStorage(t)

	path, err := fs.Save("invoice.pdf", strings.NewReader("attachment bytes"))
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Equal(t, ".pdf", filepath.Ext(path), "stored name keeps the original extension")
	assert.Equal(t, path[:2], filepath.Dir(path), "blobs shard into two-character subdirectories")

	reader, err := fs.Get(path)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, "attachment bytes", string(content))

	require.NoError(t, fs.Delete(path))
	_, err = fs.Get(path)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestSave_UniqueNamesForSameFilename(t *testing.T) {
	fs, _ := newDiskStorage(t)

	first, err := fs.Save("report.pdf", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := fs.Save("report.pdf", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDelete_MissingFileIsNotAnError(t *testing.T) {
	fs, _ := newDiskStorage(t)

	assert.NoError(t, fs.Delete("nonexistent.txt"))
}

func TestNewLocalStorage_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs", "nested")

	_, err := NewLocalStorage(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
