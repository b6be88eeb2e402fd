package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedUploadType(t *testing.T) {
	assert.True(t, IsAllowedUploadType("application/pdf"))
	assert.True(t, IsAllowedUploadType("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.False(t, IsAllowedUploadType("text/plain"))
	assert.False(t, IsAllowedUploadType("image/png"))
	assert.False(t, IsAllowedUploadType(""))
}

func TestUniqueFilenameKeepsBaseAndExt(t *testing.T) {
	name := UniqueFilename("lecture notes.pdf")
	assert.True(t, strings.HasPrefix(name, "lecture notes-"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	// Two calls never collide.
	assert.NotEqual(t, UniqueFilename("a.pdf"), UniqueFilename("a.pdf"))
}

func TestSaveUploadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	data := []byte("file bytes")

	name, path, err := SaveUpload(dir, "doc.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, name, filepath.Base(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDeleteFileMissingIsNotError(t *testing.T) {
	require.NoError(t, DeleteFile(filepath.Join(t.TempDir(), "never-existed.pdf")))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.00 KB", FormatSize(1024))
	assert.Equal(t, "1.50 MB", FormatSize(1536*1024))
}
