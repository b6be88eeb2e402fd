// Package fileutil handles storage of uploaded source files on local disk.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AllowedUploadTypes lists the mime types accepted for document uploads.
var AllowedUploadTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// IsAllowedUploadType reports whether the declared mime type is accepted.
func IsAllowedUploadType(mimeType string) bool {
	for _, t := range AllowedUploadTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// EnsureDir creates the directory if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// UniqueFilename derives a collision-free filename from the original name.
func UniqueFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	return fmt.Sprintf("%s-%s%s", base, uuid.New().String(), ext)
}

// SaveUpload writes uploaded bytes under dir with a unique filename and
// returns the stored filename and its full path.
func SaveUpload(dir, originalName string, data []byte) (string, string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", "", fmt.Errorf("creating upload directory: %w", err)
	}
	name := UniqueFilename(originalName)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", "", fmt.Errorf("writing upload: %w", err)
	}
	return name, path, nil
}

// DeleteFile removes a stored file. A missing file is not an error.
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FormatSize renders a byte count in human units.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}
