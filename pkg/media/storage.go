// Package media stores note attachments and prepares them for storage:
// decoding base64 payloads, downscaling oversized images and running optional
// OCR.
package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a stored object no longer exists.
	ErrNotFound = errors.New("stored file not found")
	// ErrUnmanaged is returned for paths that do not belong to the storage
	// backend, such as external URLs recorded with file_path.
	ErrUnmanaged = errors.New("path is not managed by this storage")
)

// Storage persists attachment bytes and hands back the path recorded in the
// media table.
type Storage interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storedPath string) error
	// Manages reports whether storedPath was produced by this backend.
	Manages(storedPath string) bool
}

// RandomName returns a fresh object name with ext (no leading dot) appended.
func RandomName(ext string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// extOf returns the lower-cased extension of p without the dot.
func extOf(p string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
}
