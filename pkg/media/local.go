package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalURLPrefix is the prefix of paths recorded for files on local disk.
const LocalURLPrefix = "/uploads/"

// LocalStorage writes attachments into a directory on disk.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir is the directory files are written to.
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	name = filepath.Base(name)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return LocalURLPrefix + name, nil
}

func (s *LocalStorage) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	local, err := s.resolve(storedPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(local)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *LocalStorage) Delete(_ context.Context, storedPath string) error {
	local, err := s.resolve(storedPath)
	if err != nil {
		return err
	}
	if err := os.Remove(local); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *LocalStorage) Manages(storedPath string) bool {
	return strings.HasPrefix(storedPath, LocalURLPrefix) || strings.HasPrefix(storedPath, "uploads/")
}

// resolve maps a recorded path onto the upload dir. Only the base name is
// used so a recorded path can never escape the directory.
func (s *LocalStorage) resolve(storedPath string) (string, error) {
	if !s.Manages(storedPath) {
		return "", ErrUnmanaged
	}
	base := filepath.Base(storedPath)
	if base == "." || base == "/" || base == ".." {
		return "", ErrUnmanaged
	}
	return filepath.Join(s.dir, base), nil
}
