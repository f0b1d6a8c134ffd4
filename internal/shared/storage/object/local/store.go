package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pitchdeck-backend/internal/shared/storage/object"
	"pitchdeck-backend/internal/shared/util"
)

// Store keeps uploads on the local filesystem under baseDir.
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir. Directories are created on first save.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes r to <baseDir>/<namespace>/<fileName>. The file appears only
// once fully written.
func (s *Store) Save(ctx context.Context, namespace string, fileName string, r io.Reader) (string, int64, string, error) {
	key, err := util.ObjectKey(namespace, fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("object key: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var head [512]byte
	n, readErr := io.ReadFull(r, head[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		tmp.Close()
		return "", 0, "", fmt.Errorf("read upload: %w", readErr)
	}
	if _, err := tmp.Write(head[:n]); err != nil {
		tmp.Close()
		return "", 0, "", fmt.Errorf("write upload: %w", err)
	}
	rest, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", 0, "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", 0, "", fmt.Errorf("publish upload: %w", err)
	}

	return key, int64(n) + rest, util.ContentType(fileName, head[:n]), nil
}

// Open opens a stored upload for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Delete removes a stored upload. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storageKey))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", storageKey)
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
