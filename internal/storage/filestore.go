package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore persists uploaded documents under a single directory with
// collision-free names, so concurrent uploads never race on the same path.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Save streams r to a new uniquely named file and returns its path.
// The original filename contributes only its extension.
func (s *FileStore) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".pdf"
	}
	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	written, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// half-written file is useless, clean it up
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.Info("storage.save.ok", "path", path, "bytes", written)
	return path, nil
}

// Remove deletes a stored file. A missing file is not an error: cleanup
// paths may race with retention jobs.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("storage.remove.failed", "path", path, "error", err)
		return err
	}
	return nil
}
