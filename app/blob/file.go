package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

var _ Store = (*FileStore)(nil)

// FileStore writes one <id>.xml file per source into dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Put(ctx context.Context, sourceID int64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, strconv.FormatInt(sourceID, 10)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cached feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cached feed: %w", err)
	}

	if err := os.Rename(tmpName, s.path(sourceID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move cached feed into place: %w", err)
	}

	return nil
}

func (s *FileStore) Get(ctx context.Context, sourceID int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(sourceID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached feed: %w", err)
	}
	return data, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(sourceID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(sourceID, 10)+".xml")
}
