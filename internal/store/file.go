package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rcliao/revisit/internal/model"
)

// FileStore keeps the snapshot as a single JSON document.
type FileStore struct {
	path string
	lock *fileLock
}

// NewFileStore opens the JSON document at path, creating its directory. It
// holds an exclusive advisory lock on path+".lock" until Close.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrIO, err)
	}
	lock, err := acquireLock(path + ".lock")
	if err != nil {
		return nil, err
	}
	return &FileStore{path: path, lock: lock}, nil
}

// Path returns the document path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (map[string]model.ReviewItem, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]model.ReviewItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, s.path, err)
	}
	return DecodeSnapshot(bytes.NewReader(data))
}

// Save writes the snapshot to a temp file in the same directory and renames
// it over the document, so a crash leaves either the old or the new snapshot.
func (s *FileStore) Save(ctx context.Context, items map[string]model.ReviewItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, items); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %v", ErrIO, s.path, err)
	}
	if err := syncDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("%w: sync dir of %s: %v", ErrIO, s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return s.lock.release()
}
