package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mangadock/mangadock/internal/model"
)

const recordExt = ".json"

// FileStore keeps one pretty-printed JSON file per username under a root directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the root directory if needed and returns a FileStore.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage root.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(username string) (string, error) {
	if err := model.ValidateUsername(username); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, username+recordExt), nil
}

// Load reads the record for username. Missing, unreadable and corrupt
// files all yield an empty record.
func (s *FileStore) Load(ctx context.Context, username string) (*model.UserRecord, error) {
	path, err := s.path(username)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.NewUserRecord(), nil
	}
	return decodeRecord(data), nil
}

// Save atomically replaces the record file via a temp file and rename.
func (s *FileStore) Save(ctx context.Context, username string, record *model.UserRecord) error {
	path, err := s.path(username)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrStoreIO, err)
	}

	if err := writeFileAtomic(s.dir, path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	return nil
}

// Create writes an empty record, failing with ErrRecordExists if one is present.
func (s *FileStore) Create(ctx context.Context, username string) error {
	path, err := s.path(username)
	if err != nil {
		return err
	}

	data, err := encodeRecord(model.NewUserRecord())
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrStoreIO, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrRecordExists
		}
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	return nil
}

// ListUsernames returns the names of all *.json files, sorted.
func (s *FileStore) ListUsernames(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreIO, err)
	}

	users := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		users = append(users, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(users)
	return users, nil
}

// Ping checks that the storage root is still a reachable directory.
func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}

// writeFileAtomic writes data to a temp file in dir and renames it over path,
// so readers see either the old or the new content.
func writeFileAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
