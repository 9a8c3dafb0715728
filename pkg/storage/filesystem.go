package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotExist is returned by Read when the file has never been written.
var ErrNotExist = fs.ErrNotExist

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save writes the given bytes to the relative path under the base dir. The
// write goes through a temp file and a rename so readers never observe a
// partially written file.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := s.resolve(filename)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("replace %s: %w", filename, err)
	}
	return filename, nil
}

// Read returns the full contents of a stored file. Missing files yield an
// error matching ErrNotExist.
func (s *LocalStorage) Read(filename string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", filename, ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return data, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(filename string) error {
	if err := os.Remove(s.resolve(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

// List returns relative names of regular files under the base dir, sorted.
func (s *LocalStorage) List() ([]string, error) {
	names := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list stored files: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// CleanupOlderThan removes files whose base name starts with prefix and whose
// modification time is older than ttl. It returns the deleted names.
func (s *LocalStorage) CleanupOlderThan(prefix string, ttl time.Duration) ([]string, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	for _, name := range names {
		if !strings.HasPrefix(filepath.Base(name), prefix) {
			continue
		}
		info, err := os.Stat(s.resolve(name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return deleted, fmt.Errorf("cleanup stored files: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := s.Delete(name); err != nil {
			return deleted, fmt.Errorf("cleanup stored files: %w", err)
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LocalStorage) Path(filename string) string {
	return s.resolve(filename)
}

func (s *LocalStorage) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
