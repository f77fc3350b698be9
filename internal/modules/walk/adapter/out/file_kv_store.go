package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	walkout "pacer/internal/modules/walk/port/out"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// FileKVStore keeps one file per key under dir.
type FileKVStore struct {
	dir string
}

func NewFileKVStore(dataDir string) walkout.KVStore {
	return &FileKVStore{dir: filepath.Join(dataDir, ".pacer", "kv")}
}

func (s *FileKVStore) Get(_ context.Context, key string) (string, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(payload), true, nil
}

func (s *FileKVStore) Set(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create kv dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (s *FileKVStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
