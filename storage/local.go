package storage

import (
	"context"
	"os"
	"path/filepath"
)

// LocalStore keeps request-scoped uploads on the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore ensures the upload directory exists and returns the store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte, _ string) error {
	// name 由服务端生成，这里仍然只取基础文件名
	return os.WriteFile(filepath.Join(s.dir, filepath.Base(name)), data, 0644)
}

func (s *LocalStore) Remove(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
