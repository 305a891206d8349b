package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"parts.dev/tagger/pos"
)

// FileStore keeps one JSON file per model in a directory.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) Save(_ context.Context, name string, model *pos.Model) error {
	if err := validateName(name); err != nil {
		return err
	}
	b, err := encode(model)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	// write then rename so readers never see a partial model
	tmp, err := os.CreateTemp(s.Dir, objectName(name)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(name))
}

func (s *FileStore) Load(_ context.Context, name string) (*pos.Model, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return decode(name, b)
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, objectName(name))
}
