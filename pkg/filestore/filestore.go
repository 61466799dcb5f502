package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Store keeps named blobs as plain files under a single root directory.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "filestore dir")
	}
	return &Store{dir: dir}, nil
}

// path strips any directory components from name so callers cannot
// escape the root.
func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *Store) Save(name string, r io.Reader) error {
	f, err := os.Create(s.path(name))
	if err != nil {
		return errors.Wrap(err, "filestore create")
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return errors.Wrap(err, "filestore write")
	}
	return nil
}

func (s *Store) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, errors.Wrap(err, "filestore read")
	}
	return data, nil
}

func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

func (s *Store) Remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		return errors.Wrap(err, "filestore remove")
	}
	return nil
}
