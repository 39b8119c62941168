// Package images fetches recipe base images, probes their dimensions, computes
// BlurHash placeholders and keeps a local copy for server-side previews.
package images

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotStored is returned by Storage.Get for images with no local copy.
var ErrNotStored = errors.New("image not stored")

const storageDir = "recipe-images"

// Storage keeps downloaded image bytes under {basePath}/recipe-images, one
// file per image ID. Writes go through a temp file and a rename, so readers
// never see a partial image and no locking is needed.
type Storage struct {
	dir string
}

// NewStorage creates the storage directory when missing.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("image storage: base path cannot be empty")
	}
	dir := filepath.Join(basePath, storageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Save stores data as image id, replacing any previous copy.
func (s *Storage) Save(id string, data []byte) error {
	if id == "" {
		return errors.New("save image: empty ID")
	}
	if len(data) == 0 {
		return fmt.Errorf("save image %s: no data", id)
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("save image %s: %w", id, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save image %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save image %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(id)); err != nil {
		return fmt.Errorf("save image %s: %w", id, err)
	}
	return nil
}

// Get returns the stored bytes of image id, or ErrNotStored.
func (s *Storage) Get(id string) ([]byte, error) {
	if id == "" {
		return nil, ErrNotStored
	}
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotStored
	}
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", id, err)
	}
	return data, nil
}

// Path returns the file path of image id.
func (s *Storage) Path(id string) string {
	return filepath.Join(s.dir, id+".img")
}
