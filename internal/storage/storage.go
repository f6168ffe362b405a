package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrisdamba/menuboard/internal/models"
)

// Writer buffers or streams one object. The object is complete once Close returns nil.
type Writer interface {
	Write(data []byte) (int, error)
	Close() error
}

// Store holds saved menu documents and exported files, locally or in a bucket.
type Store interface {
	NewWriter(ctx context.Context, name string) (Writer, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
	Location(name string) string
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg models.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Folder), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// WriteFile stores data under name in one call.
func WriteFile(ctx context.Context, s Store, name string, data []byte) error {
	w, err := s.NewWriter(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", s.Location(name), err)
	}
	return w.Close()
}

type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	if root == "" {
		root = "."
	}
	return &FileStore{root: root}
}

func (f *FileStore) Location(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.root, name)
}

func (f *FileStore) NewWriter(_ context.Context, name string) (Writer, error) {
	path := f.Location(name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}

func (f *FileStore) ReadFile(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(f.Location(name))
	if os.IsNotExist(err) {
		return nil, &models.NotFoundError{What: "file " + f.Location(name)}
	}
	return data, err
}
