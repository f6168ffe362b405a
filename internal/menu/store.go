package menu

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/menuboard/internal/storage"
)

// SaveTo writes the catalog document to name in store.
func SaveTo(ctx context.Context, store storage.Store, name string, c *Catalog) error {
	var buf bytes.Buffer
	if err := Encode(&buf, c, time.Now()); err != nil {
		return err
	}
	if err := storage.WriteFile(ctx, store, name, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save menu to %s: %w", store.Location(name), err)
	}
	return nil
}

// LoadFrom reads a catalog document from store. A missing document reports models.ErrNotFound.
func LoadFrom(ctx context.Context, store storage.Store, name string) (*Catalog, error) {
	data, err := store.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}
