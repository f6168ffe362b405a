package menu

import (
	"context"
	"testing"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveToAndLoadFromStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFileStore(t.TempDir())
	c := sampleCatalog(t)

	require.NoError(t, SaveTo(ctx, store, "menus/menu_data.json", c))
	loaded, err := LoadFrom(ctx, store, "menus/menu_data.json")
	require.NoError(t, err)
	assert.Equal(t, c.RestaurantName, loaded.RestaurantName)
	assert.Equal(t, names(c.AllItems()), names(loaded.AllItems()))

	_, err = LoadFrom(ctx, store, "nothing.json")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, storage.WriteFile(ctx, store, "broken.json", []byte("{")))
	_, err = LoadFrom(ctx, store, "broken.json")
	assert.ErrorIs(t, err, models.ErrFormat)
}
