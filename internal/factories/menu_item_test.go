package factories

import (
	"testing"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCatalog(t *testing.T) {
	f := NewMenuItemFactory(42)
	generated := 0
	f.OnItem = func() { generated++ }

	catalog, err := f.CreateCatalog("Demo Diner", 3)
	require.NoError(t, err)
	assert.Equal(t, "Demo Diner", catalog.RestaurantName)
	assert.Equal(t, 3*len(models.Categories), catalog.Len())
	assert.Equal(t, catalog.Len(), generated)

	for _, cat := range models.Categories {
		for _, item := range catalog.Items(cat) {
			assert.Equal(t, cat, item.Category)
			assert.Greater(t, item.Price, 0.0)
			if item.ReviewCount == 0 {
				assert.Zero(t, item.Rating)
			} else {
				assert.GreaterOrEqual(t, item.Rating, float64(models.MinRating))
				assert.LessOrEqual(t, item.Rating, float64(models.MaxRating))
			}
		}
	}
}

func TestSameSeedSameMenu(t *testing.T) {
	first, err := NewMenuItemFactory(7).CreateCatalog("A", 2)
	require.NoError(t, err)
	second, err := NewMenuItemFactory(7).CreateCatalog("A", 2)
	require.NoError(t, err)

	for _, cat := range models.Categories {
		assert.Equal(t, first.Items(cat), second.Items(cat))
	}
}

func TestCreateCatalogPicksNameWhenBlank(t *testing.T) {
	catalog, err := NewMenuItemFactory(1).CreateCatalog("", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.RestaurantName)
	assert.True(t, catalog.IsEmpty())
}
