package menu

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog("Chez Test")
	c.Currency = "€"
	wings, err := c.AddItem("Wings", 8.5, models.CategoryAppetizers, "hot wings", []models.DietaryTag{models.TagSpicy}, true)
	require.NoError(t, err)
	rate(t, wings, 5, 4)
	_, err = c.AddItem("Salad", 7, models.CategoryAppetizers, "", []models.DietaryTag{models.TagVegan, models.TagGlutenFree}, false)
	require.NoError(t, err)
	_, err = c.AddItem("Lemonade", 3.25, models.CategoryBeverages, "fresh", nil, true)
	require.NoError(t, err)
	return c
}

func roundTrip(t *testing.T, c *Catalog) *Catalog {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, c, time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)))
	loaded, err := Decode(&buf)
	require.NoError(t, err)
	return loaded
}

func TestRoundTrip(t *testing.T) {
	for name, c := range map[string]*Catalog{
		"populated": sampleCatalog(t),
		"empty":     NewCatalog("Nothing Yet"),
	} {
		t.Run(name, func(t *testing.T) {
			loaded := roundTrip(t, c)
			assert.Equal(t, c.RestaurantName, loaded.RestaurantName)
			assert.Equal(t, c.Currency, loaded.Currency)
			for _, cat := range models.Categories {
				assert.Equal(t, c.Items(cat), loaded.Items(cat), cat)
			}
		})
	}
}

func TestSaveWritesEveryCategory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewCatalog("Empty"), time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)))

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "2026-10-15T09:30:00Z", raw["last_updated"])
	assert.Equal(t, "$", raw["currency"])

	items := raw["menu_items"].(map[string]interface{})
	require.Len(t, items, len(models.Categories))
	for _, cat := range models.Categories {
		assert.Equal(t, []interface{}{}, items[string(cat)], cat)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults and unknown keys", func(t *testing.T) {
		doc := `{
			"restaurant_name": "Old Menu",
			"exported_at": "2024-01-01T00:00:00",
			"menu_items": {
				"Desserts": [{"name": "Pie", "price": 5}],
				"Sides": [{"name": "Fries", "price": 3}]
			}
		}`
		c, err := Decode(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, "Old Menu", c.RestaurantName)
		assert.Equal(t, "$", c.Currency)
		assert.Equal(t, []string{"Pie"}, names(c.AllItems()))

		pie := c.Items(models.CategoryDesserts)[0]
		assert.True(t, pie.IsAvailable)
		assert.Empty(t, pie.DietaryTags)
		assert.Zero(t, pie.ReviewCount)
	})

	t.Run("bucket decides the category", func(t *testing.T) {
		doc := `{"restaurant_name": "R", "menu_items": {"Specials": [{"name": "Pie", "price": 5, "category": "Desserts"}]}}`
		c, err := Decode(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, c.Items(models.CategorySpecials), 1)
		assert.Equal(t, models.CategorySpecials, c.Items(models.CategorySpecials)[0].Category)
	})

	failures := map[string]string{
		"missing name":       `{"menu_items": {}}`,
		"missing items":      `{"restaurant_name": "R"}`,
		"name not a string":  `{"restaurant_name": 4, "menu_items": {}}`,
		"items not a map":    `{"restaurant_name": "R", "menu_items": []}`,
		"bucket not a list":  `{"restaurant_name": "R", "menu_items": {"Desserts": {}}}`,
		"record not an obj":  `{"restaurant_name": "R", "menu_items": {"Desserts": [1]}}`,
		"bad record":         `{"restaurant_name": "R", "menu_items": {"Desserts": [{"name": "Pie", "price": -1}]}}`,
		"not json":           `restaurant_name: R`,
		"null document":      `null`,
		"array document":     `[]`,
	}
	for name, doc := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrFormat)
		})
	}
}

func TestFailedLoadKeepsSessionCatalog(t *testing.T) {
	s := NewSession(sampleCatalog(t), nil)
	before := s.Catalog

	_, err := Decode(strings.NewReader(`{"menu_items": {}}`))
	require.Error(t, err)
	assert.Same(t, before, s.Catalog)
	assert.Equal(t, 3, s.Catalog.Len())
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu_data.json")
	c := sampleCatalog(t)
	require.NoError(t, SaveFile(path, c))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, names(c.AllItems()), names(loaded.AllItems()))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
