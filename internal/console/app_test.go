package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func runApp(t *testing.T, session *menu.Session, store storage.Store, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := New(session, store, "menu_data.json", script(lines...), &out)
	require.NoError(t, app.Run(context.Background()))
	return out.String()
}

func TestConsoleSession(t *testing.T) {
	store := storage.NewFileStore(t.TempDir())
	session := menu.NewSession(nil, nil)

	out := runApp(t, session, store,
		"Test Bistro",
		"1", "2", "Burger", "abc", "9.50", "Juicy", "6",
		"4",
		"6", "1", "2", "done", "y", "", "", "y", "4",
		"7",
		"5", "spicy",
		"8",
		"0", "n",
	)

	assert.Contains(t, out, "'Burger' added to Main Courses successfully!")
	assert.Contains(t, out, "please enter a valid number")
	assert.Contains(t, out, "[✓] Burger (Spicy) - $9.50")
	assert.Contains(t, out, "All prices in $")
	assert.Contains(t, out, "TOTAL: $19.00")
	assert.Contains(t, out, "Customer: Guest")
	assert.Contains(t, out, "Thank you for rating Burger!")
	assert.Contains(t, out, "Revenue: $19.00")
	assert.Contains(t, out, "Burger: 2 orders")
	assert.Contains(t, out, "Found 1 item(s)")
	assert.Contains(t, out, "Thank you for using Test Bistro Menu System!")

	c := session.Catalog
	assert.Equal(t, "Test Bistro", c.RestaurantName)
	burger := c.Items(models.CategoryMainCourses)[0]
	assert.Equal(t, 4.0, burger.Rating)
	assert.Equal(t, 1, burger.ReviewCount)
	assert.Len(t, session.Orders.History(), 1)

	saved, err := menu.LoadFrom(context.Background(), store, "menu_data.json")
	require.NoError(t, err)
	assert.Equal(t, "Test Bistro", saved.RestaurantName)
	assert.Equal(t, 1, saved.Len())
}

func TestConsoleRemoveAndUpdate(t *testing.T) {
	session := menu.NewSession(menu.NewCatalog("Diner"), nil)
	soup, err := session.Catalog.AddItem("Soup", 4, models.CategoryAppetizers, "", nil, true)
	require.NoError(t, err)
	_, err = session.Catalog.AddItem("Cake", 6, models.CategoryDesserts, "", nil, true)
	require.NoError(t, err)

	out := runApp(t, session, storage.NewFileStore(t.TempDir()),
		"",
		"3", "1", "1", "5.25",
		"3", "1", "2", "  tomato ",
		"3", "1", "3",
		"3", "1", "4", "1,2,9",
		"3", "1", "1", "-2",
		"2", "7", "2",
		"2", "0",
		"0", "n",
	)

	assert.Equal(t, 5.25, soup.Price)
	assert.Equal(t, "  tomato ", soup.Description)
	assert.False(t, soup.IsAvailable)
	assert.Equal(t, []models.DietaryTag{models.TagVegetarian, models.TagVegan}, soup.DietaryTags)
	assert.Contains(t, out, "Item is now unavailable!")
	assert.Contains(t, out, "invalid price")
	assert.Contains(t, out, "invalid choice, please try again")
	assert.Contains(t, out, "'Cake' removed from menu.")
	assert.Equal(t, []string{"Soup"}, itemNames(session.Catalog))
}

func itemNames(c *menu.Catalog) []string {
	var names []string
	for _, e := range c.AllItems() {
		names = append(names, e.Item.Name)
	}
	return names
}

func TestConsoleLoadsExistingData(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFileStore(t.TempDir())
	saved := menu.NewCatalog("Saved Place")
	_, err := saved.AddItem("Pie", 5, models.CategoryDesserts, "", nil, true)
	require.NoError(t, err)
	require.NoError(t, menu.SaveTo(ctx, store, "menu_data.json", saved))
	require.NoError(t, storage.WriteFile(ctx, store, "broken.json", []byte(`{"menu_items": {}}`)))

	session := menu.NewSession(nil, nil)
	out := runApp(t, session, store,
		"",
		"y",
		"9", "broken.json",
		"9", "missing.json",
		"0", "n",
	)

	assert.Contains(t, out, "Found existing menu data. Load it?")
	assert.Contains(t, out, "Menu loaded from")
	assert.Contains(t, out, "malformed menu document")
	assert.Contains(t, out, "No saved menu found at")
	assert.Equal(t, "Saved Place", session.Catalog.RestaurantName)
	assert.Equal(t, []string{"Pie"}, itemNames(session.Catalog))
}

func TestConsoleEndOfInput(t *testing.T) {
	session := menu.NewSession(nil, nil)
	out := runApp(t, session, storage.NewFileStore(t.TempDir()), "Cafe", "6")
	assert.Contains(t, out, "No items available for ordering.")
	assert.Equal(t, "Cafe", session.Catalog.RestaurantName)
}

func TestTakeOrderCancelledLeavesNoTrace(t *testing.T) {
	session := menu.NewSession(nil, nil)
	_, err := session.Catalog.AddItem("Tea", 2, models.CategoryBeverages, "", nil, true)
	require.NoError(t, err)

	runApp(t, session, storage.NewFileStore(t.TempDir()),
		"",
		"6", "1", "0", "1", "x", "1", "3", "done", "n",
		"0", "n",
	)
	assert.Empty(t, session.Orders.History())
	assert.True(t, session.Orders.DailyRevenue().IsZero())
}

func TestDescribeItem(t *testing.T) {
	item, err := models.NewMenuItem("Wings", 8.5, models.CategoryAppetizers, "Crispy", []models.DietaryTag{models.TagSpicy}, false)
	require.NoError(t, err)
	require.NoError(t, item.ApplyRating(5))
	require.NoError(t, item.ApplyRating(4))

	assert.Equal(t,
		"  [✗] Wings (Spicy) - €8.50\n      Crispy\n      Rating: ⭐⭐⭐⭐ (4.5/5 from 2 reviews)",
		describeItem(item, "€"))
	assert.Equal(t, "No ratings", stars(0))
}

func TestConsolePricesInMenuCurrency(t *testing.T) {
	catalog := menu.NewCatalog("Brasserie")
	catalog.Currency = "€"
	session := menu.NewSession(catalog, nil)
	soup, err := session.Catalog.AddItem("Soup", 4, models.CategoryAppetizers, "", nil, true)
	require.NoError(t, err)

	out := runApp(t, session, storage.NewFileStore(t.TempDir()),
		"",
		"3", "1", "1", "€5.25",
		"1", "2", "Crepe", "€6.5", "", "",
		"0", "n",
	)

	assert.Equal(t, 5.25, soup.Price)
	assert.NotContains(t, out, "please enter a valid number")
	assert.Contains(t, out, "'Crepe' added to Main Courses successfully!")
	crepe := session.Catalog.Items(models.CategoryMainCourses)[0]
	assert.Equal(t, 6.5, crepe.Price)
}
