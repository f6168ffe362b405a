package factories

import (
	"fmt"
	"math/rand"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/jaswdr/faker"
)

var dishes = map[models.Category][]string{
	models.CategoryAppetizers:  {"Garlic Bread", "Bruschetta", "Spring Rolls", "Chicken Wings", "Hummus Plate", "Miso Soup", "Calamari"},
	models.CategoryMainCourses: {"Chicken Tikka Masala", "Beef Bourguignon", "Pad Thai", "Margherita Pizza", "Grilled Salmon", "Mushroom Risotto", "BBQ Ribs"},
	models.CategoryDesserts:    {"Tiramisu", "Crème Brûlée", "Apple Pie", "Baklava", "Mango Sticky Rice", "Chocolate Cake"},
	models.CategoryBeverages:   {"Lemonade", "Iced Tea", "Espresso", "Mango Lassi", "Chocolate Shake", "Sparkling Water"},
	models.CategorySpecials:    {"Chef's Tasting Plate", "Catch of the Day", "Seasonal Tart", "Mixed Grill Platter"},
}

var priceRanges = map[models.Category][2]int{
	models.CategoryAppetizers:  {4, 14},
	models.CategoryMainCourses: {12, 38},
	models.CategoryDesserts:    {5, 12},
	models.CategoryBeverages:   {2, 8},
	models.CategorySpecials:    {15, 45},
}

// MenuItemFactory generates plausible demo menus. The same seed always yields the same menu.
type MenuItemFactory struct {
	fake faker.Faker
	// OnItem is called after every generated item.
	OnItem func()
}

func NewMenuItemFactory(seed int64) *MenuItemFactory {
	return &MenuItemFactory{fake: faker.NewWithSeed(rand.NewSource(seed))}
}

func (mf *MenuItemFactory) CreateMenuItem(category models.Category) (*models.MenuItem, error) {
	names := dishes[category]
	name := mf.fake.Food().Vegetable() + " Special"
	if len(names) > 0 {
		name = mf.fake.RandomStringElement(names)
	}
	bounds := priceRanges[category]
	price := mf.fake.Float64(2, bounds[0], bounds[1])
	if price <= 0 {
		price = float64(bounds[1])
	}

	item, err := models.NewMenuItem(
		name,
		price,
		category,
		mf.fake.Lorem().Sentence(8),
		mf.randomDietaryTags(),
		mf.fake.IntBetween(0, 9) > 0,
	)
	if err != nil {
		return nil, err
	}

	reviews := mf.fake.IntBetween(0, 25)
	for i := 0; i < reviews; i++ {
		if err := item.ApplyRating(mf.fake.IntBetween(models.MinRating, models.MaxRating)); err != nil {
			return nil, err
		}
	}
	return item, nil
}

func (mf *MenuItemFactory) randomDietaryTags() []models.DietaryTag {
	count := mf.fake.IntBetween(0, 2)
	tags := make([]models.DietaryTag, 0, count)
	for i := 0; i < count; i++ {
		tags = append(tags, models.DietaryTags[mf.fake.IntBetween(0, len(models.DietaryTags)-1)])
	}
	return tags
}

// CreateCatalog fills every category with perCategory generated items.
func (mf *MenuItemFactory) CreateCatalog(restaurantName string, perCategory int) (*menu.Catalog, error) {
	if restaurantName == "" {
		restaurantName = mf.fake.Company().Name()
	}
	catalog := menu.NewCatalog(restaurantName)
	for _, category := range models.Categories {
		for i := 0; i < perCategory; i++ {
			item, err := mf.CreateMenuItem(category)
			if err != nil {
				return nil, fmt.Errorf("failed to generate %s item: %w", category, err)
			}
			if err := catalog.Insert(item); err != nil {
				return nil, err
			}
			if mf.OnItem != nil {
				mf.OnItem()
			}
		}
	}
	return catalog, nil
}
