package menu

import (
	"fmt"
	"strings"

	"github.com/chrisdamba/menuboard/internal/models"
)

// Entry pairs an item with the category bucket it lives in.
type Entry struct {
	Item     *models.MenuItem
	Category models.Category
}

type Field string

const (
	FieldPrice        Field = "price"
	FieldDescription  Field = "description"
	FieldAvailability Field = "availability"
	FieldDietaryTags  Field = "dietary_tags"
)

// Catalog owns the category buckets of a restaurant menu. All five buckets always exist.
type Catalog struct {
	RestaurantName string
	Currency       string
	items          map[models.Category][]*models.MenuItem
}

func NewCatalog(restaurantName string) *Catalog {
	if strings.TrimSpace(restaurantName) == "" {
		restaurantName = models.DefaultRestaurantName
	}
	c := &Catalog{
		RestaurantName: restaurantName,
		Currency:       models.DefaultCurrency,
		items:          make(map[models.Category][]*models.MenuItem, len(models.Categories)),
	}
	for _, cat := range models.Categories {
		c.items[cat] = []*models.MenuItem{}
	}
	return c
}

func (c *Catalog) AddItem(name string, price float64, category models.Category, description string, tags []models.DietaryTag, isAvailable bool) (*models.MenuItem, error) {
	item, err := models.NewMenuItem(name, price, category, description, tags, isAvailable)
	if err != nil {
		return nil, err
	}
	c.items[category] = append(c.items[category], item)
	return item, nil
}

// Insert places an already built item at the end of its bucket.
func (c *Catalog) Insert(item *models.MenuItem) error {
	if item == nil {
		return &models.NotFoundError{What: "menu item"}
	}
	if !item.Category.Valid() {
		return &models.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", item.Category)}
	}
	if c.Contains(item) {
		return &models.ValidationError{Field: "item", Reason: item.Name + " is already on the menu"}
	}
	c.items[item.Category] = append(c.items[item.Category], item)
	return nil
}

func (c *Catalog) indexOf(item *models.MenuItem) int {
	if item == nil {
		return -1
	}
	for i, candidate := range c.items[item.Category] {
		if candidate == item {
			return i
		}
	}
	return -1
}

func (c *Catalog) Contains(item *models.MenuItem) bool {
	return c.indexOf(item) >= 0
}

func (c *Catalog) RemoveItem(item *models.MenuItem) error {
	i := c.indexOf(item)
	if i < 0 {
		return notPresent(item)
	}
	bucket := c.items[item.Category]
	c.items[item.Category] = append(bucket[:i:i], bucket[i+1:]...)
	return nil
}

func notPresent(item *models.MenuItem) error {
	if item == nil {
		return &models.NotFoundError{What: "menu item"}
	}
	return &models.NotFoundError{What: fmt.Sprintf("menu item %q in %s", item.Name, item.Category)}
}

func (c *Catalog) UpdatePrice(item *models.MenuItem, price float64) error {
	if !c.Contains(item) {
		return notPresent(item)
	}
	if err := models.ValidatePrice(price); err != nil {
		return err
	}
	item.Price = price
	return nil
}

func (c *Catalog) UpdateDescription(item *models.MenuItem, description string) error {
	if !c.Contains(item) {
		return notPresent(item)
	}
	item.Description = description
	return nil
}

func (c *Catalog) SetAvailability(item *models.MenuItem, available bool) error {
	if !c.Contains(item) {
		return notPresent(item)
	}
	item.IsAvailable = available
	return nil
}

func (c *Catalog) ToggleAvailability(item *models.MenuItem) (bool, error) {
	if err := c.SetAvailability(item, item != nil && !item.IsAvailable); err != nil {
		return false, err
	}
	return item.IsAvailable, nil
}

// UpdateDietaryTags replaces the item's tags wholesale; unknown tags are dropped.
func (c *Catalog) UpdateDietaryTags(item *models.MenuItem, tags []models.DietaryTag) error {
	if !c.Contains(item) {
		return notPresent(item)
	}
	item.DietaryTags = models.NormalizeDietaryTags(tags)
	return nil
}

// UpdateField dispatches a loosely typed update from a presentation layer.
func (c *Catalog) UpdateField(item *models.MenuItem, field Field, value interface{}) error {
	switch field {
	case FieldPrice:
		switch v := value.(type) {
		case float64:
			return c.UpdatePrice(item, v)
		case int:
			return c.UpdatePrice(item, float64(v))
		}
	case FieldDescription:
		if v, ok := value.(string); ok {
			return c.UpdateDescription(item, v)
		}
	case FieldAvailability:
		if v, ok := value.(bool); ok {
			return c.SetAvailability(item, v)
		}
	case FieldDietaryTags:
		switch v := value.(type) {
		case []models.DietaryTag:
			return c.UpdateDietaryTags(item, v)
		case []string:
			return c.UpdateDietaryTags(item, models.TagsFromStrings(v))
		case []interface{}:
			values := make([]string, 0, len(v))
			for _, raw := range v {
				if s, ok := raw.(string); ok {
					values = append(values, s)
				}
			}
			return c.UpdateDietaryTags(item, models.TagsFromStrings(values))
		}
	default:
		return &models.ValidationError{Field: "field", Reason: fmt.Sprintf("%q cannot be updated", field)}
	}
	return &models.ValidationError{Field: string(field), Reason: fmt.Sprintf("unexpected value type %T", value)}
}

// Items returns a copy of one category bucket in display order.
func (c *Catalog) Items(category models.Category) []*models.MenuItem {
	return append([]*models.MenuItem(nil), c.items[category]...)
}

func (c *Catalog) collect(keep func(*models.MenuItem) bool) []Entry {
	var entries []Entry
	for _, cat := range models.Categories {
		for _, item := range c.items[cat] {
			if keep(item) {
				entries = append(entries, Entry{Item: item, Category: cat})
			}
		}
	}
	return entries
}

// AllItems flattens the catalog in category-then-insertion order. Numbered selection
// menus index into exactly this ordering.
func (c *Catalog) AllItems() []Entry {
	return c.collect(func(*models.MenuItem) bool { return true })
}

func (c *Catalog) ListAvailable() []Entry {
	return c.collect(func(item *models.MenuItem) bool { return item.IsAvailable })
}

func (c *Catalog) Search(term string) []Entry {
	return c.collect(func(item *models.MenuItem) bool { return item.Matches(term) })
}

// Filter narrows the catalog the way the dashboard view does. Zero values disable a criterion.
type Filter struct {
	Category models.Category
	MaxPrice float64
	AnyTags  []models.DietaryTag
}

func (c *Catalog) Filter(f Filter) []Entry {
	tags := models.NormalizeDietaryTags(f.AnyTags)
	return c.collect(func(item *models.MenuItem) bool {
		if f.Category != "" && item.Category != f.Category {
			return false
		}
		if f.MaxPrice > 0 && item.Price > f.MaxPrice {
			return false
		}
		if len(tags) == 0 {
			return true
		}
		for _, t := range tags {
			if item.HasTag(t) {
				return true
			}
		}
		return false
	})
}

func (c *Catalog) Len() int {
	n := 0
	for _, bucket := range c.items {
		n += len(bucket)
	}
	return n
}

func (c *Catalog) IsEmpty() bool { return c.Len() == 0 }

func (c *Catalog) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &models.ValidationError{Field: "restaurant_name", Reason: "must not be empty"}
	}
	c.RestaurantName = name
	return nil
}

// Select resolves a 1-based position. Zero or out of range reports false.
func Select(entries []Entry, position int) (Entry, bool) {
	if position < 1 || position > len(entries) {
		return Entry{}, false
	}
	return entries[position-1], true
}
