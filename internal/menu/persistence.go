package menu

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chrisdamba/menuboard/internal/models"
)

// Document is the persisted form of a catalog.
type Document struct {
	RestaurantName string                     `json:"restaurant_name"`
	Currency       string                     `json:"currency"`
	LastUpdated    time.Time                  `json:"last_updated"`
	MenuItems      map[string][]models.Record `json:"menu_items"`
}

func Save(c *Catalog, now time.Time) *Document {
	doc := &Document{
		RestaurantName: c.RestaurantName,
		Currency:       c.Currency,
		LastUpdated:    now,
		MenuItems:      make(map[string][]models.Record, len(models.Categories)),
	}
	for _, cat := range models.Categories {
		records := make([]models.Record, 0, len(c.items[cat]))
		for _, item := range c.items[cat] {
			records = append(records, item.ToRecord())
		}
		doc.MenuItems[string(cat)] = records
	}
	return doc
}

// Load builds a new catalog from a decoded JSON document. Unknown categories and keys are
// ignored; a missing restaurant_name or menu_items is a FormatError.
func Load(raw map[string]interface{}) (*Catalog, error) {
	nameValue, ok := raw["restaurant_name"]
	if !ok {
		return nil, &models.FormatError{Reason: "missing restaurant_name"}
	}
	name, ok := nameValue.(string)
	if !ok {
		return nil, &models.FormatError{Reason: fmt.Sprintf("restaurant_name is %T, not a string", nameValue)}
	}
	itemsValue, ok := raw["menu_items"]
	if !ok {
		return nil, &models.FormatError{Reason: "missing menu_items"}
	}
	buckets, ok := itemsValue.(map[string]interface{})
	if !ok {
		return nil, &models.FormatError{Reason: fmt.Sprintf("menu_items is %T, not an object", itemsValue)}
	}

	c := NewCatalog(name)
	c.RestaurantName = name
	if currency, ok := raw["currency"].(string); ok && currency != "" {
		c.Currency = currency
	}

	for _, cat := range models.Categories {
		value, ok := buckets[string(cat)]
		if !ok || value == nil {
			continue
		}
		list, ok := value.([]interface{})
		if !ok {
			return nil, &models.FormatError{Reason: fmt.Sprintf("%s is %T, not a list", cat, value)}
		}
		for i, entry := range list {
			fields, ok := entry.(map[string]interface{})
			if !ok {
				return nil, &models.FormatError{Reason: fmt.Sprintf("%s[%d] is %T, not an object", cat, i, entry)}
			}
			item, err := models.MenuItemFromRecord(models.Record(fields), cat)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", cat, i, err)
			}
			c.items[cat] = append(c.items[cat], item)
		}
	}
	return c, nil
}

func Encode(w io.Writer, c *Catalog, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Save(c, now))
}

func Decode(r io.Reader) (*Catalog, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &models.FormatError{Reason: "invalid JSON", Err: err}
	}
	if raw == nil {
		return nil, &models.FormatError{Reason: "document is not an object"}
	}
	return Load(raw)
}

func SaveFile(path string, c *Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create menu file %s: %w", path, err)
	}
	if err := Encode(f, c, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write menu file %s: %w", path, err)
	}
	return f.Close()
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open menu file %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
