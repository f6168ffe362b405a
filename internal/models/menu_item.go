package models

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type MenuItem struct {
	Name        string       `json:"name"`
	Price       float64      `json:"price"`
	Category    Category     `json:"category"`
	Description string       `json:"description"`
	DietaryTags []DietaryTag `json:"dietary_info"`
	IsAvailable bool         `json:"is_available"`
	Rating      float64      `json:"rating"`
	ReviewCount int          `json:"review_count"`
}

// Record is the flat key/value form of a MenuItem used by the menu document.
type Record map[string]interface{}

type menuItemFields struct {
	Name        string   `mapstructure:"name"`
	Price       float64  `mapstructure:"price"`
	Category    string   `mapstructure:"category"`
	Description string   `mapstructure:"description"`
	DietaryInfo []string `mapstructure:"dietary_info"`
	IsAvailable bool     `mapstructure:"is_available"`
	Rating      float64  `mapstructure:"rating"`
	ReviewCount int      `mapstructure:"review_count"`
}

func NewMenuItem(name string, price float64, category Category, description string, tags []DietaryTag, isAvailable bool) (*MenuItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "dish name is required")
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, invalid("category", "%q is not one of the menu categories", string(category))
	}

	return &MenuItem{
		Name:        name,
		Price:       price,
		Category:    category,
		Description: description,
		DietaryTags: NormalizeDietaryTags(tags),
		IsAvailable: isAvailable,
	}, nil
}

func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return invalid("price", "must be a positive number, got %v", price)
	}
	return nil
}

// ApplyRating folds score into the running mean.
func (mi *MenuItem) ApplyRating(score int) error {
	if score < MinRating || score > MaxRating {
		return invalid("rating", "score must be between %d and %d, got %d", MinRating, MaxRating, score)
	}
	total := mi.Rating*float64(mi.ReviewCount) + float64(score)
	mi.ReviewCount++
	mi.Rating = total / float64(mi.ReviewCount)
	return nil
}

func (mi *MenuItem) HasTag(tag DietaryTag) bool {
	for _, t := range mi.DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matches reports whether term occurs in the name, description or any dietary tag, ignoring case.
func (mi *MenuItem) Matches(term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(mi.Name), term) ||
		strings.Contains(strings.ToLower(mi.Description), term) {
		return true
	}
	for _, t := range mi.DietaryTags {
		if strings.Contains(strings.ToLower(string(t)), term) {
			return true
		}
	}
	return false
}

func (mi *MenuItem) ToRecord() Record {
	tags := make([]string, len(mi.DietaryTags))
	for i, t := range mi.DietaryTags {
		tags[i] = string(t)
	}
	return Record{
		"name":         mi.Name,
		"price":        mi.Price,
		"category":     string(mi.Category),
		"description":  mi.Description,
		"dietary_info": tags,
		"is_available": mi.IsAvailable,
		"rating":       mi.Rating,
		"review_count": mi.ReviewCount,
	}
}

// wholeNumberHook refuses fractional JSON numbers for integer fields instead of
// letting them truncate.
func wholeNumberHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("expected a whole number, got %v", f)
	}
	return data, nil
}

// MenuItemFromRecord rebuilds an item stored under bucket. Missing optional fields take
// their defaults; the bucket decides the category.
func MenuItemFromRecord(rec Record, bucket Category) (*MenuItem, error) {
	fields := menuItemFields{IsAvailable: true}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: wholeNumberHook,
		Result:     &fields,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]interface{}(rec)); err != nil {
		return nil, &FormatError{Reason: "menu item record", Err: err}
	}

	if _, ok := rec["name"]; !ok {
		return nil, &FormatError{Reason: "menu item without name"}
	}
	if _, ok := rec["price"]; !ok {
		return nil, &FormatError{Reason: "menu item " + fields.Name + " without price"}
	}
	if fields.ReviewCount < 0 {
		return nil, &FormatError{Reason: "menu item " + fields.Name + " has a negative review count"}
	}
	if fields.ReviewCount == 0 && fields.Rating != 0 {
		return nil, &FormatError{Reason: "menu item " + fields.Name + " has a rating without reviews"}
	}
	if fields.ReviewCount > 0 && (fields.Rating < MinRating || fields.Rating > MaxRating) {
		return nil, &FormatError{Reason: "menu item " + fields.Name + " has a rating out of range"}
	}

	item, err := NewMenuItem(fields.Name, fields.Price, bucket, fields.Description, TagsFromStrings(fields.DietaryInfo), fields.IsAvailable)
	if err != nil {
		return nil, &FormatError{Reason: "menu item record", Err: err}
	}
	item.Rating = fields.Rating
	item.ReviewCount = fields.ReviewCount
	return item, nil
}
