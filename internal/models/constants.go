package models

import "strings"

type Category string

const (
	CategoryAppetizers  Category = "Appetizers"
	CategoryMainCourses Category = "Main Courses"
	CategoryDesserts    Category = "Desserts"
	CategoryBeverages   Category = "Beverages"
	CategorySpecials    Category = "Specials"
)

// Categories is the fixed display order of the menu.
var Categories = []Category{
	CategoryAppetizers,
	CategoryMainCourses,
	CategoryDesserts,
	CategoryBeverages,
	CategorySpecials,
}

type DietaryTag string

const (
	TagVegetarian DietaryTag = "Vegetarian"
	TagVegan      DietaryTag = "Vegan"
	TagGlutenFree DietaryTag = "Gluten-Free"
	TagDairyFree  DietaryTag = "Dairy-Free"
	TagNutFree    DietaryTag = "Nut-Free"
	TagSpicy      DietaryTag = "Spicy"
)

var DietaryTags = []DietaryTag{
	TagVegetarian,
	TagVegan,
	TagGlutenFree,
	TagDairyFree,
	TagNutFree,
	TagSpicy,
}

const (
	DefaultCurrency       = "$"
	DefaultRestaurantName = "My Restaurant"
	MinRating             = 1
	MaxRating             = 5
)

const (
	EventOrderConfirmed = "OrderConfirmed"
	EventItemRated      = "ItemRated"

	TopicOrders  = "order_events"
	TopicRatings = "rating_events"
)

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the fixed categories, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", invalid("category", "%q is not one of the menu categories", s)
}

func ParseDietaryTag(s string) (DietaryTag, bool) {
	s = strings.TrimSpace(s)
	for _, t := range DietaryTags {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// NormalizeDietaryTags keeps the recognised tags once each, in first-seen order.
func NormalizeDietaryTags(tags []DietaryTag) []DietaryTag {
	out := make([]DietaryTag, 0, len(tags))
	seen := make(map[DietaryTag]bool, len(tags))
	for _, raw := range tags {
		tag, ok := ParseDietaryTag(string(raw))
		if !ok || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func TagsFromStrings(values []string) []DietaryTag {
	tags := make([]DietaryTag, len(values))
	for i, v := range values {
		tags[i] = DietaryTag(v)
	}
	return NormalizeDietaryTags(tags)
}
