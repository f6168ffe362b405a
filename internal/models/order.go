package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one (item, quantity) pair of a confirmed order. Name and UnitPrice are
// captured at confirmation so later menu edits do not rewrite history.
type OrderLine struct {
	Item      *MenuItem `json:"-"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID           string          `json:"id"`
	Lines        []OrderLine     `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	PlacedAt     time.Time       `json:"placed_at"`
	CustomerName string          `json:"customer_name"`
	Notes        string          `json:"notes,omitempty"`
}

func (o *Order) Customer() string {
	if o.CustomerName == "" {
		return "Guest"
	}
	return o.CustomerName
}

func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// Contains reports whether item is one of the order's lines.
func (o *Order) Contains(item *MenuItem) bool {
	for _, l := range o.Lines {
		if l.Item == item {
			return true
		}
	}
	return false
}
