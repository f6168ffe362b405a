package menu

import (
	"sort"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/shopspring/decimal"
)

type CategorySummary struct {
	Category     models.Category `json:"category"`
	Count        int             `json:"count"`
	AveragePrice float64         `json:"average_price"`
}

type MenuSummary struct {
	TotalItems       int               `json:"total_items"`
	AvailableItems   int               `json:"available_items"`
	ActiveCategories int               `json:"active_categories"`
	Categories       []CategorySummary `json:"categories"`
}

type BestSeller struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type SalesSummary struct {
	OrderCount        int             `json:"order_count"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	BestSellers       []BestSeller    `json:"best_sellers"`
}

type PriceAnalysis struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Average       float64 `json:"average"`
	MostExpensive []Entry `json:"-"`
}

func limit(n, size int) int {
	if n <= 0 || n > size {
		return size
	}
	return n
}

func Summarize(c *Catalog) MenuSummary {
	summary := MenuSummary{Categories: []CategorySummary{}}
	for _, cat := range models.Categories {
		items := c.items[cat]
		if len(items) == 0 {
			continue
		}
		sum := 0.0
		for _, item := range items {
			sum += item.Price
			if item.IsAvailable {
				summary.AvailableItems++
			}
		}
		summary.TotalItems += len(items)
		summary.ActiveCategories++
		summary.Categories = append(summary.Categories, CategorySummary{
			Category:     cat,
			Count:        len(items),
			AveragePrice: sum / float64(len(items)),
		})
	}
	return summary
}

// TopRated returns rated items by descending rating; ties keep catalog order.
func TopRated(c *Catalog, n int) []Entry {
	rated := c.collect(func(item *models.MenuItem) bool { return item.ReviewCount > 0 })
	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].Item.Rating > rated[j].Item.Rating
	})
	return rated[:limit(n, len(rated))]
}

// Sales aggregates the order history. Best sellers are keyed by item name, so distinct
// items sharing a name count together.
func Sales(p *OrderProcessor, n int) SalesSummary {
	summary := SalesSummary{
		OrderCount:        len(p.history),
		Revenue:           p.revenue,
		AverageOrderValue: decimal.Zero,
		BestSellers:       []BestSeller{},
	}
	if len(p.history) > 0 {
		summary.AverageOrderValue = p.revenue.Div(decimal.NewFromInt(int64(len(p.history))))
	}

	index := make(map[string]int)
	for _, order := range p.history {
		for _, line := range order.Lines {
			i, ok := index[line.Name]
			if !ok {
				i = len(summary.BestSellers)
				index[line.Name] = i
				summary.BestSellers = append(summary.BestSellers, BestSeller{Name: line.Name})
			}
			summary.BestSellers[i].Quantity += line.Quantity
		}
	}
	sort.SliceStable(summary.BestSellers, func(i, j int) bool {
		return summary.BestSellers[i].Quantity > summary.BestSellers[j].Quantity
	})
	summary.BestSellers = summary.BestSellers[:limit(n, len(summary.BestSellers))]
	return summary
}

func AnalyzePrices(c *Catalog, n int) PriceAnalysis {
	all := c.AllItems()
	if len(all) == 0 {
		return PriceAnalysis{}
	}
	analysis := PriceAnalysis{Min: all[0].Item.Price, Max: all[0].Item.Price}
	sum := 0.0
	for _, e := range all {
		price := e.Item.Price
		sum += price
		if price < analysis.Min {
			analysis.Min = price
		}
		if price > analysis.Max {
			analysis.Max = price
		}
	}
	analysis.Average = sum / float64(len(all))

	sort.SliceStable(all, func(i, j int) bool { return all[i].Item.Price > all[j].Item.Price })
	analysis.MostExpensive = all[:limit(n, len(all))]
	return analysis
}
