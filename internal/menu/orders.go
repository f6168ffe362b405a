package menu

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

type CartState int

const (
	CartBuilding CartState = iota
	CartConfirmed
	CartAbandoned
)

func (s CartState) String() string {
	switch s {
	case CartBuilding:
		return "building"
	case CartConfirmed:
		return "confirmed"
	case CartAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("CartState(%d)", int(s))
}

var ErrCartClosed = errors.New("cart is no longer open")

type CartLine struct {
	Item     *models.MenuItem
	Quantity int
}

// Cart is an order being built. Repeated selections of the same item stay separate lines.
type Cart struct {
	CustomerName string
	Notes        string
	state        CartState
	lines        []CartLine
}

func (c *Cart) State() CartState { return c.state }

func (c *Cart) Lines() []CartLine { return append([]CartLine(nil), c.lines...) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) Add(item *models.MenuItem, quantity int) error {
	if c.state != CartBuilding {
		return fmt.Errorf("add to %s cart: %w", c.state, ErrCartClosed)
	}
	if item == nil {
		return &models.NotFoundError{What: "menu item"}
	}
	if quantity < 1 {
		return &models.ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be at least 1, got %d", quantity)}
	}
	if !item.IsAvailable {
		return &models.ValidationError{Field: "item", Reason: fmt.Sprintf("%s is not available for ordering", item.Name)}
	}
	c.lines = append(c.lines, CartLine{Item: item, Quantity: quantity})
	return nil
}

// Subtotal previews the total at the items' current prices.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(decimal.NewFromFloat(l.Item.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// OrderProcessor finalizes carts and keeps the session's order history and revenue.
type OrderProcessor struct {
	history []*models.Order
	revenue decimal.Decimal
	rated   map[string]map[*models.MenuItem]bool
	now     func() time.Time
	newID   func() string
}

func NewOrderProcessor() *OrderProcessor {
	return &OrderProcessor{
		revenue: decimal.Zero,
		rated:   make(map[string]map[*models.MenuItem]bool),
		now:     time.Now,
		newID:   cuid.New,
	}
}

func (p *OrderProcessor) NewCart() *Cart {
	return &Cart{state: CartBuilding}
}

func (p *OrderProcessor) Cancel(cart *Cart) error {
	if cart.state != CartBuilding {
		return fmt.Errorf("cancel %s cart: %w", cart.state, ErrCartClosed)
	}
	cart.state = CartAbandoned
	cart.lines = nil
	return nil
}

// Confirm turns a non-empty cart into an order priced at the items' current prices.
func (p *OrderProcessor) Confirm(cart *Cart) (*models.Order, error) {
	if cart.state != CartBuilding {
		return nil, fmt.Errorf("confirm %s cart: %w", cart.state, ErrCartClosed)
	}
	if cart.IsEmpty() {
		return nil, &models.ValidationError{Field: "order", Reason: "cart is empty"}
	}

	order := &models.Order{
		ID:           p.newID(),
		Lines:        make([]models.OrderLine, 0, len(cart.lines)),
		Total:        decimal.Zero,
		PlacedAt:     p.now(),
		CustomerName: cart.CustomerName,
		Notes:        cart.Notes,
	}
	for _, l := range cart.lines {
		line := models.OrderLine{
			Item:      l.Item,
			Name:      l.Item.Name,
			Category:  l.Item.Category,
			UnitPrice: l.Item.Price,
			Quantity:  l.Quantity,
		}
		order.Lines = append(order.Lines, line)
		order.Total = order.Total.Add(line.Subtotal())
	}

	p.history = append(p.history, order)
	p.revenue = p.revenue.Add(order.Total)
	p.rated[order.ID] = make(map[*models.MenuItem]bool)
	cart.state = CartConfirmed
	return order, nil
}

// Rate applies a customer's score to one item of a confirmed order. Each distinct item of
// an order can be rated once.
func (p *OrderProcessor) Rate(order *models.Order, item *models.MenuItem, score int) error {
	rated, ok := p.rated[order.ID]
	if !ok {
		return &models.NotFoundError{What: fmt.Sprintf("order %s", order.ID)}
	}
	if !order.Contains(item) {
		return &models.NotFoundError{What: fmt.Sprintf("item in order %s", order.ID)}
	}
	if rated[item] {
		return &models.ValidationError{Field: "rating", Reason: fmt.Sprintf("%s was already rated for this order", item.Name)}
	}
	if err := item.ApplyRating(score); err != nil {
		return err
	}
	rated[item] = true
	return nil
}

// RatableItems lists the distinct items of an order in first-appearance order.
func RatableItems(order *models.Order) []*models.MenuItem {
	var items []*models.MenuItem
	seen := make(map[*models.MenuItem]bool)
	for _, l := range order.Lines {
		if l.Item == nil || seen[l.Item] {
			continue
		}
		seen[l.Item] = true
		items = append(items, l.Item)
	}
	return items
}

func (p *OrderProcessor) History() []*models.Order {
	return append([]*models.Order(nil), p.history...)
}

func (p *OrderProcessor) Order(id string) (*models.Order, error) {
	for _, o := range p.history {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, &models.NotFoundError{What: fmt.Sprintf("order %s", id)}
}

func (p *OrderProcessor) DailyRevenue() decimal.Decimal { return p.revenue }
