package menu

import (
	"errors"
	"testing"
	"time"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	topics []string
	fail   bool
}

func (r *recordingSink) WriteMessage(topic string, msg []byte) error {
	r.topics = append(r.topics, topic)
	if r.fail {
		return errors.New("broker unavailable")
	}
	return nil
}

func fixedProcessor() *OrderProcessor {
	p := NewOrderProcessor()
	n := 0
	p.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	p.newID = func() string {
		n++
		return "order-" + string(rune('0'+n))
	}
	return p
}

func TestBurgerScenario(t *testing.T) {
	sink := &recordingSink{}
	s := NewSession(NewCatalog("Diner"), sink)
	burger, err := s.Catalog.AddItem("Burger", 9.50, models.CategoryMainCourses, "", nil, true)
	require.NoError(t, err)

	cart := s.Orders.NewCart()
	require.NoError(t, cart.Add(burger, 2))
	order, err := s.ConfirmOrder(cart)
	require.NoError(t, err)

	assert.True(t, s.Orders.DailyRevenue().Equal(decimal.RequireFromString("19.00")))
	require.Len(t, s.Orders.History(), 1)
	assert.True(t, s.Orders.History()[0].Total.Equal(decimal.NewFromInt(19)))

	require.NoError(t, s.RateItem(order, burger, 4))
	assert.Equal(t, 4.0, burger.Rating)
	assert.Equal(t, 1, burger.ReviewCount)

	second := s.Orders.NewCart()
	require.NoError(t, second.Add(burger, 1))
	next, err := s.ConfirmOrder(second)
	require.NoError(t, err)
	require.NoError(t, s.RateItem(next, burger, 2))
	assert.Equal(t, 3.0, burger.Rating)
	assert.Equal(t, 2, burger.ReviewCount)

	assert.Equal(t, []string{models.TopicOrders, models.TopicRatings, models.TopicOrders, models.TopicRatings}, sink.topics)
}

func TestCartLifecycle(t *testing.T) {
	c := NewCatalog("Diner")
	soup := mustAdd(t, c, "Soup", 4.25, models.CategoryAppetizers)
	p := fixedProcessor()

	t.Run("empty cart cannot be confirmed", func(t *testing.T) {
		cart := p.NewCart()
		_, err := p.Confirm(cart)
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Equal(t, CartBuilding, cart.State())
	})

	t.Run("invalid quantity", func(t *testing.T) {
		cart := p.NewCart()
		assert.ErrorIs(t, cart.Add(soup, 0), models.ErrValidation)
		assert.True(t, cart.IsEmpty())
	})

	t.Run("abandoned cart has no side effects", func(t *testing.T) {
		cart := p.NewCart()
		require.NoError(t, cart.Add(soup, 3))
		require.NoError(t, p.Cancel(cart))
		assert.Equal(t, CartAbandoned, cart.State())
		assert.Empty(t, p.History())
		assert.True(t, p.DailyRevenue().IsZero())

		assert.ErrorIs(t, cart.Add(soup, 1), ErrCartClosed)
		_, err := p.Confirm(cart)
		assert.ErrorIs(t, err, ErrCartClosed)
	})

	t.Run("duplicates stay separate lines", func(t *testing.T) {
		cart := p.NewCart()
		require.NoError(t, cart.Add(soup, 1))
		require.NoError(t, cart.Add(soup, 2))
		assert.Len(t, cart.Lines(), 2)
		assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("12.75")))

		order, err := p.Confirm(cart)
		require.NoError(t, err)
		assert.Equal(t, "order-1", order.ID)
		assert.Len(t, order.Lines, 2)
		assert.Equal(t, 3, order.ItemCount())
		assert.Equal(t, CartConfirmed, cart.State())
		assert.ErrorIs(t, p.Cancel(cart), ErrCartClosed)
	})

	t.Run("unavailable item", func(t *testing.T) {
		tea := mustAdd(t, c, "Tea", 2, models.CategoryBeverages)
		require.NoError(t, c.SetAvailability(tea, false))
		assert.ErrorIs(t, p.NewCart().Add(tea, 1), models.ErrValidation)
	})
}

func TestTotalUsesPriceAtConfirmation(t *testing.T) {
	c := NewCatalog("Diner")
	soup := mustAdd(t, c, "Soup", 4, models.CategoryAppetizers)
	p := fixedProcessor()

	cart := p.NewCart()
	require.NoError(t, cart.Add(soup, 2))
	require.NoError(t, c.UpdatePrice(soup, 5))

	order, err := p.Confirm(cart)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(10)))

	require.NoError(t, c.UpdatePrice(soup, 7))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 5.0, order.Lines[0].UnitPrice)
}

func TestRate(t *testing.T) {
	c := NewCatalog("Diner")
	soup := mustAdd(t, c, "Soup", 4, models.CategoryAppetizers)
	cake := mustAdd(t, c, "Cake", 6, models.CategoryDesserts)
	p := fixedProcessor()

	cart := p.NewCart()
	require.NoError(t, cart.Add(soup, 1))
	require.NoError(t, cart.Add(soup, 1))
	order, err := p.Confirm(cart)
	require.NoError(t, err)

	assert.Equal(t, []*models.MenuItem{soup}, RatableItems(order))
	assert.ErrorIs(t, p.Rate(order, cake, 5), models.ErrNotFound)
	assert.ErrorIs(t, p.Rate(order, soup, 9), models.ErrValidation)
	require.NoError(t, p.Rate(order, soup, 5))
	assert.ErrorIs(t, p.Rate(order, soup, 4), models.ErrValidation)
	assert.Equal(t, 1, soup.ReviewCount)

	unconfirmed := &models.Order{ID: "elsewhere"}
	assert.ErrorIs(t, p.Rate(unconfirmed, soup, 3), models.ErrNotFound)

	found, err := p.Order(order.ID)
	require.NoError(t, err)
	assert.Same(t, order, found)
	_, err = p.Order("missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSinkFailureDoesNotFailOrder(t *testing.T) {
	s := NewSession(nil, &recordingSink{fail: true})
	soup, err := s.Catalog.AddItem("Soup", 4, models.CategoryAppetizers, "", nil, true)
	require.NoError(t, err)

	cart := s.Orders.NewCart()
	require.NoError(t, cart.Add(soup, 1))
	_, err = s.ConfirmOrder(cart)
	require.NoError(t, err)
	assert.Len(t, s.Orders.History(), 1)
}
