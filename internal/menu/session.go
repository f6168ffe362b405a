package menu

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/rs/zerolog/log"
)

// EventSink receives serialized order and rating events.
type EventSink interface {
	WriteMessage(topic string, msg []byte) error
}

// Session is the state one front-end works against: a catalog plus the orders taken
// since the session started.
type Session struct {
	mu      sync.Mutex
	Catalog *Catalog
	Orders  *OrderProcessor
	sink    EventSink
}

func NewSession(catalog *Catalog, sink EventSink) *Session {
	if catalog == nil {
		catalog = NewCatalog(models.DefaultRestaurantName)
	}
	return &Session{
		Catalog: catalog,
		Orders:  NewOrderProcessor(),
		sink:    sink,
	}
}

// WithLock runs fn while holding the session lock. The dashboard routes every request
// through it; the console is single-threaded and does not need to.
func (s *Session) WithLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Replace swaps in a freshly loaded catalog. Order history is kept.
func (s *Session) Replace(c *Catalog) {
	s.Catalog = c
}

func (s *Session) ConfirmOrder(cart *Cart) (*models.Order, error) {
	order, err := s.Orders.Confirm(cart)
	if err != nil {
		return nil, err
	}
	s.publish(models.TopicOrders, NewOrderEvent(order))
	return order, nil
}

// RateItem scores an item of a confirmed order. The item must still be on the current
// menu; a removed or replaced dish cannot be rated.
func (s *Session) RateItem(order *models.Order, item *models.MenuItem, score int) error {
	if !s.Catalog.Contains(item) {
		return notPresent(item)
	}
	if err := s.Orders.Rate(order, item, score); err != nil {
		return err
	}
	s.publish(models.TopicRatings, NewRatingEvent(order, item, score))
	return nil
}

func (s *Session) publish(topic string, event interface{}) {
	if s.sink == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Error serializing event")
		return
	}
	if err := s.sink.WriteMessage(topic, msg); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to write event")
	}
}

// BaseEvent is the common part of every published event.
type BaseEvent struct {
	Timestamp int64  `json:"timestamp"`
	EventType string `json:"eventType"`
}

type OrderEvent struct {
	BaseEvent
	OrderID      string  `json:"orderId"`
	CustomerName string  `json:"customerName"`
	Items        string  `json:"items"`
	ItemCount    int32   `json:"itemCount"`
	TotalAmount  float64 `json:"totalAmount"`
	Notes        string  `json:"notes"`
}

type RatingEvent struct {
	BaseEvent
	OrderID     string  `json:"orderId"`
	ItemName    string  `json:"itemName"`
	Category    string  `json:"category"`
	Score       int32   `json:"score"`
	Rating      float64 `json:"rating"`
	ReviewCount int32   `json:"reviewCount"`
}

func NewBaseEvent(eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		Timestamp: timestamp.Unix(),
		EventType: eventType,
	}
}

func NewOrderEvent(order *models.Order) OrderEvent {
	items, _ := json.Marshal(order.Lines)
	total, _ := order.Total.Float64()
	return OrderEvent{
		BaseEvent:    NewBaseEvent(models.EventOrderConfirmed, order.PlacedAt),
		OrderID:      order.ID,
		CustomerName: order.Customer(),
		Items:        string(items),
		ItemCount:    int32(order.ItemCount()),
		TotalAmount:  total,
		Notes:        order.Notes,
	}
}

func NewRatingEvent(order *models.Order, item *models.MenuItem, score int) RatingEvent {
	return RatingEvent{
		BaseEvent:   NewBaseEvent(models.EventItemRated, time.Now()),
		OrderID:     order.ID,
		ItemName:    item.Name,
		Category:    string(item.Category),
		Score:       int32(score),
		Rating:      item.Rating,
		ReviewCount: int32(item.ReviewCount),
	}
}
