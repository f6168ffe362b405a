package dashboard

import (
	"encoding/json"
	"strconv"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics turns order and rating events into Prometheus series. It is wired as an
// event sink, so it sees exactly what the other destinations see.
type Metrics struct {
	registry *prometheus.Registry
	orders   prometheus.Counter
	revenue  prometheus.Counter
	items    prometheus.Histogram
	ratings  *prometheus.CounterVec
}

func NewMetrics(sessions *SessionStore) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		orders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuboard_orders_total",
			Help: "Number of confirmed orders",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menuboard_revenue_total",
			Help: "Sum of confirmed order totals",
		}),
		items: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "menuboard_order_items",
			Help:    "Number of items per confirmed order",
			Buckets: prometheus.LinearBuckets(1, 2, 8),
		}),
		ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menuboard_ratings_total",
			Help: "Ratings received, by score",
		}, []string{"score"}),
	}

	m.registry.MustRegister(m.orders, m.revenue, m.items, m.ratings)
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "menuboard_sessions",
			Help: "Open dashboard sessions",
		}, func() float64 { return float64(sessions.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "menuboard_catalog_items",
			Help: "Menu items across all open sessions",
		}, func() float64 { return float64(sessions.CatalogItems()) }),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) WriteMessage(topic string, msg []byte) error {
	switch topic {
	case models.TopicOrders:
		var event struct {
			ItemCount   int     `json:"itemCount"`
			TotalAmount float64 `json:"totalAmount"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			return err
		}
		m.orders.Inc()
		m.revenue.Add(event.TotalAmount)
		m.items.Observe(float64(event.ItemCount))
	case models.TopicRatings:
		var event struct {
			Score int `json:"score"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			return err
		}
		m.ratings.WithLabelValues(strconv.Itoa(event.Score)).Inc()
	}
	return nil
}

func (m *Metrics) Close() error { return nil }
