package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// itemView is a menu item together with its 1-based position in the full listing.
type itemView struct {
	Position int `json:"position"`
	*models.MenuItem
}

type addItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price"`
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description"`
	DietaryInfo []string `json:"dietary_info"`
	IsAvailable *bool    `json:"is_available"`
}

type updateItemRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

type orderLineRequest struct {
	Position int `json:"position"`
	Quantity int `json:"quantity"`
}

type placeOrderRequest struct {
	CustomerName string             `json:"customer_name"`
	Notes        string             `json:"notes"`
	Lines        []orderLineRequest `json:"lines"`
}

type rateRequest struct {
	Position int `json:"position"`
	Score    int `json:"score"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrFormat):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// withSession resolves :sid and runs fn under the session lock.
func (s *Server) withSession(c *gin.Context, fn func(*menu.Session) error) {
	session, err := s.sessions.Get(c.Param("sid"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := session.WithLock(func() error { return fn(session) }); err != nil {
		abortWithError(c, err)
	}
}

func views(all, entries []menu.Entry) []itemView {
	positions := make(map[*models.MenuItem]int, len(all))
	for i, e := range all {
		positions[e.Item] = i + 1
	}
	out := make([]itemView, 0, len(entries))
	for _, e := range entries {
		out = append(out, itemView{Position: positions[e.Item], MenuItem: e.Item})
	}
	return out
}

func position(entries []menu.Entry, raw string) (menu.Entry, error) {
	pos, err := strconv.Atoi(raw)
	if err != nil {
		return menu.Entry{}, &models.ValidationError{Field: "position", Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	entry, ok := menu.Select(entries, pos)
	if !ok {
		return menu.Entry{}, &models.NotFoundError{What: fmt.Sprintf("menu item at position %d", pos)}
	}
	return entry, nil
}

func sessionSummary(id string, session *menu.Session) gin.H {
	return gin.H{
		"id":              id,
		"restaurant_name": session.Catalog.RestaurantName,
		"currency":        session.Catalog.Currency,
		"items":           session.Catalog.Len(),
		"available":       len(session.Catalog.ListAvailable()),
		"orders":          len(session.Orders.History()),
		"revenue":         session.Orders.DailyRevenue(),
	}
}

func (s *Server) handleCreateSession(c *gin.Context) {
	id, session := s.sessions.Create()
	log.Info().Str("session", id).Msg("Dashboard session created")
	session.WithLock(func() error {
		c.JSON(http.StatusCreated, sessionSummary(id, session))
		return nil
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	s.withSession(c, func(session *menu.Session) error {
		c.JSON(http.StatusOK, sessionSummary(c.Param("sid"), session))
		return nil
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("sid")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListItems(c *gin.Context) {
	filter := menu.Filter{}
	if raw := c.Query("category"); raw != "" {
		cat, err := models.ParseCategory(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}
		filter.Category = cat
	}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid max_price %q", raw))
			return
		}
		filter.MaxPrice = maxPrice
	}
	for _, raw := range c.QueryArray("tag") {
		filter.AnyTags = append(filter.AnyTags, models.TagsFromStrings(strings.Split(raw, ","))...)
	}
	term := c.Query("q")

	s.withSession(c, func(session *menu.Session) error {
		entries := session.Catalog.Filter(filter)
		if term != "" {
			matched := entries[:0]
			for _, e := range entries {
				if e.Item.Matches(term) {
					matched = append(matched, e)
				}
			}
			entries = matched
		}
		c.JSON(http.StatusOK, gin.H{
			"restaurant_name": session.Catalog.RestaurantName,
			"currency":        session.Catalog.Currency,
			"items":           views(session.Catalog.AllItems(), entries),
		})
		return nil
	})
}

func (s *Server) handleAddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		abortWithError(c, err)
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	s.withSession(c, func(session *menu.Session) error {
		item, err := session.Catalog.AddItem(req.Name, req.Price, category, req.Description, models.TagsFromStrings(req.DietaryInfo), available)
		if err != nil {
			return err
		}
		c.JSON(http.StatusCreated, views(session.Catalog.AllItems(), []menu.Entry{{Item: item, Category: category}})[0])
		return nil
	})
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.withSession(c, func(session *menu.Session) error {
		all := session.Catalog.AllItems()
		entry, err := position(all, c.Param("pos"))
		if err != nil {
			return err
		}
		if err := session.Catalog.UpdateField(entry.Item, menu.Field(req.Field), req.Value); err != nil {
			return err
		}
		c.JSON(http.StatusOK, views(all, []menu.Entry{entry})[0])
		return nil
	})
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	s.withSession(c, func(session *menu.Session) error {
		entry, err := position(session.Catalog.AllItems(), c.Param("pos"))
		if err != nil {
			return err
		}
		if err := session.Catalog.RemoveItem(entry.Item); err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"removed": entry.Item.Name})
		return nil
	})
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.withSession(c, func(session *menu.Session) error {
		available := session.Catalog.ListAvailable()
		cart := session.Orders.NewCart()
		cart.CustomerName = strings.TrimSpace(req.CustomerName)
		cart.Notes = req.Notes

		for _, line := range req.Lines {
			quantity := line.Quantity
			if quantity == 0 {
				quantity = 1
			}
			err := func() error {
				entry, ok := menu.Select(available, line.Position)
				if !ok {
					return &models.NotFoundError{What: fmt.Sprintf("available item at position %d", line.Position)}
				}
				return cart.Add(entry.Item, quantity)
			}()
			if err != nil {
				session.Orders.Cancel(cart)
				return err
			}
		}

		order, err := session.ConfirmOrder(cart)
		if err != nil {
			session.Orders.Cancel(cart)
			return err
		}
		log.Info().Str("session", c.Param("sid")).Str("order_id", order.ID).Str("total", order.Total.StringFixed(2)).Msg("Order confirmed")
		c.JSON(http.StatusCreated, order)
		return nil
	})
}

func (s *Server) handleListOrders(c *gin.Context) {
	s.withSession(c, func(session *menu.Session) error {
		c.JSON(http.StatusOK, gin.H{
			"orders":  session.Orders.History(),
			"revenue": session.Orders.DailyRevenue(),
		})
		return nil
	})
}

func (s *Server) handleRateItem(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s.withSession(c, func(session *menu.Session) error {
		order, err := session.Orders.Order(c.Param("oid"))
		if err != nil {
			return err
		}
		ratable := menu.RatableItems(order)
		if req.Position < 1 || req.Position > len(ratable) {
			return &models.NotFoundError{What: fmt.Sprintf("item at position %d of order %s", req.Position, order.ID)}
		}
		item := ratable[req.Position-1]
		if err := session.RateItem(order, item, req.Score); err != nil {
			return err
		}
		c.JSON(http.StatusOK, item)
		return nil
	})
}

type priceView struct {
	Min           float64    `json:"min"`
	Max           float64    `json:"max"`
	Average       float64    `json:"average"`
	MostExpensive []itemView `json:"most_expensive"`
}

func (s *Server) handleStats(c *gin.Context) {
	s.withSession(c, func(session *menu.Session) error {
		all := session.Catalog.AllItems()
		prices := menu.AnalyzePrices(session.Catalog, 5)
		sales := menu.Sales(session.Orders, 3)
		c.JSON(http.StatusOK, gin.H{
			"summary": menu.Summarize(session.Catalog),
			"prices": priceView{
				Min:           prices.Min,
				Max:           prices.Max,
				Average:       prices.Average,
				MostExpensive: views(all, prices.MostExpensive),
			},
			"top_rated": views(all, menu.TopRated(session.Catalog, 3)),
			"sales": gin.H{
				"order_count":         sales.OrderCount,
				"revenue":             sales.Revenue.StringFixed(2),
				"average_order_value": sales.AverageOrderValue.Round(2).StringFixed(2),
				"best_sellers":        sales.BestSellers,
			},
		})
		return nil
	})
}

func (s *Server) documentName() string {
	if s.cfg.DataFile == "" {
		return "menu_data.json"
	}
	return s.cfg.DataFile
}

func (s *Server) handleExport(c *gin.Context) {
	s.withSession(c, func(session *menu.Session) error {
		var buf bytes.Buffer
		if err := menu.Encode(&buf, session.Catalog, time.Now()); err != nil {
			return err
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(s.documentName())))
		c.Data(http.StatusOK, "application/json", buf.Bytes())
		return nil
	})
}

func (s *Server) handleImport(c *gin.Context) {
	catalog, err := menu.Decode(c.Request.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.withSession(c, func(session *menu.Session) error {
		session.Replace(catalog)
		c.JSON(http.StatusOK, sessionSummary(c.Param("sid"), session))
		return nil
	})
}

func (s *Server) handleSave(c *gin.Context) {
	name := s.documentName()
	s.withSession(c, func(session *menu.Session) error {
		if err := menu.SaveTo(c.Request.Context(), s.store, name, session.Catalog); err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"location": s.store.Location(name), "items": session.Catalog.Len()})
		return nil
	})
}

func (s *Server) handleLoad(c *gin.Context) {
	name := s.documentName()
	s.withSession(c, func(session *menu.Session) error {
		catalog, err := menu.LoadFrom(c.Request.Context(), s.store, name)
		if err != nil {
			return err
		}
		session.Replace(catalog)
		c.JSON(http.StatusOK, sessionSummary(c.Param("sid"), session))
		return nil
	})
}
