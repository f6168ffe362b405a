package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/output"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server is the web dashboard: a JSON API over per-visitor menu sessions plus the live
// feed, metrics and greeting pages.
type Server struct {
	cfg      *models.Config
	router   *gin.Engine
	sessions *SessionStore
	hub      *Hub
	metrics  *Metrics
	store    storage.Store
	sink     output.MultiOutput
}

// NewServer wires the dashboard. out may be nil; when set it receives every event the
// sessions publish, next to the live feed and the metrics.
func NewServer(cfg *models.Config, store storage.Store, out output.Destination) *Server {
	s := &Server{
		cfg:    cfg,
		router: gin.New(),
		hub:    NewHub(),
		store:  store,
	}
	s.sessions = NewSessionStore(s.newSession, cfg.Server.SessionTTL)
	s.metrics = NewMetrics(s.sessions)
	s.sink = output.MultiOutput{s.hub, s.metrics}
	if out != nil {
		s.sink = append(s.sink, out)
	}

	s.router.Use(gin.Recovery(), requestLogger())
	s.router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	s.router.SetHTMLTemplate(helloTemplate)
	s.setupRoutes()
	return s
}

func (s *Server) newSession() *menu.Session {
	catalog := menu.NewCatalog(s.cfg.RestaurantName)
	if s.cfg.Currency != "" {
		catalog.Currency = s.cfg.Currency
	}
	return menu.NewSession(catalog, s.sink)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/hello", s.handleHello)
	s.router.GET("/ws", s.hub.handleWebSocket)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		api.POST("/sessions", s.handleCreateSession)

		session := api.Group("/sessions/:sid")
		session.GET("", s.handleGetSession)
		session.DELETE("", s.handleDeleteSession)
		session.GET("/items", s.handleListItems)
		session.POST("/items", s.handleAddItem)
		session.PATCH("/items/:pos", s.handleUpdateItem)
		session.DELETE("/items/:pos", s.handleRemoveItem)
		session.POST("/orders", s.handlePlaceOrder)
		session.GET("/orders", s.handleListOrders)
		session.POST("/orders/:oid/ratings", s.handleRateItem)
		session.GET("/stats", s.handleStats)
		session.GET("/export", s.handleExport)
		session.POST("/import", s.handleImport)
		session.POST("/save", s.handleSave)
		session.POST("/load", s.handleLoad)
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Run serves until ctx is cancelled, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router,
	}

	if ttl := s.cfg.Server.SessionTTL; ttl > 0 {
		go s.sessions.sweepEvery(ctx, sweepInterval(ttl))
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info().Msg("Shutting down dashboard server")
	err := srv.Shutdown(shutdownCtx)
	if closeErr := s.sink.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("Error closing event outputs")
	}
	return err
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < 2*time.Minute {
		return ttl / 2
	}
	return time.Minute
}

// corsConfig allows the configured front-end origins, or any origin without credentials
// when none are configured.
func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"clients":  s.hub.Len(),
	})
}
