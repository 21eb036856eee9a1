// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/voicematch/internal/bank"
	"github.com/jdfalk/voicematch/internal/config"
	"github.com/jdfalk/voicematch/internal/metrics"
	"github.com/jdfalk/voicematch/internal/realtime"
	"github.com/jdfalk/voicematch/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	store      *bank.Store
	hub        *realtime.EventHub
	matches    *MatchService
	limiter    *middleware.IPRateLimiter
	cfg        config.Config
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a server answering from store. hub may be nil, in which
// case a fresh hub is created.
func NewServer(cfg config.Config, store *bank.Store, hub *realtime.EventHub) *Server {
	if hub == nil {
		hub = realtime.NewEventHub()
	}
	SetLogLevel(ParseLogLevel(cfg.LogLevel))

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.MaxRequestBodySize(cfg.MaxBodyBytes))

	// Register metrics (idempotent)
	metrics.Register()

	s := &Server{
		router:  router,
		store:   store,
		hub:     hub,
		matches: NewMatchService(store, hub, cfg.Thresholds, cfg.DefaultLanguage),
		limiter: middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
		cfg:     cfg,
	}
	store.OnReload(func(info bank.Info) {
		hub.SendBankReloaded(info.Revision, info.Questions)
	})

	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(cfg ServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx, cfg)
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context, cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[INFO] Shutting down server...")

	if s.hub.GetClientCount() > 0 {
		s.hub.Broadcast(&realtime.Event{
			Type: realtime.EventShutdown,
			Data: map[string]any{"message": "Server is shutting down"},
		})
		// Give clients a moment to receive the event
		time.Sleep(500 * time.Millisecond)
	}

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("[INFO] Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	api.GET("/health", s.healthCheck)
	api.GET("/events", s.handleEvents)

	limited := s.limiter.Middleware()
	api.POST("/match", limited, s.match)

	questions := api.Group("/questions")
	{
		questions.GET("", s.listQuestions)
		questions.GET("/search", s.searchQuestions)
		questions.GET("/:id", s.getQuestion)
		questions.POST("/:id/match", limited, s.matchQuestion)
		questions.POST("/:id/confirm", limited, s.confirmQuestion)
	}

	api.POST("/bank/reload", middleware.BasicAuth(s.cfg.Admin.Username, s.cfg.Admin.Password), s.reloadBank)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+middleware.RequestIDHeader+", "+middleware.SessionHeader)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now().Unix(),
		Version:      Version,
		Bank:         s.store.Info(),
		Policy:       s.matches.Policy(),
		EventClients: s.hub.GetClientCount(),
	})
}

// handleEvents handles Server-Sent Events (SSE) for real-time updates
func (s *Server) handleEvents(c *gin.Context) {
	if session := c.Query("session"); session != "" {
		if err := ValidateSessionID(session); err != nil {
			RespondWithMatchError(c, err)
			return
		}
	}
	s.hub.HandleSSE(c)
}

func (s *Server) match(c *gin.Context) {
	ol := NewOperationLogger("match", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
	ol.LogStart()

	var req MatchRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}

	res, lang, err := s.matches.Match(req, middleware.GetRequestID(c))
	if err != nil {
		ol.LogError(RespondWithMatchError(c, err), err)
		return
	}

	ol.AddDetail("decision", res.Decision)
	ol.LogSuccess(http.StatusOK)
	RespondWithOK(c, NewMatchResponse(res, lang.String(), "", req.SessionID, ParseQueryBool(c, "verbose", false)))
}

func (s *Server) listQuestions(c *gin.Context) {
	all := s.store.Bank().List()

	limit := ParseQueryInt(c, "limit", defaultPageSize)
	offset := ParseQueryInt(c, "offset", 0)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	start := min(offset, len(all))
	end := min(start+limit, len(all))
	page := all[start:end]
	RespondWithOK(c, NewListResponse(page, len(page), limit, offset, len(all)))
}

func (s *Server) searchQuestions(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondWithValidationError(c, "q", "search query is required")
		return
	}
	hits := s.store.Bank().Search(query)
	if hits == nil {
		hits = []bank.SearchHit{}
	}
	if limit := ParseQueryInt(c, "limit", 0); limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	RespondWithOK(c, NewListResponse(hits, len(hits), len(hits), 0, len(hits)))
}

func (s *Server) getQuestion(c *gin.Context) {
	id := c.Param("id")
	q, err := s.store.Bank().Get(id)
	if err != nil {
		RespondWithNotFound(c, "question", id)
		return
	}
	RespondWithOK(c, q)
}

func (s *Server) matchQuestion(c *gin.Context) {
	id := c.Param("id")
	ol := NewOperationLogger("matchQuestion", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
	ol.SetResourceID(id)
	ol.LogStart()

	var req QuestionMatchRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}

	res, lang, err := s.matches.MatchQuestion(id, req, middleware.GetRequestID(c))
	if err != nil {
		ol.LogError(RespondWithMatchError(c, err), err)
		return
	}

	ol.AddDetail("decision", res.Decision)
	ol.LogSuccess(http.StatusOK)
	RespondWithOK(c, NewMatchResponse(res, lang.String(), id, req.SessionID, ParseQueryBool(c, "verbose", false)))
}

func (s *Server) confirmQuestion(c *gin.Context) {
	id := c.Param("id")
	var req ConfirmRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}

	selected, idx, err := s.matches.Confirm(id, req, middleware.GetRequestID(c))
	if err != nil {
		RespondWithMatchError(c, err)
		return
	}
	RespondWithOK(c, ConfirmResponse{QuestionID: id, Selected: selected, Index: idx})
}

func (s *Server) reloadBank(c *gin.Context) {
	ol := NewOperationLogger("reloadBank", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
	if err := s.store.Reload(); err != nil {
		ol.LogError(http.StatusUnprocessableEntity, err)
		RespondWithUnprocessable(c, err.Error(), "BANK_RELOAD_FAILED")
		return
	}
	info := s.store.Info()
	ol.AddDetail("revision", info.Revision)
	ol.LogSuccess(http.StatusOK)
	RespondWithOK(c, ReloadResponse{Message: "question bank reloaded", Bank: info})
}

// GetDefaultServerConfig returns the listener settings from config.AppConfig,
// falling back to built-in defaults for unset values.
func GetDefaultServerConfig() ServerConfig {
	cfg := ServerConfig{
		Port:         "8080",
		Host:         "localhost",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	sc := config.AppConfig.Server
	if sc.Port != "" {
		cfg.Port = sc.Port
	}
	if sc.Host != "" {
		cfg.Host = sc.Host
	}
	if sc.ReadTimeout > 0 {
		cfg.ReadTimeout = sc.ReadTimeout
	}
	if sc.WriteTimeout > 0 {
		cfg.WriteTimeout = sc.WriteTimeout
	}
	if sc.IdleTimeout > 0 {
		cfg.IdleTimeout = sc.IdleTimeout
	}
	return cfg
}
