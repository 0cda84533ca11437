// Package httpapi serves the conversation manager over HTTP with echo.
//
// Every /api/v1 route except user sync acts for the owner named by the
// X-Owner-ID header. Identity verification happens upstream.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/chatkeep/internal/logging"
	"github.com/mesh-intelligence/chatkeep/internal/metrics"
	"github.com/mesh-intelligence/chatkeep/pkg/conversation"
)

// Server provides the chatkeep HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	mgr     *conversation.Manager
	log     *logging.Logger
	metrics *metrics.Metrics
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// DefaultConfig listens on localhost only.
func DefaultConfig() *Config {
	return &Config{Host: "localhost", Port: 8780}
}

// NewServer creates a server for mgr. Metrics may be nil, in which case
// requests are counted in a private registry and /metrics serves that.
func NewServer(mgr *conversation.Manager, log *logging.Logger, mt *metrics.Metrics, cfg *Config) (*Server, error) {
	if mgr == nil {
		return nil, errors.New("conversation manager cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger is required for request tracking and debugging")
	}
	if mt == nil {
		mt = metrics.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		mgr:     mgr,
		log:     log.Named("http"),
		metrics: mt,
		config:  cfg,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestContext)
	e.Use(s.observeRequest)

	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/users/sync", s.handleSyncUser)
	v1.POST("/titles", s.handleTitle)

	owned := v1.Group("", s.requireOwner)
	owned.GET("/chats", s.handleListChats)
	owned.POST("/chats", s.handleCreateChat)
	owned.GET("/chats/:id", s.handleGetChat)
	owned.PATCH("/chats/:id", s.handleUpdateChat)
	owned.DELETE("/chats/:id", s.handleDeleteChat)
	owned.GET("/chats/:id/messages", s.handleListMessages)
	owned.POST("/chats/:id/messages", s.handleAppendMessage)

	owned.GET("/folders", s.handleListFolders)
	owned.POST("/folders", s.handleCreateFolder)
	owned.PUT("/folders/order", s.handleReorderFolders)
	owned.PATCH("/folders/:id", s.handleRenameFolder)
	owned.DELETE("/folders/:id", s.handleDeleteFolder)

	owned.GET("/sidebar", s.handleSidebar)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "starting http server", zap.String("addr", s.Addr()))
	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
