// Package api wires the HTTP surface of the bridge: routing, middleware,
// and the session and config endpoints.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/jdbridge/jdbridge/internal/config"
	"github.com/jdbridge/jdbridge/internal/downloads"
	"github.com/jdbridge/jdbridge/internal/health"
	"github.com/jdbridge/jdbridge/internal/remote"
	"github.com/jdbridge/jdbridge/internal/session"
)

// Server handles HTTP requests for the bridge API.
type Server struct {
	echo   *echo.Echo
	logger zerolog.Logger
	cfg    *config.Config

	sessions  *session.Manager
	downloads *downloads.Service
	healthSvc *health.Service
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, sessions *session.Manager, svc *downloads.Service, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		logger:    logger,
		cfg:       cfg,
		sessions:  sessions,
		downloads: svc,
		healthSvc: health.NewService(sessions, cfg.Downloads.BasePath),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))
}

// setupRoutes registers all HTTP routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/", s.index)

	healthHandlers := health.NewHandlers(s.healthSvc)
	healthHandlers.RegisterRoutes(s.echo.Group("/health"))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/connect", s.connect)
	v1.POST("/disconnect", s.disconnect)
	v1.GET("/config", s.getConfig)

	downloadHandlers := downloads.NewHandlers(s.downloads)
	downloadHandlers.RegisterRoutes(v1.Group("/downloads"))
	downloadHandlers.RegisterLinkgrabberRoutes(v1.Group("/linkgrabber"))
}

// index identifies the service for anyone poking at the root URL.
// GET /
func (s *Server) index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service":   "jdbridge",
		"version":   config.Version,
		"connected": s.sessions.Connected(),
		"endpoints": []string{
			"/health",
			"/api/v1/connect",
			"/api/v1/disconnect",
			"/api/v1/config",
			"/api/v1/downloads",
			"/api/v1/downloads/start",
			"/api/v1/downloads/pause",
			"/api/v1/linkgrabber",
		},
	})
}

// connect establishes the remote session using the configured credentials.
// The request carries no body; credentials never travel over this API.
// POST /api/v1/connect
func (s *Server) connect(c echo.Context) error {
	if err := s.sessions.Connect(c.Request().Context()); err != nil {
		kind, message := classifyConnectErr(err)
		return c.JSON(http.StatusBadGateway, map[string]any{
			"connected":  false,
			"error_kind": kind,
			"message":    message,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"connected": true})
}

// classifyConnectErr reduces a connect failure to its reason class. Only
// the class crosses the boundary; credentials and raw causes stay in logs.
func classifyConnectErr(err error) (kind, message string) {
	switch {
	case errors.Is(err, remote.ErrAuthFailed):
		return downloads.KindAuthError, "remote service rejected credentials"
	case errors.Is(err, remote.ErrDeviceNotFound):
		return downloads.KindAuthError, "configured device not found"
	default:
		return downloads.KindRemoteError, "remote service unreachable"
	}
}

// disconnect tears down the remote session. Always succeeds.
// POST /api/v1/disconnect
func (s *Server) disconnect(c echo.Context) error {
	s.sessions.Disconnect(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{"connected": false})
}

// getConfig returns the non-sensitive runtime configuration. Credentials,
// appkey, and device id are deliberately absent.
// GET /api/v1/config
func (s *Server) getConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cfg.Redacted())
}

// Start begins serving HTTP requests on the given address.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying Echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
