package admin

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/netsvcd/internal/config"
	"github.com/jroosing/netsvcd/internal/store"
)

// loggingMiddleware logs each request through the shared slog logger,
// adapted from the teacher's SlogRequestLogger.
func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("admin api request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// Server is the optional read-only management HTTP API.
type Server struct {
	httpServer *http.Server
}

// New builds the admin API server over the given shared state. It is not
// started until ListenAndServe is called.
func New(cfg *config.Config, busy *store.BusySet, zone store.ZoneTable, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(logger))

	h := NewHandler(cfg, busy, zone)
	RegisterRoutes(engine, h)

	addr := net.JoinHostPort(cfg.Admin.Host, strconv.Itoa(cfg.Admin.Port))
	return &Server{httpServer: &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Addr returns the bound listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// ListenAndServe runs the HTTP server until it is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
