// Package server exposes schedules, countdowns and the Qibla direction over
// HTTP and a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// Options configures a Server. Zero values fall back to sensible defaults.
type Options struct {
	// Source produces schedules; nil means local computation.
	Source       prayer.Source
	Method       prayer.Method
	HighLatitude prayer.HighLatitudeRule
	// Location is used when a request has no tz parameter. Defaults to UTC.
	Location *time.Location
	// Now is the clock used when a request has no now parameter.
	Now func() time.Time
}

// Server serves the JSON API.
type Server struct {
	opts   Options
	engine *gin.Engine
}

// Error is returned by handlers and rendered as {"error": message}.
type Error struct {
	Code    int
	Message string
}

func badRequest(format string, a ...any) *Error {
	return &Error{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, a...)}
}

// HandlerFunc produces a JSON result or an error.
type HandlerFunc func(c *gin.Context) (any, *Error)

func resolve(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, apiErr := h(c)
		if apiErr != nil {
			c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Source == nil {
		opts.Source = prayer.Local{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{opts: opts, engine: r}

	v1 := r.Group("/api/v1")
	v1.GET("/methods", resolve(s.methods))
	v1.GET("/schedule", resolve(s.schedule))
	v1.GET("/current", resolve(s.current))
	v1.GET("/next", resolve(s.next))
	v1.GET("/countdown", resolve(s.countdown))
	v1.GET("/qibla", resolve(s.qibla))
	v1.GET("/qibla/aligned", resolve(s.aligned))
	v1.GET("/hijri", resolve(s.hijri))

	r.GET("/ws/qibla", s.qiblaSocket)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
