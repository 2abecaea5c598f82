package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/poiesic/pitwall/core"
	"github.com/poiesic/pitwall/query"
)

const shutdownTimeout = 10 * time.Second

// Service is what the HTTP layer needs from the application.
// *pitwall.Service implements it.
type Service interface {
	Answer(ctx context.Context, question, hint string) (*query.Result, error)
	Query(ctx context.Context, key core.TopicKey, question string) (*query.Result, error)
	Ingest(ctx context.Context, key core.TopicKey, articles []core.RawArticle) (int, error)
	Topics(ctx context.Context) ([]core.TopicStatus, error)
	Refresh(ctx context.Context) error
}

// Server serves the HTTP API.
type Server struct {
	svc          Service
	engine       *gin.Engine
	allowOrigins []string
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAllowOrigins sets the CORS origins. "*" allows any origin, which is the default.
func WithAllowOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowOrigins = origins
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used to resolve relative article dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds the router for svc.
func New(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:          svc,
		allowOrigins: []string{"*"},
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors.New(s.corsConfig()))

	r.POST("/api/query", s.handleQuery)
	r.GET("/api/topics", s.handleTopics)
	r.POST("/api/refresh", s.handleRefresh)
	r.POST("/partitions/:topicKey/query", s.handlePartitionQuery)
	r.POST("/partitions/:topicKey/update", s.handlePartitionUpdate)
	r.GET("/health", s.handleHealth)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) corsConfig() cors.Config {
	config := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if slices.Contains(s.allowOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = s.allowOrigins
	}
	return config
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}
