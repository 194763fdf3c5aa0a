// Package api - Thin HTTP layer over the plan calculator
// The API is ONLY responsible for input decoding, validation, delegation and
// serialization. It NEVER prices anything itself.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"plan-advisor/core/engine"
	"plan-advisor/internal/config"
	"plan-advisor/internal/validator"
)

// Server is the API server
type Server struct {
	calc     *engine.Calculator
	validate *validator.Validator
	logger   *zap.Logger
	metrics  *metrics
	router   chi.Router
	version  string
	maxBody  int64
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported by /version
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithMaxBodyBytes caps request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// NewServer creates an API server around a calculator
func NewServer(calc *engine.Calculator, opts ...Option) *Server {
	s := &Server{
		calc:     calc,
		validate: validator.New(),
		logger:   zap.NewNop(),
		metrics:  newMetrics(),
		version:  "dev",
		maxBody:  1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// routes registers all API routes
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(accessLog(s.logger))
	r.Use(s.metrics.middleware)
	r.Use(bodyLimit(s.maxBody))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, CodeNotFound, "no route for "+r.URL.Path, http.StatusNotFound)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/plans/calculate", s.handleCalculate)
		r.Post("/quotes", s.handleQuote)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/tiers", s.handleTiers)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	return r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("addr", cfg.Addr),
			zap.String("rate_table", string(s.calc.Rates().ID)),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
