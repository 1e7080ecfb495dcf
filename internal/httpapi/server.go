package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"suimu/internal/boundary"
	"suimu/internal/logging"
)

// maxBodyBytes caps invoke request bodies.
const maxBodyBytes = 1 << 20

// Server serves boundary commands over HTTP.
type Server struct {
	svc     *boundary.Service
	logger  *slog.Logger
	router  *chi.Mux
	metrics http.Handler

	listener net.Listener
	server   *http.Server
}

// NewServer builds the router. A nil metrics handler leaves /metrics
// unmounted.
func NewServer(svc *boundary.Service, metrics http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		svc:     svc,
		logger:  logging.NewComponentLogger(logger, "http"),
		router:  chi.NewRouter(),
		metrics: metrics,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/commands", s.handleCommands)
		r.Get("/maybemusic", s.handleMaybeMusic)
		r.Post("/invoke/{command}", s.handleInvoke)
	})
}

// Handler returns the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on bind and serves in the background until ctx is done or
// Stop is called. It returns the bound address.
func (s *Server) Start(ctx context.Context, bind string) (string, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return "", fmt.Errorf("http listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "http server error", "http_serve_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "HTTP clients can no longer reach suimu"),
				logging.String(logging.FieldErrorHint, "check server.http_bind and restart suimu serve"),
			)
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	addr := listener.Addr().String()
	s.logger.Info("http server listening", logging.String("address", addr))
	return addr, nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

// requestLogger logs one debug line per request with the chi request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("http request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", ww.Status()),
				logging.Int("bytes", ww.BytesWritten()),
				logging.Duration("duration", time.Since(start)),
				logging.String(logging.FieldCorrelationID, middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
