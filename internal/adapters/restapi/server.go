package restapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"httpblock/internal/config"
	"httpblock/internal/logger"
	"httpblock/pkg/blockgen"
)

// Server wraps the net/http server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     logger.AppLogger
	cancel     context.CancelFunc
}

// NewServer creates a new net/http block server.
func NewServer(generator blockgen.Generator, appLogger logger.AppLogger, cfg *config.Config) (*Server, error) {
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for Server")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil for Server")
	}

	h, err := NewHTTPHandler(generator, appLogger, cfg.Blocks.Parameter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handler: %w", err)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           NewRouter(h, cfg.Server),
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	return &Server{
		httpServer: server,
		logger:     appLogger,
		cancel:     cancel,
	}, nil
}

// Handler returns the root handler, including compression when enabled.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server on the configured address.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "engine", config.EngineNetHTTP, "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("HTTP server ListenAndServe error", "error", err)
		return err
	}
	return nil
}

// Serve runs the HTTP server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown aborts in-flight block streams, then waits for their connections to close.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	s.cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}

// NewRouter creates a ServeMux with the blocks route registered at the configured path.
func NewRouter(h *HTTPHandler, cfg config.ServerConfig) http.Handler {
	smux := http.NewServeMux()
	smux.HandleFunc(cfg.Path, h.HandleBlocks)

	h.logger.Info("Route registered", "path", cfg.Path, "methods", allowedMethods, "compress", cfg.Compress)

	if cfg.Compress {
		return gzhttp.GzipHandler(smux)
	}
	return smux
}
