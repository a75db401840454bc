package fasthttpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/valyala/fasthttp"

	"httpblock/internal/config"
	"httpblock/internal/logger"
	"httpblock/pkg/blockgen"
)

// Server wraps the fasthttp server and its dependencies.
type Server struct {
	server  *fasthttp.Server
	addr    string
	logger  logger.AppLogger
	handler fasthttp.RequestHandler
	cancel  context.CancelFunc
}

// NewServer creates a new fasthttp block server.
func NewServer(generator blockgen.Generator, appLogger logger.AppLogger, cfg *config.Config) (*Server, error) {
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for Server")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil for Server")
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	h, err := NewHandler(streamCtx, generator, appLogger, cfg.Blocks.Parameter, cfg.Server.Path)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize handler: %w", err)
	}

	var handler fasthttp.RequestHandler = h.HandleBlocks
	if cfg.Server.Compress {
		handler = fasthttp.CompressHandler(handler)
	}

	server := &fasthttp.Server{
		Handler:      handler,
		Name:         "httpblock",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		Logger:       &serverLogger{logger: appLogger},
	}

	appLogger.Info("Route registered", "path", cfg.Server.Path, "methods", allowedMethods, "compress", cfg.Server.Compress)

	return &Server{
		server:  server,
		addr:    cfg.Server.Port,
		logger:  appLogger,
		handler: handler,
		cancel:  cancel,
	}, nil
}

// Handler returns the root request handler, including compression when enabled.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.handler
}

// Start runs the fasthttp server on the configured address.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "engine", config.EngineFastHTTP, "address", s.addr)
	if err := s.server.ListenAndServe(s.addr); err != nil {
		s.logger.Error("HTTP server ListenAndServe error", "error", err)
		return err
	}
	return nil
}

// Serve runs the fasthttp server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

// Shutdown aborts in-flight block streams, then waits for their connections to close.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	s.cancel()
	if err := s.server.ShutdownWithContext(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}

// serverLogger routes fasthttp's internal messages to the application logger.
type serverLogger struct {
	logger logger.AppLogger
}

func (l *serverLogger) Printf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "engine", config.EngineFastHTTP)
}
