package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"httpblock/internal/adapters/cgihost"
	"httpblock/internal/adapters/fasthttpapi"
	"httpblock/internal/adapters/restapi"
	"httpblock/internal/config"
	"httpblock/internal/core/application"
	"httpblock/internal/logger"
)

// server is the lifecycle shared by both HTTP engines.
type server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "Path to YAML configuration file (default: config.yml)")
	mode := flag.String("mode", "", "Hosting mode: serve or cgi (default: from config, or cgi when invoked by a web server)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return cgihost.ExitFailure
	}

	env := cgihost.Environ(os.Environ())
	cfg.Mode = resolveMode(*mode, *configFile != "", cfg.Mode, cgihost.IsCGI(env))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return cgihost.ExitFailure
	}

	var logOut io.Writer = os.Stdout
	if cfg.Mode == config.ModeCGI {
		logOut = os.Stderr
	}
	appLogger, err := logger.NewAppLogger(cfg.Logger, logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logger: %v\n", err)
		return cgihost.ExitFailure
	}

	generator, err := application.NewBlockService(appLogger, cfg.Blocks)
	if err != nil {
		appLogger.Error("Failed to create block service", "error", err)
		return cgihost.ExitFailure
	}

	if cfg.Mode == config.ModeCGI {
		handler, errHandler := restapi.NewHTTPHandler(generator, appLogger, cfg.Blocks.Parameter)
		if errHandler != nil {
			appLogger.Error("Failed to create handler", "error", errHandler)
			return cgihost.ExitFailure
		}
		runner, errRunner := cgihost.NewRunner(restapi.NewRouter(handler, cfg.Server), appLogger, env, os.Stdin, os.Stdout)
		if errRunner != nil {
			appLogger.Error("Failed to create CGI runner", "error", errRunner)
			return cgihost.ExitFailure
		}
		return runner.Run()
	}

	var srv server
	switch cfg.Server.Engine {
	case config.EngineFastHTTP:
		srv, err = fasthttpapi.NewServer(generator, appLogger, cfg)
	default:
		srv, err = restapi.NewServer(generator, appLogger, cfg)
	}
	if err != nil {
		appLogger.Error("Failed to create server", "error", err)
		return cgihost.ExitFailure
	}

	if err := gracefulShutdown(appLogger, srv, time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second); err != nil {
		return cgihost.ExitFailure
	}
	appLogger.Info("Application shut down gracefully.")
	return cgihost.ExitOK
}

// resolveMode picks the hosting mode: the -mode flag first, then an explicit config file,
// then the CGI environment, then the configured default.
func resolveMode(flagMode string, explicitConfig bool, cfgMode config.Mode, cgiEnv bool) config.Mode {
	if flagMode != "" {
		return config.Mode(flagMode)
	}
	if explicitConfig {
		return cfgMode
	}
	if cgiEnv {
		return config.ModeCGI
	}
	return cfgMode
}

// gracefulShutdown runs srv until it fails or the process receives SIGINT/SIGTERM.
func gracefulShutdown(appLogger logger.AppLogger, srv server, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if errServ := srv.Start(); errServ != nil && !errors.Is(errServ, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", errServ)
		}
	}()

	var runErr error
	select {
	case runErr = <-errChan:
		appLogger.Error("Shutting down due to error", "error", runErr)
	case <-ctx.Done():
		appLogger.Info("Shutting down due to OS signal...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return runErr
}
