package config

import (
	"errors"
	"fmt"
	"strings"
)

// Default config values.
const (
	DefaultConfigFilePath                 = "config.yml"
	DefaultMode                           = ModeServe
	DefaultServerPort                     = ":8080"
	DefaultServerEngine                   = EngineNetHTTP
	DefaultServerPath                     = "/"
	DefaultServerReadTimeoutSeconds       = 30
	DefaultServerWriteTimeoutSeconds      = 0 // unlimited, responses may be arbitrarily large
	DefaultServerIdleTimeoutSeconds       = 60
	DefaultServerReadHeaderTimeoutSeconds = 30
	DefaultServerShutdownTimeoutSeconds   = 15
	DefaultLoggerLevel                    = LogLevelInfo
	DefaultLoggerFormat                   = LogFormatJSON
	DefaultBlocksCount                    = 1000
	DefaultBlocksParameter                = "blocks"
)

// Mode selects how the process is hosted.
type Mode string

// Supported hosting modes.
const (
	ModeServe Mode = "serve"
	ModeCGI   Mode = "cgi"
)

// Engine selects the HTTP server implementation used in serve mode.
type Engine string

// Supported server engines.
const (
	EngineNetHTTP  Engine = "nethttp"
	EngineFastHTTP Engine = "fasthttp"
)

// LogLevel defines the type for logger levels.
type LogLevel string

// LogFormat defines the type for logger output formats.
type LogFormat string

// Defines the supported logger levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Defines the supported logger output formats.
const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// Config holds all configuration for the application.
type Config struct {
	Mode   Mode         `yaml:"mode"`
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Blocks BlocksConfig `yaml:"blocks"`
}

// ServerConfig holds all configuration related to the HTTP server.
type ServerConfig struct {
	Port                     string `yaml:"port"`
	Engine                   Engine `yaml:"engine"`
	Path                     string `yaml:"path"`
	Compress                 bool   `yaml:"compress"`
	ReadTimeoutSeconds       int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds      int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds       int    `yaml:"idle_timeout_seconds"`
	ReadHeaderTimeoutSeconds int    `yaml:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int    `yaml:"shutdown_timeout_seconds"`
}

// LoggerConfig holds all configuration related to logging.
type LoggerConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// BlocksConfig holds configuration for the block generator.
type BlocksConfig struct {
	DefaultCount int64  `yaml:"default_count"`
	Parameter    string `yaml:"parameter"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Mode: DefaultMode,
		Server: ServerConfig{
			Port:                     DefaultServerPort,
			Engine:                   DefaultServerEngine,
			Path:                     DefaultServerPath,
			ReadTimeoutSeconds:       DefaultServerReadTimeoutSeconds,
			WriteTimeoutSeconds:      DefaultServerWriteTimeoutSeconds,
			IdleTimeoutSeconds:       DefaultServerIdleTimeoutSeconds,
			ReadHeaderTimeoutSeconds: DefaultServerReadHeaderTimeoutSeconds,
			ShutdownTimeoutSeconds:   DefaultServerShutdownTimeoutSeconds,
		},
		Logger: LoggerConfig{
			Level:  DefaultLoggerLevel,
			Format: DefaultLoggerFormat,
		},
		Blocks: BlocksConfig{
			DefaultCount: DefaultBlocksCount,
			Parameter:    DefaultBlocksParameter,
		},
	}
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeServe, ModeCGI:
	default:
		return fmt.Errorf("invalid mode (config key: mode): '%s', must be one of: serve, cgi", c.Mode)
	}

	if c.Server.Port == "" || (strings.HasPrefix(c.Server.Port, ":") && len(c.Server.Port) == 1) {
		return errors.New("server port (config key: server.port) cannot be empty or just ':'")
	}
	switch c.Server.Engine {
	case EngineNetHTTP, EngineFastHTTP:
	default:
		return fmt.Errorf(
			"invalid server engine (config key: server.engine): '%s', must be one of: nethttp, fasthttp",
			c.Server.Engine,
		)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server path (config key: server.path) must start with '/': '%s'", c.Server.Path)
	}

	if c.Server.ReadTimeoutSeconds < 0 {
		return errors.New("server read timeout seconds (config key: server.read_timeout_seconds) cannot be negative")
	}
	if c.Server.WriteTimeoutSeconds < 0 {
		return errors.New("server write timeout seconds (config key: server.write_timeout_seconds) cannot be negative")
	}
	if c.Server.IdleTimeoutSeconds < 0 {
		return errors.New("server idle timeout seconds (config key: server.idle_timeout_seconds) cannot be negative")
	}
	if c.Server.ReadHeaderTimeoutSeconds < 0 {
		return errors.New(
			"server read header timeout seconds (config key: server.read_header_timeout_seconds) cannot be negative",
		)
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return errors.New(
			"server shutdown timeout seconds (config key: server.shutdown_timeout_seconds) must be greater than 0",
		)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(string(c.Logger.Level))] {
		return fmt.Errorf(
			"invalid logger level (config key: logger.level): '%s', must be one of: debug, info, warn, error",
			c.Logger.Level,
		)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(string(c.Logger.Format))] {
		return fmt.Errorf(
			"invalid logger format (config key: logger.format): '%s', must be one of: json, text",
			c.Logger.Format,
		)
	}

	// Negative default counts are allowed; they behave like an explicit negative parameter.
	if c.Blocks.Parameter == "" {
		return errors.New("blocks parameter name (config key: blocks.parameter) cannot be empty")
	}

	return nil
}
