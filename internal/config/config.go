// Package config implements application configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the configuration from a YAML file and validates it.
// A missing default file is not an error; built-in defaults are used instead.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	loadPath := filePath
	if loadPath == "" {
		loadPath = DefaultConfigFilePath
	}

	fileBytes, err := os.ReadFile(loadPath)
	if err != nil {
		if os.IsNotExist(err) && (filePath == "" || filePath == DefaultConfigFilePath) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", loadPath, err)
	}

	if err := Parse(fileBytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", loadPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", loadPath, err)
	}
	return cfg, nil
}

// Parse overlays the YAML document in data onto cfg.
// Sections and keys absent from the document keep their current values.
func Parse(data []byte, cfg *Config) error {
	type partialConfig struct {
		Mode   *Mode         `yaml:"mode"`
		Server *ServerConfig `yaml:"server"`
		Logger *LoggerConfig `yaml:"logger"`
		Blocks *BlocksConfig `yaml:"blocks"`
	}
	pCfg := partialConfig{
		Server: &cfg.Server,
		Logger: &cfg.Logger,
		Blocks: &cfg.Blocks,
	}

	if err := yaml.Unmarshal(data, &pCfg); err != nil {
		return err
	}

	if pCfg.Mode != nil && *pCfg.Mode != "" {
		cfg.Mode = *pCfg.Mode
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Engine == "" {
		cfg.Server.Engine = DefaultServerEngine
	}
	if cfg.Server.Path == "" {
		cfg.Server.Path = DefaultServerPath
	}
	if cfg.Blocks.Parameter == "" {
		cfg.Blocks.Parameter = DefaultBlocksParameter
	}
	return nil
}
