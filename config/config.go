// Package config loads the YAML configuration that wires an Arcana assistant
// at startup: logging, NLU provider selection, knowledge backend and the
// workflow definition directory.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes everything the façade needs to assemble a running stack.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	NLU       NLUConfig       `yaml:"nlu"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Workflows WorkflowsConfig `yaml:"workflows"`
}

// LoggingConfig controls level and output format of the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// NLUConfig selects and parameterizes the parser implementation.
type NLUConfig struct {
	Provider string `yaml:"provider"` // keyword, anthropic or openai
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// KnowledgeConfig selects the knowledge base backend.
type KnowledgeConfig struct {
	Backend string      `yaml:"backend"` // memory or redis
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig carries connection parameters for the redis backend.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// WorkflowsConfig points at the directory of YAML workflow definitions.
type WorkflowsConfig struct {
	Dir string `yaml:"dir"`
}

// Load parses the YAML configuration file at path and applies defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, suitable for
// local development without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with safe local-development values.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.NLU.Provider == "" {
		c.NLU.Provider = "keyword"
	}
	if c.Knowledge.Backend == "" {
		c.Knowledge.Backend = "memory"
	}
	if c.Knowledge.Backend == "redis" && c.Knowledge.Redis.Address == "" {
		c.Knowledge.Redis.Address = "localhost:6379"
	}
}

// Validate rejects unknown provider/backend selections early, before wiring.
func (c *Config) Validate() error {
	switch c.NLU.Provider {
	case "keyword", "anthropic", "openai":
	default:
		return fmt.Errorf("unknown nlu provider %q", c.NLU.Provider)
	}
	switch c.Knowledge.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown knowledge backend %q", c.Knowledge.Backend)
	}
	return nil
}
