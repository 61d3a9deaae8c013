package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Plex     PlexConfig     `toml:"plex"`
	LLM      LLMConfig      `toml:"llm"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// PlexConfig contains Plex server connection settings.
type PlexConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Section string `toml:"section"`
}

// LLMConfig contains language model provider settings.
//
// Keys left empty in the TOML file are filled from the environment
// (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY) by [Config.ApplyEnv].
type LLMConfig struct {
	OpenAIKey    string  `toml:"openai_api_key"`
	AnthropicKey string  `toml:"anthropic_api_key"`
	GeminiKey    string  `toml:"gemini_api_key"`
	BaseURL      string  `toml:"base_url"`
	DefaultModel string  `toml:"default_model"`
	Temperature  float64 `toml:"temperature"`
	RateLimit    float64 `toml:"rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotenv loads a .env file into the process environment if one exists.
// A missing file is not an error.
func LoadDotenv(path string) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// ApplyEnv overlays environment variables onto the configuration.
// Environment values win over TOML values when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PLEX_BASE_URL"); v != "" {
		c.Plex.BaseURL = v
	}
	if v := os.Getenv("PLEX_TOKEN"); v != "" {
		c.Plex.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.AnthropicKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.GeminiKey = v
	}
}

// Validate checks that the configuration carries enough to reach Plex.
func (c *Config) Validate() error {
	if c.Plex.BaseURL == "" {
		return fmt.Errorf("%w: plex base_url is required", ErrInvalidConfig)
	}
	if c.Plex.Token == "" {
		return fmt.Errorf("%w: plex token is required", ErrMissingCredentials)
	}
	return nil
}
