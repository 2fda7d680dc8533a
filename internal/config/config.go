// Package config manages YAML-based configuration and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBaseDir  = "FILEDESK_DIR"
	EnvPort     = "FILEDESK_PORT"
	EnvLogLevel = "FILEDESK_LOG_LEVEL"
)

// Config holds all configuration options for filedesk
type Config struct {
	BaseDir  string `yaml:"base_dir"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Watch    bool   `yaml:"watch"`
	LogLevel string `yaml:"log_level"`

	// Files with these extensions can be rendered by the preview endpoint
	MarkdownExtensions []string `yaml:"markdown_extensions"`

	// Grace period for in-flight requests when the server is stopped
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Internal: path the configuration was loaded from, empty for defaults
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseDir:            "./files",
		Port:               3000,
		Watch:              true,
		LogLevel:           "info",
		MarkdownExtensions: []string{".md", ".markdown"},
		ShutdownTimeout:    5 * time.Second,
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/filedesk"
	}
	return filepath.Join(home, ".config", "filedesk")
}

// GetConfigPath returns the full path to the global config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load builds the configuration from defaults, a config file and the
// environment. An explicit path must exist; otherwise the global config and
// then ./filedesk.yaml are tried and silently skipped when absent.
func Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	cfgPath := explicitPath
	if cfgPath == "" {
		if _, err := os.Stat(GetConfigPath()); err == nil {
			cfgPath = GetConfigPath()
		} else if _, err := os.Stat("filedesk.yaml"); err == nil {
			cfgPath = "filedesk.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil {
			return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
		}
		cfg.configPath = cfgPath
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// ApplyEnv overrides fields from environment variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvBaseDir)); v != "" {
		c.BaseDir = v
	}
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		port, err := ParsePort(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ParsePort parses a TCP port number.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetConfigFilePath returns the path the configuration was loaded from
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

// IsMarkdownFile checks if a file has a markdown extension
func (c *Config) IsMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.MarkdownExtensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
