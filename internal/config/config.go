package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppDir is the directory under $HOME holding config, logs and local storage
const AppDir = ".kudos"

// PageSizes holds list page sizes per screen
type PageSizes struct {
	Projects     int `yaml:"projects" json:"projects"`
	Testimonials int `yaml:"testimonials" json:"testimonials"`
	Tokens       int `yaml:"tokens" json:"tokens"`
	Public       int `yaml:"public" json:"public"`
}

// Config holds user preferences
type Config struct {
	APIURL         string        `yaml:"api_url" json:"api_url"`                 // Backend base URL, including the /api prefix
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"` // Per request timeout
	ConfirmDelete  bool          `yaml:"confirm_delete" json:"confirm_delete"`   // Require confirmation for delete
	PageSizes      PageSizes     `yaml:"page_sizes" json:"page_sizes"`

	// Public web front end
	WebAddr       string `yaml:"web_addr" json:"web_addr"`
	ReviewBaseURL string `yaml:"review_base_url" json:"review_base_url"` // Prefix for invite links shown by the CLI

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	logPath := ""
	if dir, err := Dir(); err == nil {
		logPath = filepath.Join(dir, "logs", "kudos.log")
	}

	return &Config{
		APIURL:         getEnv("KUDOS_API_URL", "http://localhost:8000/api"),
		RequestTimeout: getDuration("KUDOS_REQUEST_TIMEOUT", 10*time.Second),
		ConfirmDelete:  true,
		PageSizes: PageSizes{
			Projects:     6,
			Testimonials: 10,
			Tokens:       10,
			Public:       9,
		},
		WebAddr:       getEnv("KUDOS_WEB_ADDR", ":3000"),
		ReviewBaseURL: getEnv("KUDOS_REVIEW_BASE_URL", "http://localhost:3000/review"),
		LogLevel:      getEnv("KUDOS_LOG_LEVEL", "INFO"),
		LogFile:       getEnv("KUDOS_LOG_FILE", logPath),
		LogConsole:    getEnv("KUDOS_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// Dir returns ~/.kudos
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, AppDir), nil
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from ~/.kudos/config.yaml
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads config from path, falling back to defaults when it does not exist.
// Environment variables win over values from the file.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.fillZero()

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIURL = getEnv("KUDOS_API_URL", c.APIURL)
	c.RequestTimeout = getDuration("KUDOS_REQUEST_TIMEOUT", c.RequestTimeout)
	c.WebAddr = getEnv("KUDOS_WEB_ADDR", c.WebAddr)
	c.ReviewBaseURL = getEnv("KUDOS_REVIEW_BASE_URL", c.ReviewBaseURL)
	c.LogLevel = getEnv("KUDOS_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("KUDOS_LOG_FILE", c.LogFile)
	if v := os.Getenv("KUDOS_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
}

// fillZero restores defaults for values a partial config file zeroed out
func (c *Config) fillZero() {
	d := DefaultConfig()
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.PageSizes.Projects <= 0 {
		c.PageSizes.Projects = d.PageSizes.Projects
	}
	if c.PageSizes.Testimonials <= 0 {
		c.PageSizes.Testimonials = d.PageSizes.Testimonials
	}
	if c.PageSizes.Tokens <= 0 {
		c.PageSizes.Tokens = d.PageSizes.Tokens
	}
	if c.PageSizes.Public <= 0 {
		c.PageSizes.Public = d.PageSizes.Public
	}
}

// Save saves config to ~/.kudos/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as YAML to path
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
