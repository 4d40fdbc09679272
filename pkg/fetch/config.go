package fetch

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config carries the client-wide transport settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	MediaType string
	Logging   bool
}

const (
	defaultTimeout   = 30 * time.Second
	defaultMediaType = "application/json"
)

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Timeout:   defaultTimeout,
		MediaType: defaultMediaType,
	}
}

// LoadConfig parses a TOML config file, falling back to defaults when the
// file is missing.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("fetch: open config: %w", err)
	}

	var raw struct {
		BaseURL   string `toml:"base_url"`
		Timeout   string `toml:"timeout"`
		MediaType string `toml:"media_type"`
		Logging   bool   `toml:"logging"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("fetch: parse config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	if mediaType := strings.TrimSpace(raw.MediaType); mediaType != "" {
		cfg.MediaType = mediaType
	}
	if timeout := strings.TrimSpace(raw.Timeout); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("fetch: parse config timeout: %w", err)
		}
		cfg.Timeout = parsed
	}
	cfg.Logging = raw.Logging

	return cfg, nil
}
