package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig configures the client state holders and the API client.
type ClientConfig struct {
	APIURL            string `yaml:"api_url"`
	RequestTimeout    string `yaml:"request_timeout"`
	PageSize          int    `yaml:"page_size"`
	PrefetchThreshold int    `yaml:"prefetch_threshold"` // trailing items that trigger the next page
	RecentCatches     int    `yaml:"recent_catches"`
}

// DefaultClientConfig returns the built-in client settings.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIURL:            "http://localhost:8080/api/v1",
		RequestTimeout:    "15s",
		PageSize:          10,
		PrefetchThreshold: 5,
		RecentCatches:     10,
	}
}

// LoadClient loads client configuration from a YAML file. A missing file
// yields the defaults; REEL_API_URL and REEL_REQUEST_TIMEOUT override either.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClientConfig) applyEnvOverrides() {
	if url := os.Getenv("REEL_API_URL"); url != "" {
		c.APIURL = url
	}
	if timeout := os.Getenv("REEL_REQUEST_TIMEOUT"); timeout != "" {
		c.RequestTimeout = timeout
	}
}

// Validate checks the settings are usable.
func (c *ClientConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout %q: %w", c.RequestTimeout, err)
	}
	if c.PageSize < 1 || c.PageSize > 50 {
		return fmt.Errorf("page_size must be between 1 and 50, got %d", c.PageSize)
	}
	if c.PrefetchThreshold < 0 {
		return fmt.Errorf("prefetch_threshold must not be negative")
	}
	return nil
}

// GetRequestTimeout returns the request timeout as a duration.
func (c *ClientConfig) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}
