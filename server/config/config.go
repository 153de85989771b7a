package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/sig-0/vcbrates/provider/vcb"
)

const (
	DefaultListenAddress   = "0.0.0.0:8080"
	DefaultUpstreamTimeout = "10s"
)

var (
	ErrInvalidListenAddress = errors.New("invalid listen address")
	ErrInvalidUpstreamURL   = errors.New("invalid upstream URL")
	ErrInvalidDuration      = errors.New("invalid duration")
)

var listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)

// Config defines the base-level server configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The bank rate board the server relays and ingests
	Upstream *Upstream `toml:"upstream"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`
}

// CORS defines the cross-origin policy of the server
type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods"`
	AllowedHeaders []string `toml:"allowed_headers"`
}

// Upstream defines the bank rate board endpoint.
// Durations use the time.ParseDuration format ("10s", "30m")
type Upstream struct {
	URL      string `toml:"url"`
	Timeout  string `toml:"timeout"`
	Interval string `toml:"interval"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
		Upstream:      DefaultUpstream(),
	}
}

// DefaultCORSConfig allows read-only requests from any origin
func DefaultCORSConfig() *CORS {
	return &CORS{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}
}

// DefaultUpstream returns the public Vietcombank rate board
func DefaultUpstream() *Upstream {
	return &Upstream{
		URL:      vcb.DefaultFeedURL,
		Timeout:  DefaultUpstreamTimeout,
		Interval: vcb.DefaultInterval.String(),
	}
}

// TimeoutDuration returns the parsed upstream request timeout
func (u *Upstream) TimeoutDuration() (time.Duration, error) {
	return parseDuration(u.Timeout)
}

// IntervalDuration returns the parsed ingestion interval
func (u *Upstream) IntervalDuration() (time.Duration, error) {
	return parseDuration(u.Interval)
}

func parseDuration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}

	return d, nil
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	// Validate the listen address
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	if config.Upstream == nil {
		return nil
	}

	// Validate the upstream
	u, err := url.Parse(config.Upstream.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidUpstreamURL
	}

	if _, err = config.Upstream.TimeoutDuration(); err != nil {
		return err
	}

	if _, err = config.Upstream.IntervalDuration(); err != nil {
		return err
	}

	return nil
}

// Read reads the configuration from the given path.
// Values missing from the file keep their defaults
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in the values omitted from a config file
func applyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if cfg.CORSConfig == nil {
		cfg.CORSConfig = DefaultCORSConfig()
	}

	if cfg.Upstream == nil {
		cfg.Upstream = DefaultUpstream()

		return
	}

	defaults := DefaultUpstream()

	if cfg.Upstream.URL == "" {
		cfg.Upstream.URL = defaults.URL
	}

	if cfg.Upstream.Timeout == "" {
		cfg.Upstream.Timeout = defaults.Timeout
	}

	if cfg.Upstream.Interval == "" {
		cfg.Upstream.Interval = defaults.Interval
	}
}
