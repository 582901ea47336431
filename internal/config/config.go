// Package config provides configuration for the pre-sale feed server.
//
// Values are resolved in this order: built-in defaults, an optional YAML file,
// environment variables (PORT, LOG_LEVEL, SOURCE_URL), and finally command-line
// flags applied by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/hsv-vvk/internal/logger"
	"github.com/pfrederiksen/hsv-vvk/internal/match"
)

// Defaults
const (
	DefaultPort              = "3000"
	DefaultSourceURL         = "https://www.hsv.de/tickets/einzelkarten/ticketinfos-termine"
	DefaultCalendarName      = "HSV - Vorverkauf"
	DefaultTimezone          = "Europe/Berlin"
	DefaultPreSaleTime       = "10:00"
	DefaultFetchTimeoutSec   = 30
	DefaultRequestTimeoutSec = 45
	DefaultLogLevel          = "info"
)

// Configuration validation errors.
var (
	ErrMissingPort           = errors.New("server.port is required")
	ErrInvalidPort           = errors.New("server.port must be a number between 1 and 65535")
	ErrMissingSourceURL      = errors.New("source.url is required")
	ErrInvalidFetchTimeout   = errors.New("source.timeout_sec must be at least 1")
	ErrInvalidRequestTimeout = errors.New("server.request_timeout_sec must be at least 1")
	ErrMissingTeam           = errors.New("feed.team is required")
	ErrInvalidTimezone       = errors.New("feed.timezone is not a known time zone")
	ErrInvalidPreSaleTime    = errors.New("feed.presale_time must be HH:MM")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Source  SourceConfig  `yaml:"source"`
	Feed    FeedConfig    `yaml:"feed"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Port              string `yaml:"port"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

// SourceConfig describes the ticket page that is scraped.
type SourceConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// FeedConfig controls row filtering and the published calendar.
type FeedConfig struct {
	Team         string   `yaml:"team"`
	CalendarName string   `yaml:"calendar_name"`
	Timezone     string   `yaml:"timezone"`
	PreSaleTime  string   `yaml:"presale_time"`
	Exclusions   []string `yaml:"exclusions"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              DefaultPort,
			RequestTimeoutSec: DefaultRequestTimeoutSec,
		},
		Source: SourceConfig{
			URL:        DefaultSourceURL,
			TimeoutSec: DefaultFetchTimeoutSec,
		},
		Feed: FeedConfig{
			Team:         match.DefaultTeam,
			CalendarName: DefaultCalendarName,
			Timezone:     DefaultTimezone,
			PreSaleTime:  DefaultPreSaleTime,
			Exclusions:   append([]string(nil), match.DefaultExclusions...),
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides values from the process environment.
func (c *Config) ApplyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Source.URL = getEnv("SOURCE_URL", c.Source.URL)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return ErrMissingPort
	}
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, c.Server.Port)
	}

	if c.Server.RequestTimeoutSec < 1 {
		return ErrInvalidRequestTimeout
	}

	if c.Source.URL == "" {
		return ErrMissingSourceURL
	}

	if c.Source.TimeoutSec < 1 {
		return ErrInvalidFetchTimeout
	}

	if c.Feed.Team == "" {
		return ErrMissingTeam
	}

	if _, err := time.LoadLocation(c.Feed.Timezone); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Feed.Timezone)
	}

	if _, _, err := parseClock(c.Feed.PreSaleTime); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPreSaleTime, c.Feed.PreSaleTime)
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return ErrInvalidLogLevel
	}

	return nil
}

// Rules builds the row extraction rules from the feed settings.
func (c *Config) Rules() (match.Rules, error) {
	loc, err := time.LoadLocation(c.Feed.Timezone)
	if err != nil {
		return match.Rules{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Feed.Timezone)
	}

	hour, minute, err := parseClock(c.Feed.PreSaleTime)
	if err != nil {
		return match.Rules{}, fmt.Errorf("%w: %q", ErrInvalidPreSaleTime, c.Feed.PreSaleTime)
	}

	return match.Rules{
		Team:          c.Feed.Team,
		Exclusions:    append([]string(nil), c.Feed.Exclusions...),
		Location:      loc,
		PreSaleHour:   hour,
		PreSaleMinute: minute,
	}, nil
}

// LogLevel returns the parsed logging level, falling back to INFO.
func (c *Config) LogLevel() logger.Level {
	level, err := logger.ParseLevel(c.Logging.Level)
	if err != nil {
		return logger.LevelInfo
	}
	return level
}

// GetFetchTimeout returns the upstream fetch timeout.
func (c *Config) GetFetchTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSec) * time.Second
}

// GetRequestTimeout returns the upper bound for serving one feed request.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %s, Source: %s, Team: %s, Timezone: %s}",
		c.Server.Port,
		c.Source.URL,
		c.Feed.Team,
		c.Feed.Timezone,
	)
}
