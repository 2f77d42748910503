// Package config loads service settings from an optional YAML file and
// SPACEDASH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/star/spacedash/internal/nasa"
	"github.com/star/spacedash/internal/tle"
)

type Config struct {
	HTTP  HTTPConfig  `yaml:"http"`
	TLE   TLEConfig   `yaml:"tle"`
	Track TrackConfig `yaml:"track"`
	NASA  NASAConfig  `yaml:"nasa"`
	Log   LogConfig   `yaml:"log"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// TrustProxy enables X-Forwarded-For/X-Real-IP for client addresses.
	// Only enable behind a trusted reverse proxy.
	TrustProxy bool `yaml:"trust_proxy"`
}

type TLEConfig struct {
	Source        string `yaml:"source"`
	CacheDir      string `yaml:"cache_dir"`
	CacheMaxFiles int    `yaml:"cache_max_files"`
}

type TrackConfig struct {
	Workers    int           `yaml:"workers"`
	MaxSamples int           `yaml:"max_samples"`
	Duration   time.Duration `yaml:"duration"`
	Step       time.Duration `yaml:"step"`
}

type NASAConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	EONETURL string `yaml:"eonet_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path, fills defaults, applies environment
// overrides and validates the result. An empty path skips the file.
// Invalid environment values are logged and ignored.
func Load(path string, logger *slog.Logger) (*Config, error) {
	var cfg Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv(os.Getenv, logger)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.TLE.Source == "" {
		c.TLE.Source = tle.DefaultSourceURL
	}
	if c.TLE.CacheDir == "" {
		c.TLE.CacheDir = "/tmp/spacedash/tle"
	}
	if c.TLE.CacheMaxFiles == 0 {
		c.TLE.CacheMaxFiles = 5
	}
	if c.Track.Workers == 0 {
		c.Track.Workers = runtime.NumCPU()
	}
	if c.Track.MaxSamples == 0 {
		c.Track.MaxSamples = 1440
	}
	if c.Track.Duration == 0 {
		c.Track.Duration = 24 * time.Hour
	}
	if c.Track.Step == 0 {
		c.Track.Step = 10 * time.Minute
	}
	if c.NASA.BaseURL == "" {
		c.NASA.BaseURL = nasa.DefaultBaseURL
	}
	if c.NASA.APIKey == "" {
		c.NASA.APIKey = nasa.DefaultAPIKey
	}
	if c.NASA.EONETURL == "" {
		c.NASA.EONETURL = nasa.DefaultEONETURL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnv overlays SPACEDASH_* variables read through getenv.
func (c *Config) applyEnv(getenv func(string) string, logger *slog.Logger) {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logger.Warn("invalid "+key+" value, using default", "value", v, "default", *dst)
			return
		}
		*dst = n
	}
	setDuration := func(key string, dst *time.Duration) {
		v := getenv(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			logger.Warn("invalid "+key+" value, using default", "value", v, "default", dst.String())
			return
		}
		*dst = d
	}

	setString("SPACEDASH_HTTP_ADDR", &c.HTTP.Addr)
	if v := getenv("SPACEDASH_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SPACEDASH_TRUST_PROXY value, using default", "value", v, "default", c.HTTP.TrustProxy)
		} else {
			c.HTTP.TrustProxy = b
		}
	}

	setString("SPACEDASH_TLE_SOURCE", &c.TLE.Source)
	setString("SPACEDASH_TLE_CACHE_DIR", &c.TLE.CacheDir)
	setInt("SPACEDASH_TLE_CACHE_MAX_FILES", &c.TLE.CacheMaxFiles)

	setInt("SPACEDASH_TRACK_WORKERS", &c.Track.Workers)
	setInt("SPACEDASH_TRACK_MAX_SAMPLES", &c.Track.MaxSamples)
	setDuration("SPACEDASH_TRACK_DURATION", &c.Track.Duration)
	setDuration("SPACEDASH_TRACK_STEP", &c.Track.Step)

	setString("SPACEDASH_NASA_BASE_URL", &c.NASA.BaseURL)
	setString("SPACEDASH_NASA_API_KEY", &c.NASA.APIKey)
	setString("SPACEDASH_EONET_URL", &c.NASA.EONETURL)

	if v := getenv("SPACEDASH_LOG_LEVEL"); v != "" {
		if _, err := ParseLevel(v); err != nil {
			logger.Warn("invalid SPACEDASH_LOG_LEVEL value, using default", "value", v, "default", c.Log.Level)
		} else {
			c.Log.Level = v
		}
	}
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.TLE.CacheMaxFiles < 0 {
		return fmt.Errorf("tle.cache_max_files must be positive, got %d", c.TLE.CacheMaxFiles)
	}
	if c.Track.Workers < 1 {
		return fmt.Errorf("track.workers must be at least 1, got %d", c.Track.Workers)
	}
	if c.Track.MaxSamples < 1 {
		return fmt.Errorf("track.max_samples must be at least 1, got %d", c.Track.MaxSamples)
	}
	if c.Track.Duration <= 0 {
		return fmt.Errorf("track.duration must be positive, got %s", c.Track.Duration)
	}
	if c.Track.Step <= 0 {
		return fmt.Errorf("track.step must be positive, got %s", c.Track.Step)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
