package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option for the producer process. It is
// built once in main and handed to constructors; there is no mutable
// process-wide settings object.
type Config struct {
	NATSURL     string
	StreamName  string
	BaseURL     string // IESO public reports root
	Timezone    string // IESO's civil timezone, used for all date math

	PollInterval time.Duration
	HTTPTimeout  time.Duration
	FlushTimeout time.Duration

	FetchAttempts int
	FetchBackoff  time.Duration

	BackfillDays int
	Concurrency  int64

	LogLevel string
	HTTPPort string
}

// Load builds the configuration from environment variables, reading a
// .env file first if one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		NATSURL:    envString("NATS_URL", "nats://localhost:4222"),
		StreamName: envString("NATS_STREAM", "IESO"),
		BaseURL:    envString("IESO_BASE_URL", "https://reports-public.ieso.ca/public"),
		Timezone:   envString("IESO_TIMEZONE", "America/Toronto"),
		LogLevel:   envString("LOG_LEVEL", "info"),
		HTTPPort:   envString("PORT", "8090"),
	}

	var err error
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FlushTimeout, err = envDuration("FLUSH_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FetchBackoff, err = envDuration("FETCH_BACKOFF", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FetchAttempts, err = envInt("FETCH_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.BackfillDays, err = envInt("BACKFILL_DAYS", 1); err != nil {
		return Config{}, err
	}
	concurrency, err := envInt("BACKFILL_CONCURRENCY", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.Concurrency = int64(concurrency)

	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf("BACKFILL_CONCURRENCY must be at least 1, got %d", cfg.Concurrency)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid IESO_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured source timezone. Load has already
// validated the identifier.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	// Accept plain seconds for compatibility with the original deployment.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
