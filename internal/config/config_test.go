package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "IESO", cfg.StreamName)
	assert.Equal(t, "https://reports-public.ieso.ca/public", cfg.BaseURL)
	assert.Equal(t, "America/Toronto", cfg.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10*time.Second, cfg.FlushTimeout)
	assert.Equal(t, 3, cfg.FetchAttempts)
	assert.Equal(t, 5*time.Second, cfg.FetchBackoff)
	assert.Equal(t, 1, cfg.BackfillDays)
	assert.EqualValues(t, 10, cfg.Concurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8090", cfg.HTTPPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("POLL_INTERVAL", "1m30s")
	t.Setenv("FETCH_BACKOFF", "120")
	t.Setenv("BACKFILL_DAYS", "7")
	t.Setenv("BACKFILL_CONCURRENCY", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://broker:4222", cfg.NATSURL)
	assert.Equal(t, 90*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.FetchBackoff, "bare numbers read as seconds")
	assert.Equal(t, 7, cfg.BackfillDays)
	assert.EqualValues(t, 4, cfg.Concurrency)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("POLL_INTERVAL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad int", func(t *testing.T) {
		t.Setenv("BACKFILL_DAYS", "several")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero concurrency", func(t *testing.T) {
		t.Setenv("BACKFILL_CONCURRENCY", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "BACKFILL_CONCURRENCY")
	})

	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("IESO_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "IESO_TIMEZONE")
	})
}

func TestLocation(t *testing.T) {
	cfg := Config{Timezone: "America/Toronto"}
	loc := cfg.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "America/Toronto", loc.String())

	broken := Config{Timezone: "nope"}
	assert.Equal(t, time.UTC, broken.Location())
}
