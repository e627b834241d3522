package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceFile, cfg.DataSource)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Empty(t, cfg.DataBaseURL)
	assert.Equal(t, 1990, cfg.ReferenceYear)
	assert.Equal(t, domain.DefaultTimeline(), cfg.Timeline)
	assert.InDelta(t, 1.5, cfg.CrossingThreshold, 0)
	assert.Equal(t, domain.ContainDistrict, cfg.Containment)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, uint64(3), cfg.FetchMaxRetries)
	assert.True(t, cfg.RetryFailedYears)
	assert.Equal(t, 64, cfg.DocumentCacheSize)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "climate-snapshots", cfg.KafkaSinkTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_SOURCE", "http")
	t.Setenv("DATA_BASE_URL", "https://data.example.org/climat")
	t.Setenv("REFERENCE_YEAR", "2000")
	t.Setenv("TIMELINE_YEARS", "2000-2002,2050")
	t.Setenv("CROSSING_THRESHOLD", "2")
	t.Setenv("CONTAINMENT", "geometry")
	t.Setenv("FETCH_CONCURRENCY", "4")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_MAX_RETRIES", "0")
	t.Setenv("RETRY_FAILED_YEARS", "false")
	t.Setenv("DOCUMENT_CACHE_SIZE", "0")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceHTTP, cfg.DataSource)
	assert.Equal(t, "https://data.example.org/climat", cfg.DataBaseURL)
	assert.Equal(t, 2000, cfg.ReferenceYear)
	assert.Equal(t, []int{2000, 2001, 2002, 2050}, cfg.Timeline)
	assert.InDelta(t, 2.0, cfg.CrossingThreshold, 0)
	assert.Equal(t, domain.ContainGeometry, cfg.Containment)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, uint64(0), cfg.FetchMaxRetries)
	assert.False(t, cfg.RetryFailedYears)
	assert.Equal(t, 0, cfg.DocumentCacheSize)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, wantInErr string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"REFERENCE_YEAR", "nineteen", "REFERENCE_YEAR"},
		{"TIMELINE_YEARS", "2035-1990", "TIMELINE_YEARS"},
		{"TIMELINE_YEARS", "0-2000000000", "TIMELINE_YEARS"},
		{"CROSSING_THRESHOLD", "-1", "CROSSING_THRESHOLD"},
		{"CONTAINMENT", "nearest", "CONTAINMENT"},
		{"FETCH_CONCURRENCY", "0", "FETCH_CONCURRENCY"},
		{"FETCH_CONCURRENCY", "1000", "FETCH_CONCURRENCY"},
		{"FETCH_TIMEOUT", "bad", "FETCH_TIMEOUT"},
		{"FETCH_MAX_RETRIES", "-2", "FETCH_MAX_RETRIES"},
		{"DOCUMENT_CACHE_SIZE", "-1", "DOCUMENT_CACHE_SIZE"},
		{"RATE_LIMIT_PER_MINUTE", "0", "RATE_LIMIT_PER_MINUTE"},
		{"DATA_SOURCE", "s3", "DATA_SOURCE"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantInErr)
		})
	}
}

func TestLoad_HTTPSourceRequiresBaseURL(t *testing.T) {
	t.Setenv("DATA_SOURCE", "http")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_BASE_URL")
}

func TestLoad_KafkaDisabledIgnoresTopic(t *testing.T) {
	t.Setenv("KAFKA_SINK_TOPIC", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
