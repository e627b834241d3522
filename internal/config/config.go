package config

import (
	"errors"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
)

// Data source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataSource  string
	DataDir     string
	DataBaseURL string

	ReferenceYear     int
	Timeline          []int
	CrossingThreshold float64
	Containment       domain.ContainmentMethod

	FetchConcurrency int
	FetchTimeout     time.Duration
	FetchMaxRetries  uint64
	RetryFailedYears bool
	// DocumentCacheSize bounds the fetched-document cache; 0 disables it.
	DocumentCacheSize int

	HTTPAddr           string
	RateLimitPerMinute int
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration

	// Load report publishing.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	referenceYear, err := strconv.Atoi(sharedcfg.EnvOrDefault("REFERENCE_YEAR", strconv.Itoa(domain.ReferenceYear)))
	if err != nil {
		return nil, errors.New("invalid REFERENCE_YEAR")
	}

	timeline, err := domain.ParseTimeline(sharedcfg.EnvOrDefault("TIMELINE_YEARS", "1990-2035,2050,2100"))
	if err != nil {
		return nil, errors.New("invalid TIMELINE_YEARS: " + err.Error())
	}

	threshold, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("CROSSING_THRESHOLD", "1.5"), 64)
	if err != nil || threshold <= 0 {
		return nil, errors.New("invalid CROSSING_THRESHOLD")
	}

	containment, err := domain.ParseContainmentMethod(sharedcfg.EnvOrDefault("CONTAINMENT", string(domain.ContainDistrict)))
	if err != nil {
		return nil, errors.New("invalid CONTAINMENT")
	}

	concurrency, err := strconv.Atoi(sharedcfg.EnvOrDefault("FETCH_CONCURRENCY", "8"))
	if err != nil || concurrency <= 0 || concurrency > 64 {
		return nil, errors.New("invalid FETCH_CONCURRENCY (must be 1-64)")
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	maxRetries, err := strconv.ParseUint(sharedcfg.EnvOrDefault("FETCH_MAX_RETRIES", "3"), 10, 32)
	if err != nil {
		return nil, errors.New("invalid FETCH_MAX_RETRIES")
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("DOCUMENT_CACHE_SIZE", "64"))
	if err != nil || cacheSize < 0 {
		return nil, errors.New("invalid DOCUMENT_CACHE_SIZE")
	}

	rateLimit, err := strconv.Atoi(sharedcfg.EnvOrDefault("RATE_LIMIT_PER_MINUTE", "120"))
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid RATE_LIMIT_PER_MINUTE")
	}

	cfg := &Config{
		DataSource:  sharedcfg.EnvOrDefault("DATA_SOURCE", SourceFile),
		DataDir:     sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		DataBaseURL: sharedcfg.EnvOrDefault("DATA_BASE_URL", ""),

		ReferenceYear:     referenceYear,
		Timeline:          timeline,
		CrossingThreshold: threshold,
		Containment:       containment,

		FetchConcurrency: concurrency,
		FetchTimeout:     fetchTimeout,
		FetchMaxRetries:  maxRetries,
		RetryFailedYears: sharedcfg.EnvOrDefault("RETRY_FAILED_YEARS", "true") == "true",

		DocumentCacheSize: cacheSize,

		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		RateLimitPerMinute: rateLimit,
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,

		KafkaEnabled:   sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "climate-snapshots"),
	}

	switch cfg.DataSource {
	case SourceFile:
		if cfg.DataDir == "" {
			return nil, errors.New("DATA_DIR is required")
		}
	case SourceHTTP:
		if cfg.DataBaseURL == "" {
			return nil, errors.New("DATA_BASE_URL is required when DATA_SOURCE is http")
		}
	default:
		return nil, errors.New("invalid DATA_SOURCE (must be file or http)")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}
