// Package httpsource fetches documents from a static HTTP host, behind a
// circuit breaker with retried GETs.
package httpsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/climate-snapshot-service/internal/source"
)

var (
	// ErrCircuitOpen is returned while the breaker rejects requests.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrDocumentTooLarge is returned for bodies over Config.MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("document too large")
)

const defaultMaxDocumentSize = 64 << 20

// Config tunes the client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration // per request
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	BreakerTimeout  time.Duration // open state duration before half-open
	BreakerMinCalls uint32        // requests needed before the failure ratio counts
	MaxDocumentSize int64         // bytes; larger bodies fail with ErrDocumentTooLarge
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 200 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 5 * time.Second
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.BreakerMinCalls == 0 {
		c.BreakerMinCalls = 5
	}
	if c.MaxDocumentSize <= 0 {
		c.MaxDocumentSize = defaultMaxDocumentSize
	}
}

// StatusError is a non-2xx response other than 404.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Source is a source.Source over HTTP.
type Source struct {
	base    *url.URL
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	cfg     Config
}

// New builds a Source for cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	cfg.applyDefaults()
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}

	minCalls := cfg.BreakerMinCalls
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "data-source",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minCalls && ratio >= 0.5
		},
		// Missing documents and client errors say nothing about host health.
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Source{
		base:    base,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		cfg:     cfg,
	}, nil
}

// Fetch GETs the named document. 404 maps to source.ErrNotFound and is never
// retried; 5xx, 429 and transport errors are retried with exponential backoff.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	target := s.base.JoinPath(name).String()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.InitialInterval
	bo.MaxInterval = s.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	var data []byte
	operation := func() error {
		body, err := s.breaker.Execute(func() ([]byte, error) {
			return s.get(ctx, target)
		})
		switch {
		case err == nil:
			data = body
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(ErrCircuitOpen)
		case !retryable(err):
			return backoff.Permanent(err)
		default:
			return err
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, s.cfg.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	return data, nil
}

// State exposes the breaker state.
func (s *Source) State() gobreaker.State {
	return s.breaker.State()
}

func (s *Source) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, source.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	limit := s.cfg.MaxDocumentSize
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, backoff.Permanent(fmt.Errorf("%w: over %d bytes", ErrDocumentTooLarge, limit))
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, source.ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
