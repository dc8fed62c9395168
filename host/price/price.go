// Package price fetches a market price from a JSON HTTP API.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"gaugedrive/host/config"
)

// maxBody bounds how much of a response is read and persisted
const maxBody = 1 << 20

var (
	// ErrUnexpectedShape means the response did not contain a number at the configured field
	ErrUnexpectedShape = errors.New("price: unexpected response shape")

	// ErrStatus means the API answered with a non-2xx status
	ErrStatus = errors.New("price: unexpected status")
)

// Client polls one price from an HTTP API
type Client struct {
	url     string
	field   []string
	diagDir string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[float64]
	logger  *slog.Logger
	now     func() time.Time
}

// NewClient creates a client for cfg. Requests go through a circuit
// breaker so a failing API is not hammered on every poll.
func NewClient(cfg config.PriceConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	maxFailures := cfg.Breaker.MaxFailures
	cb := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "price:" + cfg.URL,
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Client{
		url:     cfg.URL,
		field:   strings.Split(cfg.Field, "."),
		diagDir: cfg.DiagnosticsDir,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch returns the current price
func (c *Client) Fetch(ctx context.Context) (float64, error) {
	v, err := c.breaker.Execute(func() (float64, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, fmt.Errorf("price source %q circuit open: %w", c.url, err)
		}
		return 0, err
	}
	return v, nil
}

// State returns the circuit breaker state for monitoring
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	v, err := Extract(body, c.field)
	if err != nil {
		path, derr := c.persist(body)
		if derr != nil {
			c.logger.Error("failed to persist unexpected response", "error", derr)
			return 0, err
		}
		c.logger.Warn("unexpected price response persisted", "path", path, "error", err)
		return 0, fmt.Errorf("%w (saved to %s)", err, path)
	}
	return v, nil
}

// persist writes an unparsable response body for offline inspection
func (c *Client) persist(body []byte) (string, error) {
	if err := os.MkdirAll(c.diagDir, 0o755); err != nil {
		return "", err
	}
	name := "price-response-" + strconv.FormatInt(c.now().UnixNano(), 10) + ".json"
	path := filepath.Join(c.diagDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Extract walks the dotted field path through a JSON document and
// returns the number found there. Numeric strings are accepted.
func Extract(body []byte, field []string) (float64, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}

	cur := doc
	for _, key := range field {
		obj, ok := cur.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("%w: %q is not an object", ErrUnexpectedShape, key)
		}
		cur, ok = obj[key]
		if !ok {
			return 0, fmt.Errorf("%w: missing %q", ErrUnexpectedShape, key)
		}
	}

	switch v := cur.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrUnexpectedShape, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: value at %s is %T", ErrUnexpectedShape, strings.Join(field, "."), cur)
	}
}
