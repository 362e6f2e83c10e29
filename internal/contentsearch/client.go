// Package contentsearch queries the third-party catalogues list items are picked from.
package contentsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"

	"go.uber.org/zap"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
	maxBodySize     = 2 << 20
)

// ClientConfig describes one upstream API.
type ClientConfig struct {
	Name        string // used in cache keys and error messages
	BaseURL     string
	APIKeyParam string // query parameter carrying the key, empty if the API has none
	APIKey      string
	CacheTTL    time.Duration
	Timeout     time.Duration
}

// Client issues cached GET requests against one JSON API, retrying transient failures.
type Client struct {
	cfg      ClientConfig
	http     *http.Client
	cache    Cache
	log      *zap.Logger
	attempts int
	backoff  time.Duration
}

func NewClient(cfg ClientConfig, cache Cache, log *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		cache:    cache,
		log:      log,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
}

// retryable marks failures worth another attempt.
type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

// GetJSON fetches path with query and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	key := c.cfg.Name + "|" + path + "|" + query.Encode()
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			return c.decode(body, out)
		}
	}

	body, err := c.fetchWithRetry(ctx, path, query)
	if err != nil {
		return err
	}
	if err := c.decode(body, out); err != nil {
		return err
	}
	if c.cache != nil && c.cfg.CacheTTL > 0 {
		c.cache.Set(ctx, key, body, c.cfg.CacheTTL)
	}
	return nil
}

func (c *Client) decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.New(apperr.CodeUpstream, fmt.Sprintf("%s returned an unreadable response", c.cfg.Name))
	}
	return nil
}

func (c *Client) fetchWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	wait := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		body, err := c.fetch(ctx, path, query)
		if err == nil {
			return body, nil
		}
		var r retryable
		if !errors.As(err, &r) {
			return nil, err
		}
		lastErr = r.err
		c.log.Warn("search request failed",
			zap.String("provider", c.cfg.Name),
			zap.Int("attempt", attempt),
			zap.Error(r.err))

		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return nil, &apperr.Error{
		Code:    apperr.CodeUpstream,
		Message: fmt.Sprintf("%s is unavailable", c.cfg.Name),
		Err:     lastErr,
	}
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if c.cfg.APIKeyParam != "" {
		q.Set(c.cfg.APIKeyParam, c.cfg.APIKey)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retryable{err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.New(apperr.CodeRateLimited, fmt.Sprintf("%s rate limit reached, try again later", c.cfg.Name))
	case resp.StatusCode >= 500:
		return nil, retryable{fmt.Errorf("%s: status %d", c.cfg.Name, resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperr.New(apperr.CodeUpstream, fmt.Sprintf("%s rejected the request (status %d)", c.cfg.Name, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, retryable{err}
	}
	return body, nil
}
