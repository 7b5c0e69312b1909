package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"creator_scout/internal/config"
	"creator_scout/internal/metrics"
)

// tokenExpiryDelta refreshes app tokens this long before they expire.
const tokenExpiryDelta = 5 * time.Minute

// StatusError is returned for non-2xx responses that are not auth failures.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Client is the rate limited, retrying JSON client platform connectors build on.
type Client struct {
	name        string
	httpClient  *http.Client
	baseURL     string
	header      http.Header
	tokens      oauth2.TokenSource
	limiter     *rate.Limiter
	maxAttempts int
	initBackoff time.Duration
	maxBackoff  time.Duration
	logger      *slog.Logger
}

// NewClient creates a client for one platform. App credentials are optional;
// without a client secret requests are sent unauthenticated.
func NewClient(name string, cfg config.ConnectorConfig, header http.Header, logger *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		name:        name,
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		header:      header,
		limiter:     rate.NewLimiter(limit, max(cfg.Burst, 1)),
		maxAttempts: max(cfg.Retry.MaxAttempts, 1),
		initBackoff: cfg.Retry.InitialBackoff,
		maxBackoff:  cfg.Retry.MaxBackoff,
		logger:      logger.With("connector", name),
	}

	if cfg.ClientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		c.tokens = oauth2.ReuseTokenSourceWithExpiry(nil, cc.TokenSource(tokenCtx), tokenExpiryDelta)
	}

	return c
}

// GetJSON performs GET baseURL+path?query and decodes the body into out.
// 5xx and 429 responses are retried with exponential backoff. 401 and 403
// yield ErrAuth without retrying.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait rate limiter: %w", err)
		}

		err = c.doRequest(ctx, target, out)
		if err == nil {
			metrics.ConnectorRequests.WithLabelValues(c.name, "success").Inc()
			return nil
		}
		if errors.Is(err, ErrAuth) {
			metrics.ConnectorRequests.WithLabelValues(c.name, "auth").Inc()
			return err
		}
		metrics.ConnectorRequests.WithLabelValues(c.name, "error").Inc()

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return err
		}
		if ctx.Err() != nil || attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"path", path,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doRequest(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CreatorScout/1.0")
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			var re *oauth2.RetrieveError
			if errors.As(err, &re) {
				return fmt.Errorf("%w: fetch token: %v", ErrAuth, err)
			}
			return fmt.Errorf("fetch token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}
