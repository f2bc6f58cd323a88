// Package rest is the client for the marketplace backend's JSON API.
// Every endpoint answers with a {success, message, data} envelope.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

// DefaultTimeout applies when the caller supplies no http.Client.
const DefaultTimeout = 15 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// RequestIDHeader carries a per-call correlation ID to the backend.
const RequestIDHeader = "X-Request-ID"

// Config holds the backend client settings.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Logger     *zap.Logger
}

// Client calls the marketplace backend.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{base: base, http: hc, userAgent: cfg.UserAgent, logger: logger}, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call performs one round trip and returns the envelope's data.
// endpoint is the metrics label, not the path.
func (c *Client) call(ctx context.Context, endpoint, method string, u *url.URL, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := c.logger.With(zap.String("endpoint", endpoint), zap.String("request_id", reqID))

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		log.Warn("Backend request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, method, u.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrNetwork, err)
	}

	var env envelope
	if err = json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, domain.NewBackendError(resp.StatusCode, snippet(raw))
		}
		log.Warn("Malformed backend response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, fmt.Errorf("%w: malformed response: %w", domain.ErrNetwork, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		log.Debug("Backend rejected request",
			zap.Int("status", resp.StatusCode), zap.String("message", env.Message))
		return nil, domain.NewBackendError(resp.StatusCode, env.Message)
	}
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) (json.RawMessage, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return c.call(ctx, endpoint, http.MethodGet, u, nil)
}

func (c *Client) post(ctx context.Context, endpoint, path string, body any) (json.RawMessage, error) {
	return c.call(ctx, endpoint, http.MethodPost, c.base.JoinPath(path), body)
}

// isNull reports a missing or JSON null data field.
func isNull(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// malformed wraps a decode failure of an otherwise successful response.
func malformed(err error) error {
	var be *domain.BackendError
	if errors.As(err, &be) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
}
