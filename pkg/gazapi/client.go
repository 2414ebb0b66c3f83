// Package gazapi is the HTTP client of the Material Record Service REST API.
package gazapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RigelNana/gazotheque/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 15 * time.Second

type tokenKey struct{}

// WithToken returns a context whose API calls carry the caller's bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL is the configured API root without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	operation   string
	method      string
	path        string
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(r.operation, "error", time.Since(start))
		c.logger.WithError(err).WithField("operation", r.operation).Warn("material API call failed")
		return fmt.Errorf("%s: %w", r.operation, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(r.operation, strconv.Itoa(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", r.operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		c.logger.WithFields(logrus.Fields{
			"operation": r.operation,
			"status":    resp.StatusCode,
			"key":       apiErr.Key,
		}).Info("material API rejected request")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", r.operation, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, operation, path string, out any) error {
	return c.do(ctx, request{operation: operation, method: http.MethodGet, path: path}, out)
}

func (c *Client) sendJSON(ctx context.Context, operation, method, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", operation, err)
	}
	return c.do(ctx, request{
		operation:   operation,
		method:      method,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, out)
}
