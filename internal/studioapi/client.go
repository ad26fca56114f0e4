package studioapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sadonamonday/crtvsite/pkg/logging"
)

const defaultTimeout = 15 * time.Second

var (
	// ErrEmptyResponse is returned when the services list answers with no body.
	ErrEmptyResponse = errors.New("studioapi: empty response body")
)

// StatusError reports a non-2xx answer from the remote API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("studio API returned %d: %s", e.StatusCode, e.Body)
}

// Client wraps the two endpoints the booking workflow depends on.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient constructs a client rooted at baseURL (scheme + host, optional path prefix).
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the origin relative image paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListServices fetches the raw services list. The body shape is not
// interpreted here; see package catalog.
func (c *Client) ListServices(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ServicesListPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("services list non-2xx response", "status", resp.StatusCode, "path", ServicesListPath)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 300)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}
	return json.RawMessage(body), nil
}

// CreateBooking posts payload to the booking form endpoint. Exactly one
// request is made. A reply that is not JSON is turned into a BookingResponse
// whose Success mirrors the HTTP status and whose Message is the status text.
// Only transport and encoding failures are returned as errors.
func (c *Client) CreateBooking(ctx context.Context, payload any) (*BookingResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+BookingFormPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	var out BookingResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		c.logger.Warn("booking response is not JSON",
			"status", resp.StatusCode,
			"body", truncate(string(respBody), 200),
		)
		return &BookingResponse{Success: ok, Message: statusText(resp)}, nil
	}
	return &out, nil
}

func statusText(resp *http.Response) string {
	// resp.Status is "404 Not Found"; the text part is what the browser exposes.
	if _, text, found := strings.Cut(resp.Status, " "); found && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
