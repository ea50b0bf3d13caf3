package lrohttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jpalmerr/opwatch"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when many
// waits share one client
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

const defaultRequestTimeout = 30 * time.Second

// jsonAPI decodes the longrunning wire shape. ConfigFastest is safe here:
// operation payloads are machine-generated JSON with no exotic encodings.
var jsonAPI = jsoniter.ConfigFastest

// APIError is a non-2xx response from the operations API.
//
// When the backend returned a structured status body (the google.rpc
// error envelope), Status carries it; otherwise Status is nil and only
// the HTTP status code is known.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Status is the decoded server error body, when present.
	Status *opwatch.Status
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != nil && e.Status.Message != "" {
		return fmt.Sprintf("operations API returned HTTP %d: %s", e.StatusCode, e.Status.Message)
	}
	return fmt.Sprintf("operations API returned HTTP %d", e.StatusCode)
}

// ValidateName performs a syntactic check on an operation resource name.
//
// Operation names are opaque server-assigned resource paths, but every
// valid one contains an "operations/" segment (for example
// "projects/p/locations/l/operations/op-123"). Returns an error for
// empty names or names without that segment, catching argument mix-ups
// before a request is made.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("operation name cannot be empty")
	}
	if !strings.Contains(name, "operations/") {
		return fmt.Errorf("invalid operation name %q: must contain an \"operations/\" segment", name)
	}
	return nil
}

// Client is an HTTP client for a longrunning-style operations API.
//
// Client uses per-request timeouts via context rather than a global
// timeout, and limits response bodies to 1MB. It is safe for concurrent
// use; one Client can serve many simultaneous waits.
type Client struct {
	httpClient *http.Client
	base       string
	headers    map[string]string
	timeout    time.Duration
}

// clientConfig holds mutable state during client construction.
type clientConfig struct {
	headers    map[string]string
	timeout    time.Duration
	httpClient *http.Client
}

// ClientOption is a function that configures a [Client] during
// construction. Built-in options: [WithHeaders], [WithRequestTimeout],
// [WithHTTPClient].
type ClientOption func(*clientConfig) error

// WithHeaders adds custom HTTP headers sent with every request, typically
// authentication:
//
//	client, err := lrohttp.NewClient(base,
//	    lrohttp.WithHeaders("Authorization", "Bearer "+token),
//	)
//
// Accepts variadic key-value pairs; returns an error if an odd number of
// arguments is provided.
func WithHeaders(keyValues ...string) ClientOption {
	return func(cfg *clientConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout applied to every status
// check. This is the budget for one round trip, not for a whole wait;
// wait deadlines belong to the opwatch.PollPolicy. Defaults to 30s.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying *http.Client, for callers that
// need custom transports (proxies, TLS configuration, test doubles).
//
// Returns an error if the client is nil.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = c
		return nil
	}
}

// NewClient creates a [Client] for the operations API rooted at base.
//
// The base URL includes the API version prefix, for example
// "https://example.googleapis.com/v1"; operation names are appended to
// it verbatim. The default transport is configured with connection
// pooling limits:
//
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
//
// Returns an error if the base URL is invalid or an option fails.
func NewClient(base string, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got %q", parsed.Scheme)
	}

	cfg := &clientConfig{
		headers: make(map[string]string),
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			// no global timeout - per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		}
	}

	return &Client{
		httpClient: httpClient,
		base:       strings.TrimSuffix(base, "/"),
		headers:    cfg.headers,
		timeout:    cfg.timeout,
	}, nil
}

// GetOperation fetches the current state of the named operation.
//
// This is the status-check round trip the poller repeats: GET
// <base>/<name>, decoding the longrunning JSON shape. Non-2xx responses
// are returned as [*APIError]; they are transport-level failures, not
// operation failures, and the poller propagates them unchanged.
func (c *Client) GetOperation(ctx context.Context, name string) (*opwatch.Operation, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodGet, c.operationURL(name))
	if err != nil {
		return nil, err
	}

	var op opwatch.Operation
	if err := jsonAPI.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("failed to decode operation %q: %w", name, err)
	}
	if op.Name == "" {
		op.Name = name
	}
	return &op, nil
}

// CancelOperation asks the server to cancel the named operation.
//
// This is the explicit remote cancel: it is never issued implicitly by a
// wait. Best-effort on the server side; the operation may still complete.
func (c *Client) CancelOperation(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, c.operationURL(name)+":cancel")
	return err
}

// DeleteOperation removes the server's record of a finished operation.
// The underlying action is unaffected.
func (c *Client) DeleteOperation(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, c.operationURL(name))
	return err
}

// PollFunc adapts the client into the poller's status-check contract.
//
// Example:
//
//	poller, err := opwatch.New(client.PollFunc())
func (c *Client) PollFunc() opwatch.PollFunc {
	return func(ctx context.Context, name string) (*opwatch.Operation, error) {
		return c.GetOperation(ctx, name)
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil client. After Close, the
// client remains usable; new connections are established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// operationURL builds the resource URL for an operation name.
func (c *Client) operationURL(name string) string {
	return c.base + "/" + name
}

// do performs one request and returns the response body, mapping non-2xx
// responses to [*APIError].
func (c *Client) do(ctx context.Context, method, requestURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     decodeErrorBody(body),
		}
	}
	return body, nil
}

// decodeErrorBody extracts the google.rpc error envelope from a non-2xx
// body, if one is present. Returns nil for unrecognized bodies.
func decodeErrorBody(body []byte) *opwatch.Status {
	var envelope struct {
		Error *opwatch.Status `json:"error"`
	}
	if err := jsonAPI.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return envelope.Error
}
