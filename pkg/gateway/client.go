// Package gateway is the HTTP client for the query gateway. The gateway
// owns the real database and storage connections; this client only ships
// statements and storage commands to it and decodes the JSON replies.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/quarrylabs/quarry/pkg/classify"
	"github.com/quarrylabs/quarry/pkg/core"
)

const defaultTimeout = 30 * time.Second

// Client talks to one gateway instance.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the gateway at baseURL.
// The default HTTP client carries a 30 second timeout.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// queryRequest is the SQL endpoint body. DSN is only set for transient
// introspection reads; it overrides the stored connection's DSN for this
// one request and is never persisted.
type queryRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params,omitempty"`
	DSN    string `json:"dsn,omitempty"`
}

// BackendError reports a non-2xx gateway response. Message carries the
// backend's own error text when the body provided one.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Query runs a read statement on the connection's query endpoint.
func (c *Client) Query(ctx context.Context, connectionID, query string, params ...any) (*core.QueryResult, error) {
	return c.sql(ctx, connectionID, "query", queryRequest{Query: query, Params: params})
}

// Execute runs a write statement on the connection's execute endpoint.
func (c *Client) Execute(ctx context.Context, connectionID, query string, params ...any) (*core.QueryResult, error) {
	return c.sql(ctx, connectionID, "execute", queryRequest{Query: query, Params: params})
}

// QueryWithDSN runs a read statement against a different DSN than the one
// stored for the connection. The introspector uses this to inspect sibling
// databases without mutating the saved connection.
func (c *Client) QueryWithDSN(ctx context.Context, connectionID, dsn, query string) (*core.QueryResult, error) {
	return c.sql(ctx, connectionID, "query", queryRequest{Query: query, DSN: dsn})
}

// Run classifies the statement and dispatches to Query or Execute.
func (c *Client) Run(ctx context.Context, connectionID, query string, params ...any) (*core.QueryResult, error) {
	kind := classify.SQL(query)
	c.logger.Debug("routing statement", "connection", connectionID, "kind", kind)
	if kind == classify.Read {
		return c.Query(ctx, connectionID, query, params...)
	}
	return c.Execute(ctx, connectionID, query, params...)
}

func (c *Client) sql(ctx context.Context, connectionID, endpoint string, body queryRequest) (*core.QueryResult, error) {
	c.logger.Debug("gateway request", "endpoint", endpoint, "connection", connectionID)

	var result core.QueryResult
	if err := c.PostJSON(ctx, fmt.Sprintf("/sql/%s/%s", connectionID, endpoint), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostJSON posts body as JSON and decodes a 2xx response into out.
// out may be nil when the caller only cares about success.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// PostMultipart posts a multipart/form-data body with the given fields and
// one file part, then decodes a 2xx response into out.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, r io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy upload body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.backendError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// backendError turns a non-2xx response into a BackendError, preferring the
// body's {"message": ...} over the bare status text.
func (c *Client) backendError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(body) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			msg = payload.Message
		}
	}

	c.logger.Debug("gateway error", "status", resp.StatusCode, "message", msg)
	return &BackendError{StatusCode: resp.StatusCode, Message: msg}
}
