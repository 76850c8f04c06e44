package wildduck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// TokenHeader is the request header carrying the access token.
const TokenHeader = "X-Access-Token"

const defaultUserAgent = "wdc"

// ResponseShape selects how a response body is decoded.
type ResponseShape int

const (
	// ShapeJSON parses the body as JSON into the caller's target.
	ShapeJSON ResponseShape = iota
	// ShapeText returns the body as a string.
	ShapeText
	// ShapeBytes returns the body untouched.
	ShapeBytes
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeJSON:
		return "json"
	case ShapeText:
		return "text"
	case ShapeBytes:
		return "bytes"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

func (s ResponseShape) accept() string {
	switch s {
	case ShapeText:
		return "text/plain"
	case ShapeBytes:
		return "*/*"
	default:
		return "application/json"
	}
}

// Client performs single HTTP round trips against the mail API.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger enables debug logging of every request.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit paces outgoing requests. A zero limit disables pacing.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a Client for the API rooted at baseURL.
// No network call is made.
func NewClient(token, baseURL string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base URL: unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		logger:     slog.New(discardHandler{}),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(discardHandler{})
	}

	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	header http.Header
}

// WithHeader sets a header on one request. It overrides the defaults.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.header.Set(key, value)
	}
}

// rawBody is sent verbatim instead of being JSON encoded.
type rawBody struct {
	contentType string
	data        []byte
}

// RawBody wraps bytes so they are sent as-is with the given content type.
func RawBody(contentType string, data []byte) any {
	return rawBody{contentType: contentType, data: data}
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out, opts)
}

// GetText issues a GET and returns the body as text.
func (c *Client) GetText(ctx context.Context, path string, opts ...RequestOption) (string, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil, ShapeText, opts)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetBytes issues a GET and returns the body bytes unchanged.
func (c *Client) GetBytes(ctx context.Context, path string, opts ...RequestOption) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, ShapeBytes, opts)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out, opts)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out, opts)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out, opts)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, opts []RequestOption) error {
	data, err := c.do(ctx, method, path, body, ShapeJSON, opts)
	if err != nil {
		return err
	}
	if out == nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		out = &SuccessResponse{}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Shape: ShapeJSON, Err: err}
	}
	return nil
}

// do performs exactly one round trip and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body any, shape ResponseShape, opts []RequestOption) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, body, shape, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: req.URL.String(), Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorResponse(resp.StatusCode, data)
	}

	return data, nil
}

// newRequest builds the request. Everything it touches is local to the call.
func (c *Client) newRequest(ctx context.Context, method, path string, body any, shape ResponseShape, opts []RequestOption) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType = "application/json"
	)
	switch b := body.(type) {
	case nil:
	case rawBody:
		reader = bytes.NewReader(b.data)
		if b.contentType != "" {
			contentType = b.contentType
		}
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", shape.accept())
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(TokenHeader, c.token)

	rc := requestConfig{header: http.Header{}}
	for _, opt := range opts {
		opt(&rc)
	}
	for key, values := range rc.header {
		req.Header[key] = values
	}

	return req, nil
}

// send waits for the limiter and executes the request.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
	}

	c.logger.DebugContext(ctx, "request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

// url joins the base URL and a path that may already carry a query string.
func (c *Client) url(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// discardHandler drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
