package wildduck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// fakeAPI records every request and answers with a fixed response.
type fakeAPI struct {
	mu          sync.Mutex
	requests    []recordedRequest
	status      int
	contentType string
	body        []byte
	server      *httptest.Server
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{status: status, contentType: "application/json", body: []byte(body)}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.EscapedPath(),
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     data,
		})
		contentType := f.contentType
		f.mu.Unlock()
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(f.status)
		_, _ = w.Write(f.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient("T", f.server.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func (f *fakeAPI) setContentType(ct string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentType = ct
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "no request reached the server")
	return f.requests[len(f.requests)-1]
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		baseURL string
		wantErr error
	}{
		{name: "missing token", token: "", baseURL: "https://h/api", wantErr: ErrMissingToken},
		{name: "missing base URL", token: "T", baseURL: "", wantErr: ErrMissingBaseURL},
		{name: "only slashes", token: "T", baseURL: "///", wantErr: ErrMissingBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.token, tt.baseURL)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewClientRejectsUnsupportedScheme(t *testing.T) {
	_, err := NewClient("T", "ftp://h/api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestNewClientTrimsTrailingSlashes(t *testing.T) {
	c, err := NewClient("T", "https://h/api///")
	require.NoError(t, err)
	assert.Equal(t, "https://h/api", c.BaseURL())
}

func TestGetEndToEnd(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"results":[]}`)
	c := api.client(t)

	var out map[string]any
	err := c.Get(context.Background(), "/users/12345/mailboxes", &out)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"success": true, "results": []any{}}, out)
	assert.Equal(t, 1, api.count())

	req := api.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/users/12345/mailboxes", req.Path)
	assert.Empty(t, req.RawQuery)
	assert.Equal(t, "T", req.Header.Get(TokenHeader))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestTrailingSlashBaseURLJoinsOnce(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	c, err := NewClient("T", api.server.URL+"/api/")
	require.NoError(t, err)

	require.NoError(t, c.Get(context.Background(), "/users", nil))
	assert.Equal(t, "/api/users", api.last(t).Path)
}

func TestPathWithoutLeadingSlash(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	c := api.client(t)

	require.NoError(t, c.Get(context.Background(), "users", nil))
	assert.Equal(t, "/api/users", api.last(t).Path)
}

func TestWithHeaderOverridesDefaults(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	c := api.client(t)

	err := c.Get(context.Background(), "/users/me", nil,
		WithHeader(TokenHeader, "other"),
		WithHeader("Accept", "application/vnd.test"),
		WithHeader("X-Trace", "abc"),
	)
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, "other", req.Header.Get(TokenHeader))
	assert.Equal(t, "application/vnd.test", req.Header.Get("Accept"))
	assert.Equal(t, "abc", req.Header.Get("X-Trace"))
}

func TestWithUserAgent(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	c := api.client(t, WithUserAgent("wdc/1.2.3"))

	require.NoError(t, c.Get(context.Background(), "/users/me", nil))
	assert.Equal(t, "wdc/1.2.3", api.last(t).Header.Get("User-Agent"))
}

func TestPostEncodesJSONBody(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true,"id":"abc"}`)
	c := api.client(t)

	body := map[string]any{"path": "INBOX/Receipts", "hidden": false}
	var out IDResponse
	require.NoError(t, c.Post(context.Background(), "/users/me/mailboxes", body, &out))

	assert.Equal(t, "abc", out.ID)
	req := api.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"path":"INBOX/Receipts","hidden":false}`, string(req.Body))
}

func TestRawBodyIsSentVerbatim(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"success":true}`)
	c := api.client(t)

	raw := []byte("Subject: hi\r\n\r\nbody\r\n")
	require.NoError(t, c.Post(context.Background(), "/x", RawBody("message/rfc822", raw), nil))

	req := api.last(t)
	assert.Equal(t, "message/rfc822", req.Header.Get("Content-Type"))
	assert.Equal(t, raw, req.Body)
}

func TestResponseShapes(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, "plain text body")
		api.setContentType("text/plain")
		c := api.client(t)

		got, err := c.GetText(context.Background(), "/x")
		require.NoError(t, err)
		assert.Equal(t, "plain text body", got)
		assert.Equal(t, "text/plain", api.last(t).Header.Get("Accept"))
	})

	t.Run("bytes are returned unchanged", func(t *testing.T) {
		payload := make([]byte, 256)
		for i := range payload {
			payload[i] = byte(i)
		}
		api := newFakeAPI(t, http.StatusOK, string(payload))
		api.setContentType("application/octet-stream")
		c := api.client(t)

		got, err := c.GetBytes(context.Background(), "/x")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Equal(t, "*/*", api.last(t).Header.Get("Accept"))
	})

	t.Run("nil target accepts success document", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, `{"success":true}`)
		c := api.client(t)

		assert.NoError(t, c.Delete(context.Background(), "/x", nil))
	})

	t.Run("nil target accepts empty body", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, "")
		c := api.client(t)

		assert.NoError(t, c.Put(context.Background(), "/x", map[string]any{"name": "a"}, nil))
	})

	t.Run("nil target rejects non-json body", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, "<html><body>proxy</body></html>")
		api.setContentType("text/html")
		c := api.client(t)

		err := c.Delete(context.Background(), "/x", nil)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, ShapeJSON, decodeErr.Shape)
	})
}

func TestDecodeError(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, "not json")
	c := api.client(t)

	var out map[string]any
	err := c.Get(context.Background(), "/x", &out)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, ShapeJSON, decodeErr.Shape)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantCode    string
		sentinel    error
	}{
		{
			name:        "json error document",
			status:      http.StatusNotFound,
			body:        `{"error":"This user does not exist","code":"UserNotFound"}`,
			wantMessage: "This user does not exist",
			wantCode:    "UserNotFound",
			sentinel:    ErrNotFound,
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error":"Invalid access token","code":"InvalidToken"}`,
			wantMessage: "Invalid access token",
			wantCode:    "InvalidToken",
			sentinel:    ErrUnauthorized,
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        `{"error":"Not allowed"}`,
			wantMessage: "Not allowed",
			sentinel:    ErrForbidden,
		},
		{
			name:        "conflict",
			status:      http.StatusConflict,
			body:        `{"error":"This username already exists","code":"UserExistsError"}`,
			wantMessage: "This username already exists",
			wantCode:    "UserExistsError",
			sentinel:    ErrConflict,
		},
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{"error":"Too many requests"}`,
			wantMessage: "Too many requests",
			sentinel:    ErrRateLimited,
		},
		{
			name:        "non-json body",
			status:      http.StatusBadGateway,
			body:        "upstream unavailable\n",
			wantMessage: "upstream unavailable",
		},
		{
			name:        "json body without error field",
			status:      http.StatusInternalServerError,
			body:        `{"success":true}`,
			wantMessage: `{"success":true}`,
		},
		{
			name:        "empty body",
			status:      http.StatusInternalServerError,
			body:        "",
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, tt.status, tt.body)
			c := api.client(t)

			var out map[string]any
			err := c.Get(context.Background(), "/users/me", &out)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, []byte(tt.body), apiErr.Body)
			assert.Nil(t, out)

			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			for _, other := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrRateLimited} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "This user does not exist", Code: "UserNotFound"}
	assert.Equal(t, "HTTP 404: This user does not exist (UserNotFound)", err.Error())

	err = &APIError{StatusCode: 502, Message: "Bad Gateway"}
	assert.Equal(t, "HTTP 502: Bad Gateway", err.Error())
}

func TestTransportErrorWhenServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c, err := NewClient("T", baseURL)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/users/me", nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Equal(t, baseURL+"/users/me", transportErr.URL)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestTransportErrorOnCancelledContext(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	c := api.client(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/users/me", nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, api.count())
}

func TestRateLimitWaitHonoursContext(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	c := api.client(t, WithRateLimit(1, 1))
	require.NotNil(t, c.limiter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/users/me", nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 0, api.count())
}

func TestRateLimitZeroDisablesPacing(t *testing.T) {
	c, err := NewClient("T", "https://h/api", WithRateLimit(0, 5))
	require.NoError(t, err)
	assert.Nil(t, c.limiter)
}

func TestLoggerNeverRecordsToken(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{}`)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := NewClient("secret-token", api.server.URL, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, c.Get(context.Background(), "/users/me", nil))

	logged := buf.String()
	assert.Contains(t, logged, "method=GET")
	assert.Contains(t, logged, "path=/users/me")
	assert.Contains(t, logged, "status=200")
	assert.NotContains(t, logged, "secret-token")
}

func TestConcurrentRequestsAreIndependent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"path":  r.URL.Path,
			"extra": r.Header.Get("X-Request"),
		})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient("T", srv.URL)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/users/u%d", i)
			var out map[string]string
			if err := c.Get(context.Background(), path, &out, WithHeader("X-Request", path)); err != nil {
				errs <- err
				return
			}
			if out["path"] != path || out["extra"] != path {
				errs <- fmt.Errorf("request %d got %v", i, out)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestResponseShapeString(t *testing.T) {
	assert.Equal(t, "json", ShapeJSON.String())
	assert.Equal(t, "text", ShapeText.String())
	assert.Equal(t, "bytes", ShapeBytes.String())
	assert.Equal(t, "shape(9)", ResponseShape(9).String())
}
