// ABOUTME: Authenticated HTTP client for the Papayal wallet backend
// ABOUTME: Handles bearer headers, envelope unwrapping, and 401 refresh-and-retry

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const requestIDHeader = "x-request-id"

// TokenSource is the capability interface the pipeline depends on for
// authentication. The token store implements it; the pipeline never
// mutates token state directly.
type TokenSource interface {
	// AccessToken returns the current bearer token, or "" when logged out.
	// Synchronous; no I/O.
	AccessToken() string
	// Refresh exchanges the refresh token for a new pair and returns the
	// new access token, or "" when the session could not be recovered.
	// Concurrent callers share a single underlying exchange.
	Refresh(ctx context.Context) string
	// Clear drops all session state. Side-effect only.
	Clear(ctx context.Context)
}

// Client issues requests against the wallet API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *zap.Logger

	mu            sync.Mutex
	lastRequestID string
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches the auth capability interface.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout overrides the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LastRequestID returns the correlation id of the most recent response
// observed by this client, for diagnostics. Process-wide by design: the
// status command surfaces it regardless of which call produced it.
func (c *Client) LastRequestID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRequestID
}

func (c *Client) setLastRequestID(id string) {
	c.mu.Lock()
	c.lastRequestID = id
	c.mu.Unlock()
}

type requestOptions struct {
	headers      map[string]string
	body         any
	hasBody      bool
	rawBody      []byte
	rawType      string
	allowRefresh bool
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

// WithBody attaches a JSON payload.
func WithBody(body any) RequestOption {
	return func(o *requestOptions) {
		o.body = body
		o.hasBody = true
	}
}

// WithRawBody attaches a pre-encoded payload (e.g. multipart form data)
// with an explicit content type.
func WithRawBody(data []byte, contentType string) RequestOption {
	return func(o *requestOptions) {
		o.rawBody = data
		o.rawType = contentType
	}
}

// WithHeader sets a header override.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// WithoutRefresh disables the 401 refresh-and-retry cycle for this call.
// The refresh exchange itself always uses it, so a failed refresh can
// never trigger another refresh.
func WithoutRefresh() RequestOption {
	return func(o *requestOptions) { o.allowRefresh = false }
}

// Do executes one logical request and returns the response payload with
// the success envelope ({data, request_id}) already unwrapped. Errors are
// always *Error. A 401 with an expired/invalid token code triggers at most
// one deduplicated refresh followed by one retry of the identical request.
func (c *Client) Do(ctx context.Context, method, path string, opts ...RequestOption) (json.RawMessage, error) {
	o := requestOptions{allowRefresh: true}
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	var contentType string
	switch {
	case o.rawBody != nil:
		payload = o.rawBody
		contentType = o.rawType
	case o.hasBody:
		encoded, err := json.Marshal(o.body)
		if err != nil {
			return nil, &Error{
				Status: 0,
				API:    &APIError{Code: "encode_error", Message: "failed to encode request body"},
				cause:  err,
			}
		}
		payload = encoded
		contentType = "application/json"
	}

	raw, httpErr := c.attempt(ctx, method, path, payload, contentType, o.headers)
	if httpErr == nil {
		return raw, nil
	}

	// A transport failure carries no server verdict, so it never refreshes.
	if o.allowRefresh && shouldAttemptRefresh(httpErr) && c.tokens != nil {
		if token := c.tokens.Refresh(ctx); token != "" {
			// Retry the identical request once; headers are recomputed so
			// the new access token is picked up.
			raw, retryErr := c.attempt(ctx, method, path, payload, contentType, o.headers)
			if retryErr == nil {
				return raw, nil
			}
			httpErr = retryErr
		}
	}

	// A known-dead token must never stay current. Non-qualifying 401s
	// (e.g. a rejected login attempt) leave session state untouched.
	if shouldAttemptRefresh(httpErr) && c.tokens != nil {
		c.tokens.Clear(ctx)
	}
	return nil, httpErr
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     *APIError       `json:"error"`
}

// attempt performs a single dispatch with no refresh logic.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, contentType string, overrides map[string]string) (json.RawMessage, *Error) {
	url := path
	if !strings.HasPrefix(path, "http") {
		url = c.baseURL + path
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, networkError(err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range overrides {
		req.Header.Set(k, v)
	}
	if payload != nil && contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	c.logRequest(method, path, req.Header.Get("Authorization"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	// An unparsable body is treated as no body, never as an error.
	var root json.RawMessage
	if len(data) > 0 && json.Valid(data) {
		root = json.RawMessage(data)
	}
	var env envelope
	if root != nil {
		_ = json.Unmarshal(root, &env)
	}

	requestID := resp.Header.Get(requestIDHeader)
	if env.RequestID != "" {
		requestID = env.RequestID
	}
	c.setLastRequestID(requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Status:    resp.StatusCode,
			API:       env.Error,
			RequestID: requestID,
			Raw:       root,
		}
	}

	if resp.StatusCode == http.StatusNoContent || root == nil || isJSONNull(root) {
		return nil, nil
	}
	// Success bodies come either as {data, request_id} or bare.
	if env.Data != nil && !isJSONNull(env.Data) {
		return env.Data, nil
	}
	return root, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// logRequest records the outgoing call with a truncated bearer preview.
func (c *Client) logRequest(method, path, authorization string) {
	attached := "none"
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		preview := token
		if len(preview) > 12 {
			preview = preview[:12]
		}
		attached = "Bearer " + preview + "..."
	}
	c.log.Debug("http request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("auth", attached),
	)
}
