package graphql

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// This function allows you to tweak the HTTP request after authentication
// headers are set. It might be useful to add tracing or tenant headers.
type RequestModifier func(*http.Request)

// Logger is the logging sink used by the client and the schema cache.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Request is a GraphQL request body.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Response is a GraphQL response with its data decoded as T.
type Response[T any] struct {
	Data       *T             `json:"data,omitempty"`
	Errors     Errors         `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// HasErrors reports whether the response carries at least one error.
func (r *Response[T]) HasErrors() bool {
	return len(r.Errors) > 0
}

// Client is a GraphQL client for the content API.
//
// # Immutable Pattern
//
// The Client's With* methods follow an immutable pattern: they return a new
// Client instance rather than modifying the receiver. Always use the returned
// Client:
//
//	client = client.WithLogger(log)  // Correct
//	client.WithLogger(log)            // Wrong - original client unchanged
//
// Each Client keeps its own diagnostic record of the most recent call.
type Client struct {
	settings        SettingsProvider
	httpClient      *http.Client
	requestModifier RequestModifier
	logger          Logger
	signer          Signer

	mu   sync.Mutex
	last *LastRequestInfo
}

// NewClient creates a client reading its endpoint and credentials from settings.
// If httpClient is nil, then http.DefaultClient is used.
func NewClient(settings SettingsProvider, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		settings:   settings,
		httpClient: httpClient,
		logger:     nopLogger{},
	}
}

// Execute sends req and returns the raw response. It never fails: HTTP and
// connection failures are reported as a synthetic response with one error.
// The diagnostic record returned by LastRequest is replaced on every call.
func (c *Client) Execute(ctx context.Context, req Request) *Response[json.RawMessage] {
	settings := c.settings.Settings()
	info := &LastRequestInfo{
		URL:    settings.Endpoint,
		Method: http.MethodPost,
	}
	start := time.Now()
	defer func() {
		info.Duration = time.Since(start)
		c.record(info)
		c.logger.Debugf("graphql %s %s: status %d in %s", info.Method, info.URL, info.StatusCode, info.Duration)
	}()

	request, reqBody, err := c.buildRequest(ctx, settings, req)
	info.RequestBody = string(reqBody)
	if err != nil {
		return connectionError(err)
	}
	info.RequestHeaders = flattenHeader(request.Header)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return connectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	info.StatusCode = resp.StatusCode
	info.ResponseHeaders = flattenHeader(resp.Header)

	body, err := readBody(resp)
	info.ResponseBody = string(body)
	if err != nil {
		return connectionError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Response[json.RawMessage]{
			Errors: Errors{{
				Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusReason(resp)),
				Extensions: map[string]any{"code": ErrHTTPStatus},
			}},
		}
	}

	out, err := DecodeResponse(body)
	if err != nil {
		return &Response[json.RawMessage]{Errors: newSimpleErrors(ErrJsonDecode, err)}
	}
	return out
}

// ExecuteAs executes req with c and decodes the data payload into T. Errors
// and extensions are passed through unchanged. The returned error is non-nil
// only when data is present but cannot be decoded into T.
func ExecuteAs[T any](ctx context.Context, c *Client, req Request) (*Response[T], error) {
	raw := c.Execute(ctx, req)
	out := &Response[T]{
		Errors:     raw.Errors,
		Extensions: raw.Extensions,
	}
	if raw.Data == nil || gjson.ParseBytes(*raw.Data).Type == gjson.Null {
		return out, nil
	}
	var data T
	if err := json.Unmarshal(*raw.Data, &data); err != nil {
		return out, fmt.Errorf("problem decoding data: %w", err)
	}
	out.Data = &data
	return out, nil
}

const connectionProbeQuery = `{ __schema { queryType { name } } }`

// TestConnection runs a minimal introspection probe against the endpoint.
func (c *Client) TestConnection(ctx context.Context) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			ok, msg = false, fmt.Sprintf("Connection failed: %v", r)
		}
	}()
	resp := c.Execute(ctx, Request{Query: connectionProbeQuery})
	if resp.HasErrors() {
		return false, "Connection failed: " + resp.Errors[0].Message
	}
	if resp.Data != nil {
		if name := gjson.GetBytes(*resp.Data, "__schema.queryType.name"); name.Exists() {
			return true, fmt.Sprintf("Connected successfully (query type: %s)", name.String())
		}
	}
	return true, "Connected successfully"
}

// BuildRequest constructs the HTTP request for req using the current settings.
// It returns the HTTP request and the request body bytes.
func (c *Client) BuildRequest(ctx context.Context, req Request) (*http.Request, []byte, error) {
	return c.buildRequest(ctx, c.settings.Settings(), req)
}

func (c *Client) buildRequest(
	ctx context.Context,
	settings Settings,
	req Request,
) (*http.Request, []byte, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("problem encoding request: %w", err)
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		settings.Endpoint,
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, reqBody, err
	}
	request.Header.Set("Content-Type", "application/json")
	authorize(request, settings, reqBody, c.signer)

	if c.requestModifier != nil {
		c.requestModifier(request)
	}

	return request, reqBody, nil
}

// DecodeResponse decodes a GraphQL JSON response body. An empty or null body
// decodes to an empty response.
func DecodeResponse(body []byte) (*Response[json.RawMessage], error) {
	out := &Response[json.RawMessage]{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return nil, fmt.Errorf("problem decoding response: %w", err)
	}
	return out, nil
}

// handleGzipResponse wraps the response body reader with a gzip decompressor
// if the Content-Encoding header indicates gzip compression.
func handleGzipResponse(
	resp *http.Response,
	bodyReader io.Reader,
) (io.ReadCloser, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, fmt.Errorf("problem trying to create gzip reader: %w", err)
		}
		return gr, nil
	}
	return io.NopCloser(bodyReader), nil
}

func readBody(resp *http.Response) ([]byte, error) {
	r, err := handleGzipResponse(resp, resp.Body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

// statusReason returns the standard reason phrase of the response status,
// falling back to the phrase the server sent.
func statusReason(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	_, reason, _ := strings.Cut(resp.Status, " ")
	return strings.TrimSpace(reason)
}

func connectionError(err error) *Response[json.RawMessage] {
	return &Response[json.RawMessage]{
		Errors: Errors{{
			Message:    "Connection error: " + err.Error(),
			Extensions: map[string]any{"code": ErrConnection},
		}},
	}
}

// clone creates a copy of the Client with all configuration preserved and a
// fresh diagnostic record.
func (c *Client) clone() *Client {
	return &Client{
		settings:        c.settings,
		httpClient:      c.httpClient,
		requestModifier: c.requestModifier,
		logger:          c.logger,
		signer:          c.signer,
	}
}

// WithRequestModifier returns a new Client with the request modifier set.
// The modifier runs after authentication headers are attached.
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	clone := c.clone()
	clone.requestModifier = f
	return clone
}

// WithLogger returns a new Client logging to l.
func (c *Client) WithLogger(l Logger) *Client {
	clone := c.clone()
	if l == nil {
		l = nopLogger{}
	}
	clone.logger = l
	return clone
}

// WithSigner returns a new Client using s for HMAC signing.
func (c *Client) WithSigner(s Signer) *Client {
	clone := c.clone()
	clone.signer = s
	return clone
}

// Errors represents the "errors" array in a response from a GraphQL server.
// If returned via error interface, the slice is expected to contain at least 1 element.
//
// Specification: https://facebook.github.io/graphql/#sec-Errors.
type Errors []Error

type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
	Locations  []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations,omitempty"`
}

// Error implements error interface.
func (e Error) Error() string {
	return fmt.Sprintf("Message: %s, Locations: %+v", e.Message, e.Locations)
}

// Error implements error interface.
func (e Errors) Error() string {
	b := strings.Builder{}
	for _, err := range e {
		b.WriteString(err.Error())
	}
	return b.String()
}

// GetCode returns the error code from the extensions, or an empty string if
// not present.
func (e Error) GetCode() string {
	if e.Extensions == nil {
		return ""
	}
	code, ok := e.Extensions["code"].(string)
	if !ok {
		return ""
	}
	return code
}

// newError creates a new Error with the given code and underlying error.
func newError(code string, err error) Error {
	return Error{
		Message: err.Error(),
		Extensions: map[string]any{
			"code": code,
		},
	}
}

// newSimpleErrors creates an Errors slice with a single error, wrapping the
// given error with the specified code.
func newSimpleErrors(code string, err error) Errors {
	return Errors{newError(code, err)}
}

const (
	ErrHTTPStatus = "http_error"
	ErrConnection = "connection_error"
	ErrJsonDecode = "json_decode_error"
)
