// Package lacrm implements the single-endpoint HTTP client for the
// Less Annoying CRM v2 API.
//
// Every logical CRM operation is a POST to one endpoint with a body of the
// form {"Function": ..., "Parameters": ...}; the raw API token travels in the
// Authorization header without a scheme prefix. Successful responses are bare
// JSON of operation-specific shape; failures are {ErrorCode, ErrorDescription}
// envelopes that may arrive with any HTTP status, including 200. See
// [Client.Call] and decodeResponse for how that inconsistency is handled.
//
// The client performs exactly one network attempt per call: no retries, no
// backoff, no circuit breaking. Outbound rate is bounded by a shared
// [ratelimit.Limiter]. Client is safe for concurrent use.
package lacrm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/crmgate/crmgate/internal/lacrm/ratelimit"
	"github.com/crmgate/crmgate/internal/observe"
)

// DefaultEndpoint is the production CRM API endpoint.
const DefaultEndpoint = "https://api.lessannoyingcrm.com/v2/"

// File describes an upload passed to [Client.CallWithFile].
type File struct {
	// Name is the filename reported to the CRM.
	Name string

	// Content is the raw file content.
	Content []byte

	// MIMEType is the declared content type (e.g. "text/plain").
	MIMEType string
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithEndpoint overrides the CRM API endpoint URL, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter replaces the rate limiter. Useful when several clients must
// share one window, or to loosen the limit in tests.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithMetrics replaces the metrics instance, avoiding the global meter
// provider in tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client issues CRM API calls. Create instances with [New]; the zero value is
// not usable. The token is the client's only credential and is immutable for
// the client's lifetime.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	metrics    *observe.Metrics
}

// New creates a Client authenticated with token. Returns an [*AuthError]
// when token is empty: a missing credential is an authentication failure, not
// a configuration nuance, so it carries the same type as an upstream 401.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, &AuthError{Reason: "API token must not be empty"}
	}
	c := &Client{
		endpoint:   DefaultEndpoint,
		token:      token,
		httpClient: &http.Client{},
		limiter:    ratelimit.New(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	return c, nil
}

// callEnvelope is the JSON body sent for non-multipart calls.
type callEnvelope struct {
	Function   string         `json:"Function"`
	Parameters map[string]any `json:"Parameters"`
}

// Call invokes the named CRM API function with the given wire-format
// parameter map (PascalCase keys, e.g. "Company Name") and returns the raw
// success payload. Parameter-name translation from tool-facing snake_case is
// the caller's job; the client never sees tool argument names.
//
// Errors: [*AuthError] on 401/403, [*APIError] on CRM-reported failures, and
// plain wrapped errors for transport or malformed-response failures.
func (c *Client) Call(ctx context.Context, function string, params map[string]any) (json.RawMessage, error) {
	if function == "" {
		return nil, &ValidationError{Message: "function name must not be empty"}
	}
	if params == nil {
		params = map[string]any{}
	}

	body, err := json.Marshal(callEnvelope{Function: function, Parameters: params})
	if err != nil {
		return nil, fmt.Errorf("lacrm: encode %s request: %w", function, err)
	}

	req := func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("lacrm: build %s request: %w", function, err)
		}
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	}
	return c.dispatch(ctx, function, req)
}

// Ping verifies connectivity and the credential by fetching the
// authenticated user. Used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Call(ctx, "GetUser", nil); err != nil {
		return fmt.Errorf("lacrm: ping: %w", err)
	}
	return nil
}

// CallWithFile invokes the named CRM API function as a multipart upload. The
// Function and Parameters travel as form fields (Parameters JSON-encoded)
// and the file content as a binary part named "File" with its declared MIME
// type. The Content-Type header is owned by the multipart writer so the
// boundary is set correctly.
func (c *Client) CallWithFile(ctx context.Context, function string, params map[string]any, file File) (json.RawMessage, error) {
	if function == "" {
		return nil, &ValidationError{Message: "function name must not be empty"}
	}
	if file.Name == "" {
		return nil, &ValidationError{Message: "file name must not be empty"}
	}
	if params == nil {
		params = map[string]any{}
	}

	paramJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("lacrm: encode %s parameters: %w", function, err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("Function", function); err != nil {
		return nil, fmt.Errorf("lacrm: write multipart field: %w", err)
	}
	if err := w.WriteField("Parameters", string(paramJSON)); err != nil {
		return nil, fmt.Errorf("lacrm: write multipart field: %w", err)
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="File"; filename=%q`, file.Name))
	if file.MIMEType != "" {
		hdr.Set("Content-Type", file.MIMEType)
	}
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("lacrm: create multipart file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("lacrm: write multipart file content: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lacrm: finalize multipart body: %w", err)
	}

	req := func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("lacrm: build %s request: %w", function, err)
		}
		r.Header.Set("Content-Type", w.FormDataContentType())
		return r, nil
	}
	return c.dispatch(ctx, function, req)
}

// dispatch acquires a rate-limit slot, issues the request built by buildReq,
// and feeds the raw response through decodeResponse. One attempt, no retry.
func (c *Client) dispatch(ctx context.Context, function string, buildReq func(context.Context) (*http.Request, error)) (json.RawMessage, error) {
	ctx, span := observe.StartSpan(ctx, "lacrm.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("crm.function", function)),
	)
	defer span.End()

	waitStart := time.Now()
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("lacrm: waiting for rate-limit slot: %w", err)
	}
	c.metrics.RateLimitWait.Record(ctx, time.Since(waitStart).Seconds())

	req, err := buildReq(ctx)
	if err != nil {
		return nil, err
	}
	// The CRM expects the raw token, not a "Bearer" scheme.
	req.Header.Set("Authorization", c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(ctx, function, "transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("lacrm: %s: %w", function, err)
	}
	defer resp.Body.Close()
	status := resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordAPIRequest(ctx, function, "transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("lacrm: %s: read response: %w", function, err)
	}

	elapsed := time.Since(start)
	c.metrics.RecordAPIRequest(ctx, function, strconv.Itoa(status), elapsed.Seconds())

	payload, err := decodeResponse(status, body)
	if err != nil {
		var code string
		switch e := err.(type) {
		case *APIError:
			code = e.Code
		case *AuthError:
			code = "auth"
		default:
			code = "unclassified"
		}
		c.metrics.RecordAPIError(ctx, function, code)
		observe.Logger(ctx).Debug("crm call failed",
			"function", function,
			"status", status,
			"duration", elapsed,
			"err", err,
		)
		return nil, err
	}

	observe.Logger(ctx).Debug("crm call ok",
		"function", function,
		"status", status,
		"duration", elapsed,
		"bytes", len(payload),
	)
	return payload, nil
}
