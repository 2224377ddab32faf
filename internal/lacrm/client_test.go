package lacrm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/crmgate/crmgate/internal/observe"
)

// newTestClient returns a Client pointed at a stub server, with metrics
// isolated from the global meter provider.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	c, err := New("test-token",
		WithEndpoint(srv.URL),
		WithMetrics(metrics),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// TestNewRequiresToken verifies that a missing credential is an AuthError at
// construction time.
func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	_, err := New("")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("New(\"\") error = %v, want *AuthError", err)
	}
}

// TestCallRoundTrip verifies the happy path: the request carries the
// {Function, Parameters} envelope and the raw token, and the success payload
// is returned unchanged.
func TestCallRoundTrip(t *testing.T) {
	t.Parallel()
	var gotAuth, gotContentType string
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ContactId":"789"}`))
	})

	payload, err := c.Call(context.Background(), "CreateContact", map[string]any{
		"Name":       "Jane",
		"AssignedTo": "42",
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if string(payload) != `{"ContactId":"789"}` {
		t.Errorf("payload = %s", payload)
	}

	if gotAuth != "test-token" {
		t.Errorf("Authorization = %q, want raw token without scheme prefix", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var env struct {
		Function   string         `json:"Function"`
		Parameters map[string]any `json:"Parameters"`
	}
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatalf("request body did not parse: %v", err)
	}
	if env.Function != "CreateContact" {
		t.Errorf("Function = %q", env.Function)
	}
	if env.Parameters["Name"] != "Jane" || env.Parameters["AssignedTo"] != "42" {
		t.Errorf("Parameters = %v", env.Parameters)
	}
}

// TestCallLogicalErrorWith200 verifies the round-trip failure path: an
// ErrorCode body behind HTTP 200 rejects with the CRM's error code.
func TestCallLogicalErrorWith200(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ErrorCode":"InvalidParameter","ErrorDescription":"Name required"}`))
	})

	_, err := c.Call(context.Background(), "CreateContact", map[string]any{"Name": ""})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Call() error = %v, want *APIError", err)
	}
	if apiErr.Code != "InvalidParameter" {
		t.Errorf("Code = %q, want InvalidParameter", apiErr.Code)
	}
}

// TestCallAuthRejected verifies that an upstream 401 surfaces as AuthError.
func TestCallAuthRejected(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Call(context.Background(), "GetUser", nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Call() error = %v, want *AuthError", err)
	}
}

// TestCallNilParameters verifies that nil params are sent as an empty object
// rather than JSON null.
func TestCallNilParameters(t *testing.T) {
	t.Parallel()
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	})

	if _, err := c.Call(context.Background(), "GetUser", nil); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatal(err)
	}
	if string(env["Parameters"]) != "{}" {
		t.Errorf("Parameters = %s, want {}", env["Parameters"])
	}
}

// TestCallTransportError verifies that network-level failures propagate as
// unclassified errors.
func TestCallTransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New("test-token", WithEndpoint(srv.URL), WithMetrics(metrics))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Call(context.Background(), "GetUser", nil)
	if err == nil {
		t.Fatal("expected transport error, got nil")
	}
	var apiErr *APIError
	var authErr *AuthError
	if errors.As(err, &apiErr) || errors.As(err, &authErr) {
		t.Errorf("transport error %v was classified, want unclassified", err)
	}
}

// TestCallWithFile verifies the multipart request shape: Function and
// Parameters form fields plus a binary File part carrying the declared
// filename, MIME type, and content.
func TestCallWithFile(t *testing.T) {
	t.Parallel()
	type filePart struct {
		filename    string
		contentType string
		content     []byte
	}
	var gotFunction, gotParams string
	var gotFile filePart

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mediaType, mtParams, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			t.Errorf("Content-Type = %q (%v), want multipart/form-data", r.Header.Get("Content-Type"), err)
			http.Error(w, "bad content type", http.StatusBadRequest)
			return
		}
		mr := multipart.NewReader(r.Body, mtParams["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("multipart read: %v", err)
				break
			}
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case "Function":
				gotFunction = string(data)
			case "Parameters":
				gotParams = string(data)
			case "File":
				gotFile = filePart{
					filename:    part.FileName(),
					contentType: part.Header.Get("Content-Type"),
					content:     data,
				}
			}
		}
		w.Write([]byte(`{"FileId":"55"}`))
	})

	content := []byte("hello, crm")
	payload, err := c.CallWithFile(context.Background(), "CreateFile",
		map[string]any{"ContactId": "1"},
		File{Name: "a.txt", Content: content, MIMEType: "text/plain"},
	)
	if err != nil {
		t.Fatalf("CallWithFile() error = %v", err)
	}
	if string(payload) != `{"FileId":"55"}` {
		t.Errorf("payload = %s", payload)
	}

	if gotFunction != "CreateFile" {
		t.Errorf("Function field = %q", gotFunction)
	}
	var params map[string]string
	if err := json.Unmarshal([]byte(gotParams), &params); err != nil {
		t.Fatalf("Parameters field %q did not parse: %v", gotParams, err)
	}
	if params["ContactId"] != "1" {
		t.Errorf("Parameters = %v, want ContactId=1", params)
	}
	if gotFile.filename != "a.txt" {
		t.Errorf("file name = %q, want a.txt", gotFile.filename)
	}
	if gotFile.contentType != "text/plain" {
		t.Errorf("file content type = %q, want text/plain", gotFile.contentType)
	}
	if string(gotFile.content) != string(content) {
		t.Errorf("file content = %q, want %q", gotFile.content, content)
	}
}

// TestCallWithFileRequiresName verifies the local pre-flight check.
func TestCallWithFileRequiresName(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for invalid input")
	})

	_, err := c.CallWithFile(context.Background(), "CreateFile", nil, File{})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

// TestCallEmptyFunction verifies the pre-flight function-name check.
func TestCallEmptyFunction(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for invalid input")
	})

	_, err := c.Call(context.Background(), "", nil)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}
