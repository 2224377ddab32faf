// Package tools provides the shared dependency bundle and result helpers
// used by all crmgate MCP tool packages. Each sub-package exports a Register
// function that adds its tool family to an MCP server.
//
// Tool handlers own the translation between their snake_case argument names
// and the CRM's wire-format field names (PascalCase, sometimes containing
// spaces, e.g. "Company Name"); the API client below them only ever sees
// wire-format parameter maps.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/lacrm"
	"github.com/crmgate/crmgate/internal/observe"
)

// API is the CRM call surface tool handlers depend on. It is satisfied by
// *lacrm.Client and stubbed in tests.
type API interface {
	Call(ctx context.Context, function string, params map[string]any) (json.RawMessage, error)
	CallWithFile(ctx context.Context, function string, params map[string]any, file lacrm.File) (json.RawMessage, error)
}

// Deps carries the dependencies injected into every tool family at
// registration time. There is no hidden global state: one API client is
// constructed at startup and passed here explicitly.
type Deps struct {
	// API issues CRM calls.
	API API

	// Metrics records tool invocation counters and latency. May be nil in
	// tests.
	Metrics *observe.Metrics
}

// Record notes one finished tool invocation for metrics. Safe to call with
// nil Metrics.
func (d Deps) Record(ctx context.Context, tool string, start time.Time, ok bool) {
	if d.Metrics == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	d.Metrics.RecordToolCall(ctx, tool, status, time.Since(start).Seconds())
}

// RawResult wraps a raw CRM payload as the tool's text content. The payload
// is passed through verbatim; the CRM's response shapes vary per operation
// and are not unified.
func RawResult(payload json.RawMessage) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(payload)}},
	}
}

// TextResult wraps a plain message as the tool's text content.
func TextResult(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
	}
}

// FailResult builds a tool failure from a plain message, for local argument
// checks that fail before any CRM call.
func FailResult(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
	}
}

// ErrorResult renders err as a structured tool failure the calling agent can
// read and correct from. Failures are never surfaced as empty successes.
func ErrorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: ErrorMessage(err)}},
	}
}

// ErrorMessage translates the typed error taxonomy into an agent-readable
// message with enough detail for programmatic self-correction.
func ErrorMessage(err error) string {
	var apiErr *lacrm.APIError
	if errors.As(err, &apiErr) {
		msg := "CRM error " + apiErr.Code
		if apiErr.Description != "" {
			msg += ": " + apiErr.Description
		}
		return msg
	}
	var authErr *lacrm.AuthError
	if errors.As(err, &authErr) {
		return "CRM authentication failed; the configured API token is missing or was rejected"
	}
	var valErr *lacrm.ValidationError
	if errors.As(err, &valErr) {
		return "invalid input: " + valErr.Message
	}
	return "call failed: " + err.Error()
}

// SetIfNotEmpty assigns value to params[key] when value is non-empty. CRM
// edit functions treat present-but-empty fields as "clear this value", so
// omitted tool arguments must stay out of the parameter map entirely.
func SetIfNotEmpty(params map[string]any, key, value string) {
	if value != "" {
		params[key] = value
	}
}

// MergeCustomFields copies wire-format custom-field values into params.
// Custom field names come from the discovery tools; they share the parameter
// map with fixed fields because the CRM accepts both in one call.
func MergeCustomFields(params map[string]any, custom map[string]any) {
	for k, v := range custom {
		params[k] = v
	}
}
