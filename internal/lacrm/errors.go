package lacrm

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AuthError indicates a missing or rejected CRM API credential. The CRM
// signals rejection with HTTP 401 or 403; crmgate raises the same error type
// locally when no token is configured.
type AuthError struct {
	// Status is the HTTP status that triggered the error (401 or 403), or 0
	// when the error was raised locally before any request was sent.
	Status int

	// Reason is an optional human-readable explanation for locally raised
	// errors.
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("lacrm: authentication rejected by CRM API (HTTP %d %s); check the API token", e.Status, http.StatusText(e.Status))
	}
	if e.Reason != "" {
		return "lacrm: authentication failed: " + e.Reason
	}
	return "lacrm: authentication failed"
}

// APIError is a logical failure reported by the CRM API. The CRM reports
// these as {ErrorCode, ErrorDescription} bodies — sometimes with HTTP 200, so
// Code is the reliable signal, not the status line.
type APIError struct {
	// Code is the machine-readable CRM error code (e.g. "InvalidParameter"),
	// or a synthesized "HTTP_<status>" tag when the CRM returned a non-2xx
	// status without a parseable error body.
	Code string

	// Description is the human-readable error description from the CRM.
	Description string

	// Details carries any extra error payload verbatim, when present.
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return "lacrm: api error " + e.Code
	}
	return fmt.Sprintf("lacrm: api error %s: %s", e.Code, e.Description)
}

// ValidationError indicates a local pre-flight check failed before any
// network call was made.
type ValidationError struct {
	// Message describes what was invalid about the input.
	Message string
}

func (e *ValidationError) Error() string {
	return "lacrm: validation: " + e.Message
}
