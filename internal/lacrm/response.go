package lacrm

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// errorBody mirrors the error envelope the CRM API returns. The same shape
// may arrive with any HTTP status, including 200.
type errorBody struct {
	ErrorCode        string          `json:"ErrorCode"`
	ErrorDescription string          `json:"ErrorDescription"`
	ErrorDetails     json.RawMessage `json:"ErrorDetails"`
}

// asAPIError attempts to read body as a CRM error envelope. Returns nil when
// the body is not a JSON object carrying a non-empty ErrorCode.
func asAPIError(body []byte) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.ErrorCode == "" {
		return nil
	}
	return &APIError{
		Code:        eb.ErrorCode,
		Description: eb.ErrorDescription,
		Details:     eb.ErrorDetails,
	}
}

// decodeResponse classifies a raw CRM API response into a success payload or
// a typed error. The classification rules, in order:
//
//  1. HTTP 401/403 → *AuthError, without touching the body.
//  2. Other non-2xx → *APIError from the {ErrorCode, ErrorDescription} body
//     when one parses, else a generic *APIError tagged "HTTP_<status>".
//  3. 2xx with a JSON object carrying ErrorCode → *APIError. The CRM reports
//     some logical failures with a 200 status, so the body must be checked
//     even on success statuses.
//  4. Otherwise the body is the success payload, returned verbatim — the CRM
//     does not wrap successful responses in an envelope.
//
// A 2xx body that is not valid JSON is an unclassified error.
func decodeResponse(status int, body []byte) (json.RawMessage, error) {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, &AuthError{Status: status}
	}

	if status < 200 || status > 299 {
		if apiErr := asAPIError(body); apiErr != nil {
			return nil, apiErr
		}
		return nil, &APIError{
			Code:        fmt.Sprintf("HTTP_%d", status),
			Description: http.StatusText(status),
		}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("lacrm: invalid JSON in HTTP %d response body", status)
	}
	if apiErr := asAPIError(body); apiErr != nil {
		return nil, apiErr
	}

	return json.RawMessage(body), nil
}
