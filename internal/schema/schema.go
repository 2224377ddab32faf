// Package schema composes account-specific field schemas for CRM record
// kinds by merging a static fixed-field table with custom-field definitions
// fetched from the CRM at call time.
//
// Custom fields are account configuration and can change at any moment, so
// schemas are recomputed on every invocation and never cached — a composed
// schema is always current as of the call. The cost is one extra CRM round
// trip per discovery call.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
)

// RecordKind is the entity category a field schema applies to.
type RecordKind string

const (
	KindContact      RecordKind = "Contact"
	KindCompany      RecordKind = "Company"
	KindPipelineItem RecordKind = "PipelineItem"
)

// IsValid reports whether k is a recognised record kind.
func (k RecordKind) IsValid() bool {
	switch k {
	case KindContact, KindCompany, KindPipelineItem:
		return true
	}
	return false
}

// FieldDescriptor describes one field of a record kind in a uniform shape
// consumable by both the LLM and pre-flight validation.
type FieldDescriptor struct {
	// Name is the wire-format field name (e.g. "Company Name").
	Name string `json:"name"`

	// Required reports whether the CRM rejects writes that omit this field.
	Required bool `json:"required"`

	// Type is the CRM's field type (e.g. "Text", "Dropdown", "Date"),
	// copied verbatim for custom fields.
	Type string `json:"type"`

	// InputFormat is a human/LLM-readable hint describing how values for
	// this field must be formatted.
	InputFormat string `json:"input_format"`

	// ValidOptions lists the allowed values for choice-type fields
	// (Dropdown, RadioList, Checkbox). Empty for free-form fields.
	ValidOptions []string `json:"valid_options,omitempty"`

	// IsCustom reports whether the field is an account-specific custom
	// field rather than a built-in one.
	IsCustom bool `json:"is_custom"`

	// FieldID is the CRM's identifier for custom fields; empty for fixed
	// fields.
	FieldID string `json:"field_id,omitempty"`
}

// Caller is the single CRM API operation the composer needs. It is satisfied
// by *lacrm.Client and stubbed in tests.
type Caller interface {
	Call(ctx context.Context, function string, params map[string]any) (json.RawMessage, error)
}

// Partition splits fields into required and optional lists, preserving order.
// A convenience for caller-facing schema summaries.
func Partition(fields []FieldDescriptor) (required, optional []FieldDescriptor) {
	for _, f := range fields {
		if f.Required {
			required = append(required, f)
		} else {
			optional = append(optional, f)
		}
	}
	return required, optional
}

// flexString decodes a JSON string or number into a string. The CRM is not
// consistent about whether identifiers arrive quoted.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	return fmt.Errorf("schema: value %s is neither string nor number", data)
}
