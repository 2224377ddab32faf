package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crmgate/crmgate/internal/lacrm"
)

// Composer builds field schemas by merging the static fixed-field table with
// custom-field definitions fetched through a [Caller]. Composer holds no
// state beyond the API handle and is safe for concurrent use.
type Composer struct {
	api Caller
}

// NewComposer returns a Composer that fetches custom fields through api.
func NewComposer(api Caller) *Composer {
	return &Composer{api: api}
}

// customFieldDef mirrors one entry of the CRM's GetCustomFields response.
type customFieldDef struct {
	FieldID    flexString        `json:"FieldId"`
	Name       string            `json:"Name"`
	Type       string            `json:"Type"`
	IsRequired bool              `json:"IsRequired"`
	Options    []json.RawMessage `json:"Options"`
}

// Compose returns the full field-descriptor list for kind: every fixed field
// followed by one descriptor per account custom field. For KindPipelineItem a
// non-empty pipelineID is mandatory, because custom fields are defined per
// pipeline; the check fails locally before any network call. For other kinds
// pipelineID is ignored.
//
// The result is computed fresh on every call; nothing is cached.
func (c *Composer) Compose(ctx context.Context, kind RecordKind, pipelineID string) ([]FieldDescriptor, error) {
	if !kind.IsValid() {
		return nil, &lacrm.ValidationError{Message: fmt.Sprintf("unknown record kind %q", kind)}
	}
	if kind == KindPipelineItem && pipelineID == "" {
		return nil, &lacrm.ValidationError{Message: "pipeline id is required for pipeline item schemas"}
	}

	params := map[string]any{"RecordType": string(kind)}
	if kind == KindPipelineItem {
		params["PipelineId"] = pipelineID
	}

	raw, err := c.api.Call(ctx, "GetCustomFields", params)
	if err != nil {
		return nil, fmt.Errorf("schema: fetch custom fields for %s: %w", kind, err)
	}

	var defs []customFieldDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("schema: decode custom fields for %s: %w", kind, err)
	}

	fields := FixedFields(kind)
	for _, def := range defs {
		fields = append(fields, def.descriptor())
	}
	return fields, nil
}

// descriptor translates a CRM custom-field definition into the uniform
// FieldDescriptor shape.
func (d customFieldDef) descriptor() FieldDescriptor {
	fd := FieldDescriptor{
		Name:        d.Name,
		Required:    d.IsRequired,
		Type:        d.Type,
		InputFormat: inputFormatFor(d.Type),
		IsCustom:    true,
		FieldID:     string(d.FieldID),
	}
	if choiceTypes[d.Type] {
		fd.ValidOptions = flattenOptions(d.Options)
	}
	return fd
}

// flattenOptions normalises the CRM's option list, whose entries may be
// plain strings or {"Value": ...} / {"Name": ...} objects, into plain
// strings. Unrecognised entries are skipped rather than failing the whole
// schema.
func flattenOptions(raw []json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Value *string `json:"Value"`
			Name  *string `json:"Name"`
		}
		if err := json.Unmarshal(r, &obj); err == nil {
			switch {
			case obj.Value != nil:
				out = append(out, *obj.Value)
			case obj.Name != nil:
				out = append(out, *obj.Name)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
