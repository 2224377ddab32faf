package discovery

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/crmgate/crmgate/internal/lacrm"
	"github.com/crmgate/crmgate/internal/schema"
	"github.com/crmgate/crmgate/internal/tools"
)

type stubAPI struct {
	calls   []stubCall
	payload json.RawMessage
	err     error
}

type stubCall struct {
	function string
	params   map[string]any
}

func (s *stubAPI) Call(_ context.Context, function string, params map[string]any) (json.RawMessage, error) {
	s.calls = append(s.calls, stubCall{function: function, params: params})
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func (s *stubAPI) CallWithFile(_ context.Context, function string, params map[string]any, _ lacrm.File) (json.RawMessage, error) {
	return s.Call(context.Background(), function, params)
}

// TestContactSchemaStructured verifies the schema tool returns structured
// output with fixed and custom fields partitioned by requiredness.
func TestContactSchemaStructured(t *testing.T) {
	t.Parallel()
	api := &stubAPI{payload: json.RawMessage(`[
		{"FieldId": 301, "Name": "Industry", "Type": "Dropdown", "IsRequired": true,
		 "Options": ["Retail", "Software"]}
	]`)}
	handler := contactSchema(tools.Deps{API: api}, schema.NewComposer(api))

	res, out, err := handler(context.Background(), nil, contactSchemaArgs{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result with structured output, got %+v", res)
	}

	if out.Kind != string(schema.KindContact) {
		t.Errorf("kind = %q, want %q", out.Kind, schema.KindContact)
	}
	if len(out.Required) == 0 || len(out.Optional) == 0 {
		t.Fatalf("required/optional = %d/%d, want both populated", len(out.Required), len(out.Optional))
	}

	var industry *schema.FieldDescriptor
	for i := range out.Required {
		if out.Required[i].Name == "Industry" {
			industry = &out.Required[i]
		}
	}
	if industry == nil {
		t.Fatal("required custom field Industry missing from schema")
	}
	if !industry.IsCustom || industry.FieldID != "301" {
		t.Errorf("Industry = %+v, want custom field with id 301", industry)
	}
}

// TestPipelineSchemaRequiresID verifies the pipeline id check happens before
// any CRM traffic.
func TestPipelineSchemaRequiresID(t *testing.T) {
	t.Parallel()
	api := &stubAPI{}
	handler := pipelineSchema(tools.Deps{API: api}, schema.NewComposer(api))

	res, _, err := handler(context.Background(), nil, pipelineSchemaArgs{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res == nil || !res.IsError {
		t.Fatal("expected a failure result")
	}
	if len(api.calls) != 0 {
		t.Errorf("CRM calls = %d, want 0", len(api.calls))
	}
}

// TestPipelineSchemaScoped verifies the pipeline id flows into the custom
// field fetch and back out in the structured result.
func TestPipelineSchemaScoped(t *testing.T) {
	t.Parallel()
	api := &stubAPI{payload: json.RawMessage(`[]`)}
	handler := pipelineSchema(tools.Deps{API: api}, schema.NewComposer(api))

	_, out, err := handler(context.Background(), nil, pipelineSchemaArgs{PipelineID: "88"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if len(api.calls) != 1 {
		t.Fatalf("CRM calls = %d, want 1", len(api.calls))
	}
	if api.calls[0].params["PipelineId"] != "88" {
		t.Errorf("PipelineId param = %v", api.calls[0].params["PipelineId"])
	}
	if out.PipelineID != "88" {
		t.Errorf("result pipeline id = %q, want 88", out.PipelineID)
	}
}

// TestSchemaFetchFailure verifies a CRM error surfaces as a failure result
// rather than a handler error.
func TestSchemaFetchFailure(t *testing.T) {
	t.Parallel()
	api := &stubAPI{err: &lacrm.APIError{Code: "ServerError"}}
	handler := companySchema(tools.Deps{API: api}, schema.NewComposer(api))

	res, _, err := handler(context.Background(), nil, companySchemaArgs{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res == nil || !res.IsError {
		t.Fatal("expected a failure result")
	}
}

// TestGetUser verifies the user lookup calls the CRM with no parameters.
func TestGetUser(t *testing.T) {
	t.Parallel()
	api := &stubAPI{payload: json.RawMessage(`{"UserId":"5"}`)}
	handler := getUser(tools.Deps{API: api})

	res, _, err := handler(context.Background(), nil, getUserArgs{})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatal("unexpected failure result")
	}
	if api.calls[0].function != "GetUser" {
		t.Errorf("function = %q, want GetUser", api.calls[0].function)
	}
}
