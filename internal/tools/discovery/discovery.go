// Package discovery provides the MCP tools that describe the CRM account's
// own shape: which fields (fixed and custom) a record kind accepts, and who
// the authenticated user is. Agents are expected to call these before
// writing records with custom fields.
package discovery

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/schema"
	"github.com/crmgate/crmgate/internal/tools"
)

// schemaResult is the structured output of the schema discovery tools.
type schemaResult struct {
	Kind       string                   `json:"kind" jsonschema:"Record kind the schema describes"`
	PipelineID string                   `json:"pipeline_id,omitempty" jsonschema:"Pipeline the schema was scoped to, for pipeline items"`
	Required   []schema.FieldDescriptor `json:"required" jsonschema:"Fields that must be provided when creating a record"`
	Optional   []schema.FieldDescriptor `json:"optional" jsonschema:"Fields that may be provided"`
}

type contactSchemaArgs struct{}

type companySchemaArgs struct{}

type pipelineSchemaArgs struct {
	PipelineID string `json:"pipeline_id" jsonschema:"Id of the pipeline whose item fields to describe"`
}

type getUserArgs struct{}

// Register adds the discovery tools to s.
func Register(s *mcpsdk.Server, d tools.Deps, c *schema.Composer) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "get_contact_schema",
		Description: "Describe the fields, including account-specific custom fields, accepted when creating or editing a contact.",
	}, contactSchema(d, c))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "get_company_schema",
		Description: "Describe the fields, including account-specific custom fields, accepted when creating or editing a company.",
	}, companySchema(d, c))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "get_pipeline_schema",
		Description: "Describe the fields, including pipeline-specific custom fields, accepted on items in a given pipeline.",
	}, pipelineSchema(d, c))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "get_user",
		Description: "Return the authenticated CRM user. Useful to verify credentials and discover the user id for assignments.",
	}, getUser(d))
}

func compose(ctx context.Context, c *schema.Composer, kind schema.RecordKind, pipelineID string) (schemaResult, error) {
	fields, err := c.Compose(ctx, kind, pipelineID)
	if err != nil {
		return schemaResult{}, err
	}
	required, optional := schema.Partition(fields)
	return schemaResult{
		Kind:       string(kind),
		PipelineID: pipelineID,
		Required:   required,
		Optional:   optional,
	}, nil
}

func contactSchema(d tools.Deps, c *schema.Composer) func(context.Context, *mcpsdk.CallToolRequest, contactSchemaArgs) (*mcpsdk.CallToolResult, schemaResult, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, _ contactSchemaArgs) (*mcpsdk.CallToolResult, schemaResult, error) {
		start := time.Now()
		res, err := compose(ctx, c, schema.KindContact, "")
		if err != nil {
			d.Record(ctx, "get_contact_schema", start, false)
			return tools.ErrorResult(err), schemaResult{}, nil
		}
		d.Record(ctx, "get_contact_schema", start, true)
		return nil, res, nil
	}
}

func companySchema(d tools.Deps, c *schema.Composer) func(context.Context, *mcpsdk.CallToolRequest, companySchemaArgs) (*mcpsdk.CallToolResult, schemaResult, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, _ companySchemaArgs) (*mcpsdk.CallToolResult, schemaResult, error) {
		start := time.Now()
		res, err := compose(ctx, c, schema.KindCompany, "")
		if err != nil {
			d.Record(ctx, "get_company_schema", start, false)
			return tools.ErrorResult(err), schemaResult{}, nil
		}
		d.Record(ctx, "get_company_schema", start, true)
		return nil, res, nil
	}
}

func pipelineSchema(d tools.Deps, c *schema.Composer) func(context.Context, *mcpsdk.CallToolRequest, pipelineSchemaArgs) (*mcpsdk.CallToolResult, schemaResult, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a pipelineSchemaArgs) (*mcpsdk.CallToolResult, schemaResult, error) {
		start := time.Now()
		if a.PipelineID == "" {
			d.Record(ctx, "get_pipeline_schema", start, false)
			return tools.FailResult("pipeline_id is required"), schemaResult{}, nil
		}
		res, err := compose(ctx, c, schema.KindPipelineItem, a.PipelineID)
		if err != nil {
			d.Record(ctx, "get_pipeline_schema", start, false)
			return tools.ErrorResult(err), schemaResult{}, nil
		}
		d.Record(ctx, "get_pipeline_schema", start, true)
		return nil, res, nil
	}
}

func getUser(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, getUserArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, _ getUserArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()

		payload, err := d.API.Call(ctx, "GetUser", nil)
		if err != nil {
			d.Record(ctx, "get_user", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "get_user", start, true)
		return tools.RawResult(payload), nil, nil
	}
}
