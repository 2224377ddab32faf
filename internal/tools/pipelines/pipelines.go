// Package pipelines provides the MCP tools for CRM pipelines and their items.
package pipelines

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/tools"
)

type createItemArgs struct {
	PipelineID   string         `json:"pipeline_id" jsonschema:"Id of the pipeline to add the item to"`
	ContactID    string         `json:"contact_id" jsonschema:"Id of the contact the item is attached to"`
	Status       string         `json:"status" jsonschema:"Initial pipeline status, matching one of the pipeline's configured statuses"`
	Priority     string         `json:"priority,omitempty" jsonschema:"Item priority"`
	Note         string         `json:"note,omitempty" jsonschema:"Note stored with the item"`
	CustomFields map[string]any `json:"custom_fields,omitempty" jsonschema:"Custom field values keyed by field name or field id; discover them with get_pipeline_schema"`
}

type updateItemArgs struct {
	PipelineItemID string         `json:"pipeline_item_id" jsonschema:"Id of the pipeline item to update"`
	Status         string         `json:"status,omitempty" jsonschema:"New pipeline status"`
	Priority       string         `json:"priority,omitempty" jsonschema:"New item priority"`
	Note           string         `json:"note,omitempty" jsonschema:"Note appended to the item"`
	CustomFields   map[string]any `json:"custom_fields,omitempty" jsonschema:"Custom field values keyed by field name or field id"`
}

type listItemsArgs struct {
	PipelineID string `json:"pipeline_id" jsonschema:"Id of the pipeline to list items from"`
	Status     string `json:"status,omitempty" jsonschema:"List only items in this status"`
	ContactID  string `json:"contact_id,omitempty" jsonschema:"List only items attached to this contact"`
	Page       int    `json:"page,omitempty" jsonschema:"1-based result page"`
}

type listPipelinesArgs struct{}

// Register adds the pipeline tools to s.
func Register(s *mcpsdk.Server, d tools.Deps) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "create_pipeline_item",
		Description: "Attach a new pipeline item (lead, deal, ...) to a contact.",
	}, createItem(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "update_pipeline_item",
		Description: "Update a pipeline item's status, priority, note, or custom fields.",
	}, updateItem(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "list_pipeline_items",
		Description: "List the items in a pipeline, optionally filtered by status or contact.",
	}, listItems(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "list_pipelines",
		Description: "List the pipelines configured in the CRM, with their ids and statuses.",
	}, listPipelines(d))
}

func createItem(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, createItemArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a createItemArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.PipelineID == "" || a.ContactID == "" || a.Status == "" {
			d.Record(ctx, "create_pipeline_item", start, false)
			return tools.FailResult("pipeline_id, contact_id and status are required"), nil, nil
		}

		params := map[string]any{
			"PipelineId": a.PipelineID,
			"ContactId":  a.ContactID,
			"Status":     a.Status,
		}
		tools.SetIfNotEmpty(params, "Priority", a.Priority)
		tools.SetIfNotEmpty(params, "Note", a.Note)
		tools.MergeCustomFields(params, a.CustomFields)

		payload, err := d.API.Call(ctx, "CreatePipelineItem", params)
		if err != nil {
			d.Record(ctx, "create_pipeline_item", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "create_pipeline_item", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func updateItem(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, updateItemArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a updateItemArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.PipelineItemID == "" {
			d.Record(ctx, "update_pipeline_item", start, false)
			return tools.FailResult("pipeline_item_id is required"), nil, nil
		}

		params := map[string]any{"PipelineItemId": a.PipelineItemID}
		tools.SetIfNotEmpty(params, "Status", a.Status)
		tools.SetIfNotEmpty(params, "Priority", a.Priority)
		tools.SetIfNotEmpty(params, "Note", a.Note)
		tools.MergeCustomFields(params, a.CustomFields)

		payload, err := d.API.Call(ctx, "UpdatePipelineItem", params)
		if err != nil {
			d.Record(ctx, "update_pipeline_item", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "update_pipeline_item", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func listItems(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, listItemsArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a listItemsArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.PipelineID == "" {
			d.Record(ctx, "list_pipeline_items", start, false)
			return tools.FailResult("pipeline_id is required"), nil, nil
		}

		params := map[string]any{"PipelineId": a.PipelineID}
		tools.SetIfNotEmpty(params, "Status", a.Status)
		tools.SetIfNotEmpty(params, "ContactId", a.ContactID)
		if a.Page > 0 {
			params["Page"] = a.Page
		}

		payload, err := d.API.Call(ctx, "GetPipelineItems", params)
		if err != nil {
			d.Record(ctx, "list_pipeline_items", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "list_pipeline_items", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func listPipelines(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, listPipelinesArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, _ listPipelinesArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()

		payload, err := d.API.Call(ctx, "GetPipelines", nil)
		if err != nil {
			d.Record(ctx, "list_pipelines", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "list_pipelines", start, true)
		return tools.RawResult(payload), nil, nil
	}
}
