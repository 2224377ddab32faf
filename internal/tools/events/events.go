// Package events provides the MCP tools for CRM calendar events.
//
// Tools registered by [Register]: "create_event", "edit_event",
// "delete_event", "list_events".
package events

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/tools"
)

// createEventArgs is the input for the "create_event" tool.
type createEventArgs struct {
	Name        string   `json:"name" jsonschema:"Event title"`
	Date        string   `json:"date" jsonschema:"Event date as YYYY-MM-DD"`
	StartTime   string   `json:"start_time,omitempty" jsonschema:"Start time as HH:MM (24h); omit for an all-day event"`
	EndTime     string   `json:"end_time,omitempty" jsonschema:"End time as HH:MM (24h)"`
	Description string   `json:"description,omitempty" jsonschema:"Event description"`
	ContactIDs  []string `json:"contact_ids,omitempty" jsonschema:"Ids of contacts attached to the event"`
}

// editEventArgs is the input for the "edit_event" tool.
type editEventArgs struct {
	EventID     string   `json:"event_id" jsonschema:"Id of the event to edit"`
	Name        string   `json:"name,omitempty" jsonschema:"New event title"`
	Date        string   `json:"date,omitempty" jsonschema:"New event date as YYYY-MM-DD"`
	StartTime   string   `json:"start_time,omitempty" jsonschema:"New start time as HH:MM (24h)"`
	EndTime     string   `json:"end_time,omitempty" jsonschema:"New end time as HH:MM (24h)"`
	Description string   `json:"description,omitempty" jsonschema:"New event description"`
	ContactIDs  []string `json:"contact_ids,omitempty" jsonschema:"Replacement list of attached contact ids"`
}

// deleteEventArgs is the input for the "delete_event" tool.
type deleteEventArgs struct {
	EventID string `json:"event_id" jsonschema:"Id of the event to delete"`
}

// listEventsArgs is the input for the "list_events" tool.
type listEventsArgs struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"List only events attached to this contact"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Earliest event date as YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Latest event date as YYYY-MM-DD"`
}

// Register adds the event tools to s.
func Register(s *mcpsdk.Server, d tools.Deps) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "create_event",
		Description: "Create a calendar event, optionally attached to contacts.",
	}, createEvent(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "edit_event",
		Description: "Edit an existing calendar event. Only the provided fields are changed.",
	}, editEvent(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "delete_event",
		Description: "Permanently delete a calendar event.",
	}, deleteEvent(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "list_events",
		Description: "List calendar events, filtered by contact or date range.",
	}, listEvents(d))
}

func createEvent(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, createEventArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a createEventArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.Name == "" || a.Date == "" {
			d.Record(ctx, "create_event", start, false)
			return tools.FailResult("name and date are required"), nil, nil
		}

		params := map[string]any{
			"Name": a.Name,
			"Date": a.Date,
		}
		tools.SetIfNotEmpty(params, "Start Time", a.StartTime)
		tools.SetIfNotEmpty(params, "End Time", a.EndTime)
		tools.SetIfNotEmpty(params, "Description", a.Description)
		if len(a.ContactIDs) > 0 {
			params["Contacts"] = a.ContactIDs
		}

		payload, err := d.API.Call(ctx, "CreateEvent", params)
		if err != nil {
			d.Record(ctx, "create_event", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "create_event", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func editEvent(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, editEventArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a editEventArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.EventID == "" {
			d.Record(ctx, "edit_event", start, false)
			return tools.FailResult("event_id is required"), nil, nil
		}

		params := map[string]any{"EventId": a.EventID}
		tools.SetIfNotEmpty(params, "Name", a.Name)
		tools.SetIfNotEmpty(params, "Date", a.Date)
		tools.SetIfNotEmpty(params, "Start Time", a.StartTime)
		tools.SetIfNotEmpty(params, "End Time", a.EndTime)
		tools.SetIfNotEmpty(params, "Description", a.Description)
		if len(a.ContactIDs) > 0 {
			params["Contacts"] = a.ContactIDs
		}

		payload, err := d.API.Call(ctx, "EditEvent", params)
		if err != nil {
			d.Record(ctx, "edit_event", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "edit_event", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func deleteEvent(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, deleteEventArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a deleteEventArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.EventID == "" {
			d.Record(ctx, "delete_event", start, false)
			return tools.FailResult("event_id is required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "DeleteEvent", map[string]any{"EventId": a.EventID})
		if err != nil {
			d.Record(ctx, "delete_event", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "delete_event", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func listEvents(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, listEventsArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a listEventsArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()

		// Attached-to-contact listing and date-range listing are separate
		// CRM functions.
		function := "GetEvents"
		params := map[string]any{}
		if a.ContactID != "" {
			function = "GetEventsAttachedToContact"
			params["ContactId"] = a.ContactID
		}
		tools.SetIfNotEmpty(params, "StartDate", a.StartDate)
		tools.SetIfNotEmpty(params, "EndDate", a.EndDate)

		payload, err := d.API.Call(ctx, function, params)
		if err != nil {
			d.Record(ctx, "list_events", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "list_events", start, true)
		return tools.RawResult(payload), nil, nil
	}
}
