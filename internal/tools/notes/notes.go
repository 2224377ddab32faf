// Package notes provides the MCP tools for notes attached to CRM contacts.
package notes

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/tools"
)

type createNoteArgs struct {
	ContactID string `json:"contact_id" jsonschema:"Id of the contact the note is attached to"`
	Note      string `json:"note" jsonschema:"Note text"`
}

type editNoteArgs struct {
	NoteID string `json:"note_id" jsonschema:"Id of the note to edit"`
	Note   string `json:"note" jsonschema:"Replacement note text"`
}

type listNotesArgs struct {
	ContactID string `json:"contact_id" jsonschema:"Id of the contact whose notes to list"`
}

// Register adds the note tools to s.
func Register(s *mcpsdk.Server, d tools.Deps) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "create_note",
		Description: "Attach a note to a contact or company.",
	}, createNote(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "edit_note",
		Description: "Replace the text of an existing note.",
	}, editNote(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "list_notes",
		Description: "List the notes attached to a contact or company.",
	}, listNotes(d))
}

func createNote(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, createNoteArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a createNoteArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.ContactID == "" || a.Note == "" {
			d.Record(ctx, "create_note", start, false)
			return tools.FailResult("contact_id and note are required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "CreateNote", map[string]any{
			"ContactId": a.ContactID,
			"Note":      a.Note,
		})
		if err != nil {
			d.Record(ctx, "create_note", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "create_note", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func editNote(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, editNoteArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a editNoteArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.NoteID == "" || a.Note == "" {
			d.Record(ctx, "edit_note", start, false)
			return tools.FailResult("note_id and note are required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "EditNote", map[string]any{
			"NoteId": a.NoteID,
			"Note":   a.Note,
		})
		if err != nil {
			d.Record(ctx, "edit_note", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "edit_note", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func listNotes(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, listNotesArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a listNotesArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.ContactID == "" {
			d.Record(ctx, "list_notes", start, false)
			return tools.FailResult("contact_id is required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "GetNotesAttachedToContact", map[string]any{"ContactId": a.ContactID})
		if err != nil {
			d.Record(ctx, "list_notes", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "list_notes", start, true)
		return tools.RawResult(payload), nil, nil
	}
}
