// Package tasks provides the MCP tools for CRM tasks.
package tasks

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crmgate/crmgate/internal/tools"
)

type createTaskArgs struct {
	Name        string `json:"name" jsonschema:"Task name"`
	DueDate     string `json:"due_date" jsonschema:"Due date as YYYY-MM-DD"`
	Description string `json:"description,omitempty" jsonschema:"Task description"`
	ContactID   string `json:"contact_id,omitempty" jsonschema:"Id of the contact the task is attached to"`
	AssignedTo  string `json:"assigned_to,omitempty" jsonschema:"User id the task is assigned to"`
}

type editTaskArgs struct {
	TaskID      string `json:"task_id" jsonschema:"Id of the task to edit"`
	Name        string `json:"name,omitempty" jsonschema:"New task name"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"New due date as YYYY-MM-DD"`
	Description string `json:"description,omitempty" jsonschema:"New task description"`
	AssignedTo  string `json:"assigned_to,omitempty" jsonschema:"New assignee user id"`
}

type completeTaskArgs struct {
	TaskID string `json:"task_id" jsonschema:"Id of the task to mark as completed"`
}

type deleteTaskArgs struct {
	TaskID string `json:"task_id" jsonschema:"Id of the task to delete"`
}

type listTasksArgs struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"List only tasks attached to this contact"`
	DueBefore string `json:"due_before,omitempty" jsonschema:"Only tasks due on or before this date (YYYY-MM-DD)"`
	Completed bool   `json:"completed,omitempty" jsonschema:"Include completed tasks instead of open ones"`
}

// Register adds the task tools to s.
func Register(s *mcpsdk.Server, d tools.Deps) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "create_task",
		Description: "Create a task with a due date, optionally attached to a contact.",
	}, createTask(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "edit_task",
		Description: "Edit an existing task. Only the provided fields are changed.",
	}, editTask(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "complete_task",
		Description: "Mark a task as completed.",
	}, completeTask(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "delete_task",
		Description: "Permanently delete a task.",
	}, deleteTask(d))
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "list_tasks",
		Description: "List tasks, filtered by contact, due date, or completion state.",
	}, listTasks(d))
}

func createTask(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, createTaskArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a createTaskArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.Name == "" || a.DueDate == "" {
			d.Record(ctx, "create_task", start, false)
			return tools.FailResult("name and due_date are required"), nil, nil
		}

		params := map[string]any{
			"Name":     a.Name,
			"Due Date": a.DueDate,
		}
		tools.SetIfNotEmpty(params, "Description", a.Description)
		tools.SetIfNotEmpty(params, "ContactId", a.ContactID)
		tools.SetIfNotEmpty(params, "Assigned To", a.AssignedTo)

		payload, err := d.API.Call(ctx, "CreateTask", params)
		if err != nil {
			d.Record(ctx, "create_task", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "create_task", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func editTask(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, editTaskArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a editTaskArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.TaskID == "" {
			d.Record(ctx, "edit_task", start, false)
			return tools.FailResult("task_id is required"), nil, nil
		}

		params := map[string]any{"TaskId": a.TaskID}
		tools.SetIfNotEmpty(params, "Name", a.Name)
		tools.SetIfNotEmpty(params, "Due Date", a.DueDate)
		tools.SetIfNotEmpty(params, "Description", a.Description)
		tools.SetIfNotEmpty(params, "Assigned To", a.AssignedTo)

		payload, err := d.API.Call(ctx, "EditTask", params)
		if err != nil {
			d.Record(ctx, "edit_task", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "edit_task", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func completeTask(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, completeTaskArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a completeTaskArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.TaskID == "" {
			d.Record(ctx, "complete_task", start, false)
			return tools.FailResult("task_id is required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "CompleteTask", map[string]any{"TaskId": a.TaskID})
		if err != nil {
			d.Record(ctx, "complete_task", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "complete_task", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func deleteTask(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, deleteTaskArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a deleteTaskArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()
		if a.TaskID == "" {
			d.Record(ctx, "delete_task", start, false)
			return tools.FailResult("task_id is required"), nil, nil
		}

		payload, err := d.API.Call(ctx, "DeleteTask", map[string]any{"TaskId": a.TaskID})
		if err != nil {
			d.Record(ctx, "delete_task", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "delete_task", start, true)
		return tools.RawResult(payload), nil, nil
	}
}

func listTasks(d tools.Deps) func(context.Context, *mcpsdk.CallToolRequest, listTasksArgs) (*mcpsdk.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, a listTasksArgs) (*mcpsdk.CallToolResult, any, error) {
		start := time.Now()

		params := map[string]any{}
		tools.SetIfNotEmpty(params, "ContactId", a.ContactID)
		tools.SetIfNotEmpty(params, "DueBefore", a.DueBefore)
		if a.Completed {
			params["IncludeCompleted"] = true
		}

		payload, err := d.API.Call(ctx, "GetTasks", params)
		if err != nil {
			d.Record(ctx, "list_tasks", start, false)
			return tools.ErrorResult(err), nil, nil
		}
		d.Record(ctx, "list_tasks", start, true)
		return tools.RawResult(payload), nil, nil
	}
}
