package mcpapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/taskifyx/internal/adapters/server/common"
	"github.com/hylla/taskifyx/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// statusEnum lists the board statuses accepted by task tools.
func statusEnum() []string {
	out := []string{}
	for _, status := range domain.Statuses() {
		out = append(out, string(status))
	}
	return out
}

// registerTaskTools registers the task list/create/update/move/delete/activity tools.
func registerTaskTools(srv *mcpserver.MCPServer, tasks common.TaskService) {
	srv.AddTool(
		mcp.NewTool(
			"taskifyx.list_tasks",
			mcp.WithDescription("List board tasks in server order, optionally filtered to one column."),
			mcp.WithString("status", mcp.Description("Only return tasks in this column"), mcp.Enum(statusEnum()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := tasks.ListTasks(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			if status := strings.TrimSpace(req.GetString("status", "")); status != "" {
				filtered := make([]common.Task, 0, len(rows))
				for _, row := range rows {
					if row.Status == status {
						filtered = append(filtered, row)
					}
				}
				rows = filtered
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"tasks": rows,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_tasks result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskifyx.create_task",
			mcp.WithDescription("Create one task. Status defaults to To Do."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description (markdown)")),
			mcp.WithString("status", mcp.Description("Initial column"), mcp.Enum(statusEnum()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := tasks.CreateTask(ctx, common.CreateTaskRequest{
				Title:       title,
				Description: req.GetString("description", ""),
				Status:      req.GetString("status", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode create_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskifyx.update_task",
			mcp.WithDescription("Update one task. Omitted fields keep their current values."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("status", mcp.Description("New column"), mcp.Enum(statusEnum()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			current, err := tasks.GetTask(ctx, taskID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			task, err := tasks.UpdateTask(ctx, taskID, common.UpdateTaskRequest{
				Title:       req.GetString("title", current.Title),
				Description: req.GetString("description", current.Description),
				Status:      req.GetString("status", current.Status),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode update_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskifyx.move_task",
			mcp.WithDescription("Move one task to another column."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Destination column"), mcp.Enum(statusEnum()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			current, err := tasks.GetTask(ctx, taskID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			task, err := tasks.UpdateTask(ctx, taskID, common.UpdateTaskRequest{
				Title:       current.Title,
				Description: current.Description,
				Status:      status,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode move_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskifyx.delete_task",
			mcp.WithDescription("Delete one task by id."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := tasks.DeleteTask(ctx, taskID); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"deleted": taskID,
			})
			if err != nil {
				return nil, fmt.Errorf("encode delete_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskifyx.list_task_events",
			mcp.WithDescription("List recent task activity, newest first."),
			mcp.WithString("task_id", mcp.Description("Only list activity for this task")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			events, err := tasks.ListTaskEvents(ctx, common.ListTaskEventsRequest{
				TaskID: req.GetString("task_id", ""),
				Limit:  req.GetInt("limit", 25),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"events": events,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_task_events result: %w", err)
			}
			return result, nil
		},
	)
}
