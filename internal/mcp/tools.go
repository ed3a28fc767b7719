// ABOUTME: MCP tool definitions and registration for the memelord server
// ABOUTME: Defines JSON schemas for the five memory tools
package mcp

import (
	"github.com/2389-research/memelord/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, store *core.Store) *Handlers {
	handlers := &Handlers{store: store}

	// 1. memory_start_task - begin a task and retrieve relevant memories
	server.AddTool(mcp.Tool{
		Name:        "memory_start_task",
		Description: "Start a new task and retrieve the memories most relevant to its description. Call this before beginning a piece of work.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"description": map[string]interface{}{
					"type":        "string",
					"description": "What the task is about",
				},
			},
			Required: []string{"description"},
		},
	}, handlers.StartTask)

	// 2. memory_report - store a correction, user input, or insight
	server.AddTool(mcp.Tool{
		Name:        "memory_report",
		Description: "Store a memory: a correction (what failed and what worked), something the user said, or a general insight.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"description": "One of: correction, user_input, insight",
					"enum":        []string{"correction", "user_input", "insight"},
				},
				"lesson": map[string]interface{}{
					"type":        "string",
					"description": "The lesson worth remembering",
				},
				"what_failed": map[string]interface{}{
					"type":        "string",
					"description": "For corrections: the approach that failed",
				},
				"what_worked": map[string]interface{}{
					"type":        "string",
					"description": "For corrections: the approach that worked",
				},
				"tokens_wasted": map[string]interface{}{
					"type":        "number",
					"description": "For corrections: tokens wasted before finding the working approach",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "For user input: user_denial, user_correction, or user_input",
				},
			},
			Required: []string{"type", "lesson"},
		},
	}, handlers.Report)

	// 3. memory_end_task - finish a task with outcome counters
	server.AddTool(mcp.Tool{
		Name:        "memory_end_task",
		Description: "Finish a task: record outcome counters, score it against the running baseline, and credit the memories that helped. Optionally rate each retrieved memory 0-3.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"task_id": map[string]interface{}{
					"type":        "string",
					"description": "The task id returned by memory_start_task",
				},
				"tokens_used": map[string]interface{}{
					"type":        "number",
					"description": "Tokens spent on the task",
				},
				"tool_calls": map[string]interface{}{
					"type":        "number",
					"description": "Tool calls made during the task",
				},
				"errors": map[string]interface{}{
					"type":        "number",
					"description": "Errors hit during the task",
				},
				"user_corrections": map[string]interface{}{
					"type":        "number",
					"description": "Times the user had to correct course",
				},
				"completed": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the task finished successfully",
				},
				"self_report": map[string]interface{}{
					"type":        "array",
					"description": "Usefulness rating per retrieved memory",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"memory_id": map[string]interface{}{"type": "string"},
							"rating":    map[string]interface{}{"type": "number", "description": "0 (useless) to 3 (essential)"},
						},
						"required": []string{"memory_id", "rating"},
					},
				},
			},
			Required: []string{"task_id"},
		},
	}, handlers.EndTask)

	// 4. memory_contradict - delete a wrong memory, optionally replacing it
	server.AddTool(mcp.Tool{
		Name:        "memory_contradict",
		Description: "Delete a memory that turned out to be wrong. Optionally provide the corrected information to store in its place.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"memory_id": map[string]interface{}{
					"type":        "string",
					"description": "The memory to delete",
				},
				"correction": map[string]interface{}{
					"type":        "string",
					"description": "The corrected information, if known",
				},
			},
			Required: []string{"memory_id"},
		},
	}, handlers.Contradict)

	// 5. memory_status - store statistics
	server.AddTool(mcp.Tool{
		Name:        "memory_status",
		Description: "Get memory store statistics: totals, average task score, and the top memories by weight.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.Status)

	return handlers
}
