// ABOUTME: MCP tool handler implementations over the memory store
// ABOUTME: Errors come back as textual tool payloads; the agent is never blocked
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/2389-research/memelord/internal/core"
	"github.com/2389-research/memelord/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store *core.Store
}

// StartTask handles the memory_start_task tool
func (h *Handlers) StartTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("description argument is required and must be a string"), nil
	}

	taskID, memories, err := h.store.StartTask(ctx, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("start task failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"task_id":  taskID,
		"memories": memoryPayload(memories),
	}
	return marshalResult(response)
}

// Report handles the memory_report tool
func (h *Handlers) Report(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reportType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type argument is required and must be a string"), nil
	}
	lesson, err := request.RequireString("lesson")
	if err != nil {
		return mcp.NewToolResultError("lesson argument is required and must be a string"), nil
	}

	var id string
	switch reportType {
	case "correction":
		id, err = h.store.ReportCorrection(ctx, core.CorrectionReport{
			Lesson:       lesson,
			WhatFailed:   request.GetString("what_failed", ""),
			WhatWorked:   request.GetString("what_worked", ""),
			TokensWasted: int64(request.GetInt("tokens_wasted", 0)),
		})
	case "user_input":
		id, err = h.store.ReportUserInput(ctx, lesson, request.GetString("source", "user_input"))
	case "insight":
		id, err = h.store.InsertRawMemory(lesson, string(models.CategoryInsight), 1.0)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown report type %q; use correction, user_input, or insight", reportType)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	return marshalResult(map[string]interface{}{"memory_id": id})
}

// EndTask handles the memory_end_task tool
func (h *Handlers) EndTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id argument is required and must be a string"), nil
	}

	outcome := models.TaskOutcome{
		TokensUsed:      int64(request.GetInt("tokens_used", 0)),
		ToolCalls:       int64(request.GetInt("tool_calls", 0)),
		Errors:          int64(request.GetInt("errors", 0)),
		UserCorrections: int64(request.GetInt("user_corrections", 0)),
		Completed:       request.GetBool("completed", false),
	}

	selfReports, err := parseSelfReports(request.GetArguments()["self_report"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.store.EndTask(taskID, outcome, selfReports); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("end task failed: %v", err)), nil
	}

	// Opportunistic decay pass; its failure is not the caller's problem.
	decay, err := h.store.Decay()
	if err != nil {
		log.Printf("opportunistic decay after end task: %v", err)
	}

	return marshalResult(map[string]interface{}{
		"task_id":          taskID,
		"decayed_memories": decay.Decayed,
		"deleted_memories": decay.Deleted,
	})
}

// Contradict handles the memory_contradict tool
func (h *Handlers) Contradict(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memoryID, err := request.RequireString("memory_id")
	if err != nil {
		return mcp.NewToolResultError("memory_id argument is required and must be a string"), nil
	}

	result, err := h.store.ContradictMemory(ctx, memoryID, request.GetString("correction", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("contradict failed: %v", err)), nil
	}

	response := map[string]interface{}{"deleted": result.Deleted}
	if result.CorrectionID != "" {
		response["correction_id"] = result.CorrectionID
	}
	return marshalResult(response)
}

// Status handles the memory_status tool
func (h *Handlers) Status(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.store.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}

	return marshalResult(map[string]interface{}{
		"total_memories": stats.TotalMemories,
		"task_count":     stats.TaskCount,
		"avg_task_score": stats.AvgTaskScore,
		"top_memories":   memoryPayload(stats.TopMemories),
	})
}

// parseSelfReports converts the self_report argument into typed reports
func parseSelfReports(raw interface{}) ([]models.SelfReport, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("self_report must be an array of {memory_id, rating} objects")
	}

	reports := make([]models.SelfReport, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("self_report entries must be objects")
		}
		memoryID, ok := obj["memory_id"].(string)
		if !ok {
			return nil, fmt.Errorf("self_report entry is missing memory_id")
		}
		rating, ok := obj["rating"].(float64)
		if !ok {
			return nil, fmt.Errorf("self_report entry is missing a numeric rating")
		}
		if rating < 0 || rating > 3 {
			return nil, fmt.Errorf("self_report rating must be 0-3, got %v", rating)
		}
		reports = append(reports, models.SelfReport{MemoryID: memoryID, Rating: int(rating)})
	}
	return reports, nil
}

// memoryPayload projects retrieved memories into the tool response shape
func memoryPayload(memories []models.RetrievedMemory) []map[string]interface{} {
	payload := make([]map[string]interface{}, 0, len(memories))
	for _, m := range memories {
		payload = append(payload, map[string]interface{}{
			"id":       m.ID,
			"content":  m.Content,
			"category": string(m.Category),
			"weight":   m.Weight,
			"score":    m.Score,
		})
	}
	return payload
}

// marshalResult wraps a response map as a JSON tool result
func marshalResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
