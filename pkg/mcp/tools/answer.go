package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/logging"
	"github.com/juristack/juristack-engine/pkg/services"
)

// AnswerToolDeps contains dependencies for retrieval and answer tools.
type AnswerToolDeps struct {
	BaseMCPToolDeps
	AnswerService services.AnswerService
}

// RegisterAnswerTools registers the search_kb and answer MCP tools.
func RegisterAnswerTools(s *server.MCPServer, deps *AnswerToolDeps) {
	registerSearchKBTool(s, deps)
	registerAnswerTool(s, deps)
}

// registerSearchKBTool adds the search_kb tool for snapshot-scoped retrieval.
func registerSearchKBTool(s *server.MCPServer, deps *AnswerToolDeps) {
	tool := mcp.NewTool(
		"search_kb",
		mcp.WithDescription(
			"Search the approved compliance rules inside a published snapshot. "+
				"Matching is token based: every whitespace-separated token of the query "+
				"must appear in a rule's content (case-insensitive) for it to match. "+
				"Results carry short excerpts plus rule version IDs suitable for citation.",
		),
		mcp.WithString(
			"snapshot_id",
			mcp.Required(),
			mcp.Description("UUID of the published snapshot to search"),
		),
		mcp.WithString(
			"jurisdiction",
			mcp.Required(),
			mcp.Description("Jurisdiction code the snapshot is expected to belong to (e.g. 'EU', 'UK')"),
		),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("Search query. All tokens must match for a rule to be returned."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scopedCtx, cleanup, err := AcquireToolScope(ctx, deps, "search_kb")
		if err != nil {
			return nil, err
		}
		defer cleanup()

		snapshotIDStr, err := req.RequireString("snapshot_id")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		snapshotID, err := uuid.Parse(trimString(snapshotIDStr))
		if err != nil {
			return NewErrorResult(
				"invalid_parameters",
				fmt.Sprintf("invalid snapshot_id format: %q is not a valid UUID", snapshotIDStr),
			), nil
		}

		jurisdiction, err := req.RequireString("jurisdiction")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		jurisdiction = trimString(jurisdiction)
		if jurisdiction == "" {
			return NewErrorResult("invalid_parameters", "parameter 'jurisdiction' cannot be empty"), nil
		}

		query, err := req.RequireString("query")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		items, err := deps.AnswerService.SearchKB(scopedCtx, snapshotID, jurisdiction, query)
		if err != nil {
			return HandleServiceError(err, "search_kb_failed")
		}

		result := searchKBResponse{
			SnapshotID:   snapshotID.String(),
			Jurisdiction: jurisdiction,
			Items:        items,
			Total:        len(items),
		}
		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerAnswerTool adds the answer tool for guarded, cited answers.
func registerAnswerTool(s *server.MCPServer, deps *AnswerToolDeps) {
	tool := mcp.NewTool(
		"answer",
		mcp.WithDescription(
			"Answer a compliance question for a project using only that project's "+
				"active knowledge base snapshot. The response is either a grounded answer "+
				"with rule version citations, or an explicit refusal with a reason. "+
				"A project without an active snapshot always gets a refusal.",
		),
		mcp.WithString(
			"project_id",
			mcp.Required(),
			mcp.Description("UUID of the project whose context and snapshot pointer apply"),
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The compliance question to answer"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scopedCtx, cleanup, err := AcquireToolScope(ctx, deps, "answer")
		if err != nil {
			return nil, err
		}
		defer cleanup()

		projectIDStr, err := req.RequireString("project_id")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		projectID, err := uuid.Parse(trimString(projectIDStr))
		if err != nil {
			return NewErrorResult(
				"invalid_parameters",
				fmt.Sprintf("invalid project_id format: %q is not a valid UUID", projectIDStr),
			), nil
		}

		question, err := req.RequireString("question")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		question = trimString(question)
		if question == "" {
			return NewErrorResult("invalid_parameters", "parameter 'question' cannot be empty"), nil
		}

		deps.Logger.Info("Answering question via MCP",
			zap.String("project_id", projectID.String()),
			zap.String("question", logging.TruncateQuestion(question)))

		answer, err := deps.AnswerService.Answer(scopedCtx, projectID, question)
		if err != nil {
			return HandleServiceError(err, "answer_failed")
		}

		jsonResult, err := json.Marshal(answer)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// searchKBResponse is the response format for the search_kb tool.
type searchKBResponse struct {
	SnapshotID   string `json:"snapshot_id"`
	Jurisdiction string `json:"jurisdiction"`
	Items        any    `json:"items"`
	Total        int    `json:"total"`
}
