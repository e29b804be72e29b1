package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/juristack/juristack-engine/pkg/models"
	"github.com/juristack/juristack-engine/pkg/services"
)

// ReviewToolDeps contains dependencies for change-review tools.
type ReviewToolDeps struct {
	BaseMCPToolDeps
	ReviewService services.ReviewService
}

// RegisterReviewTools registers the review queue MCP tools.
func RegisterReviewTools(s *server.MCPServer, deps *ReviewToolDeps) {
	registerReviewQueueTool(s, deps)
	registerPublishReadinessTool(s, deps)
}

// registerReviewQueueTool adds the review_queue tool listing open review tasks.
func registerReviewQueueTool(s *server.MCPServer, deps *ReviewToolDeps) {
	tool := mcp.NewTool(
		"review_queue",
		mcp.WithDescription(
			"List the review tasks that are still open across all jurisdictions. "+
				"Each task names the change candidate it reviews and the role it is "+
				"assigned to (curator for low/medium risk, expert for high risk).",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scopedCtx, cleanup, err := AcquireToolScope(ctx, deps, "review_queue")
		if err != nil {
			return nil, err
		}
		defer cleanup()

		tasks, err := deps.ReviewService.ListOpenTasks(scopedCtx)
		if err != nil {
			return HandleServiceError(err, "review_queue_failed")
		}

		result := reviewQueueResponse{Tasks: tasks, Total: len(tasks)}
		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerPublishReadinessTool adds the check_publish_readiness tool.
func registerPublishReadinessTool(s *server.MCPServer, deps *ReviewToolDeps) {
	tool := mcp.NewTool(
		"check_publish_readiness",
		mcp.WithDescription(
			"Check whether a jurisdiction is ready to publish: no open review tasks "+
				"anywhere, and every rule version proposed by that jurisdiction's approved "+
				"change candidates already approved. Returns ready=true, or an error "+
				"naming the blocking condition.",
		),
		mcp.WithString(
			"jurisdiction",
			mcp.Required(),
			mcp.Description("Jurisdiction code to check (e.g. 'EU', 'UK')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		scopedCtx, cleanup, err := AcquireToolScope(ctx, deps, "check_publish_readiness")
		if err != nil {
			return nil, err
		}
		defer cleanup()

		jurisdiction, err := req.RequireString("jurisdiction")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		jurisdiction = trimString(jurisdiction)
		if jurisdiction == "" {
			return NewErrorResult("invalid_parameters", "parameter 'jurisdiction' cannot be empty"), nil
		}

		if err := deps.ReviewService.PublishIfReady(scopedCtx, jurisdiction); err != nil {
			return HandleServiceError(err, "publish_readiness_failed")
		}

		result := publishReadinessResponse{Jurisdiction: jurisdiction, Ready: true}
		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// reviewQueueResponse is the response format for the review_queue tool.
type reviewQueueResponse struct {
	Tasks []*models.ReviewTask `json:"tasks"`
	Total int                  `json:"total"`
}

// publishReadinessResponse is the response format for check_publish_readiness.
type publishReadinessResponse struct {
	Jurisdiction string `json:"jurisdiction"`
	Ready        bool   `json:"ready"`
}
