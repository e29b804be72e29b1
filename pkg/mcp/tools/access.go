// Package tools provides MCP tool implementations for juristack-engine.
package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/juristack/juristack-engine/pkg/database"
)

// BaseMCPToolDeps provides the common dependencies that all MCP tools need.
// Tool-specific *Deps structs embed this to avoid repeating the
// GetDB/GetLogger method implementations.
type BaseMCPToolDeps struct {
	DB     *database.DB
	Logger *zap.Logger
}

// GetDB implements ToolAccessDeps.
func (d *BaseMCPToolDeps) GetDB() *database.DB { return d.DB }

// GetLogger implements ToolAccessDeps.
func (d *BaseMCPToolDeps) GetLogger() *zap.Logger { return d.Logger }

// ToolAccessDeps defines the common dependencies needed for tool execution.
type ToolAccessDeps interface {
	GetDB() *database.DB
	GetLogger() *zap.Logger
}

// AcquireToolScope checks out a database connection and returns a context
// carrying it, so repository calls inside the tool work exactly as they do
// under the HTTP scope middleware. The cleanup function MUST be deferred.
func AcquireToolScope(ctx context.Context, deps ToolAccessDeps, toolName string) (context.Context, func(), error) {
	scope, err := deps.GetDB().Acquire(ctx)
	if err != nil {
		deps.GetLogger().Error("Failed to acquire database connection for tool",
			zap.String("tool", toolName),
			zap.Error(err))
		return nil, nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}

	scopedCtx := database.SetScope(ctx, scope)
	return scopedCtx, scope.Close, nil
}
