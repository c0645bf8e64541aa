// Package tool implements the pluggable capability subsystem agents use to
// act on the outside world. Every tool satisfies the core.Tool lifecycle
// contract (initialize/cleanup, owned exclusively by one agent); executable
// tools additionally expose a parameterized Execute for task handlers and
// workflow steps.
package tool

import (
	"context"
	"fmt"

	"github.com/arcanahq/arcana/core"
)

// Executor is a tool that can be invoked with structured parameters. Task
// handlers and workflow steps drive their side effects through this
// interface.
//
// Implementations should:
//   - Acquire resources in Initialize and release them in Cleanup
//   - Be safe for repeated Initialize/Cleanup cycles
//   - Return *ToolError for failures so callers get consistent codes
type Executor interface {
	core.Tool

	// Execute runs the tool's main functionality with the given parameters
	// and returns a result mapping.
	Execute(ctx context.Context, params map[string]any) (map[string]any, error)
}

// ToolError represents errors that occur during tool execution or lifecycle.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
