package tool

import (
	"context"
	"errors"
	"fmt"
)

// FunctionTool is a generic adapter that exposes plain Go functions as an
// Arcana tool. Each lifecycle hook is optional; a nil InitFunc or CleanupFunc
// is treated as a successful no-op, matching tools that need no setup.
//
// Concurrency: a FunctionTool has no internal mutable state after
// construction and is as safe for concurrent use as the functions it wraps.
//
// Error semantics of Execute:
//
//	*ToolError (returned directly) -> forwarded unchanged
//	other error                    -> wrapped as *ToolError{Code: "EXECUTION_ERROR"}
type FunctionTool struct {
	name    string
	init    func(ctx context.Context) error
	cleanup func(ctx context.Context) error
	execute func(ctx context.Context, params map[string]any) (map[string]any, error)
}

// Options carries the optional lifecycle hooks for NewFunctionTool.
type Options struct {
	// InitFunc runs during the owning agent's Start. A returned error aborts
	// the agent's start.
	InitFunc func(ctx context.Context) error
	// CleanupFunc runs during the owning agent's Stop. Errors are logged by
	// the owner, never propagated.
	CleanupFunc func(ctx context.Context) error
}

// NewFunctionTool constructs a FunctionTool from an execute function plus
// optional lifecycle hooks.
//
// Example:
//
//	echo := tool.NewFunctionTool("echo",
//	  func(ctx context.Context, params map[string]any) (map[string]any, error) {
//	    return map[string]any{"echo": params}, nil
//	  })
func NewFunctionTool(
	name string,
	execute func(ctx context.Context, params map[string]any) (map[string]any, error),
	optFns ...func(o *Options),
) *FunctionTool {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FunctionTool{
		name:    name,
		init:    opts.InitFunc,
		cleanup: opts.CleanupFunc,
		execute: execute,
	}
}

// Name returns the tool's identifier.
func (t *FunctionTool) Name() string { return t.name }

// Initialize runs the configured init hook, if any.
func (t *FunctionTool) Initialize(ctx context.Context) error {
	if t.init == nil {
		return nil
	}
	if err := t.init(ctx); err != nil {
		return &ToolError{Tool: t.name, Message: fmt.Sprintf("initialization failed: %v", err), Code: "INIT_ERROR"}
	}
	return nil
}

// Cleanup runs the configured cleanup hook, if any.
func (t *FunctionTool) Cleanup(ctx context.Context) error {
	if t.cleanup == nil {
		return nil
	}
	if err := t.cleanup(ctx); err != nil {
		return &ToolError{Tool: t.name, Message: fmt.Sprintf("cleanup failed: %v", err), Code: "CLEANUP_ERROR"}
	}
	return nil
}

// Execute invokes the wrapped function, normalizing failures to *ToolError.
func (t *FunctionTool) Execute(ctx context.Context, params map[string]any) (map[string]any, error) {
	if t.execute == nil {
		return nil, &ToolError{Tool: t.name, Message: "tool is not executable", Code: "NOT_EXECUTABLE"}
	}
	result, err := t.execute(ctx, params)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: "EXECUTION_ERROR"}
	}
	return result, nil
}
