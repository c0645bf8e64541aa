package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/arcanahq/arcana/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ core.Tool = (*FunctionTool)(nil)
	_ Executor  = (*FunctionTool)(nil)
)

func TestFunctionToolExecute(t *testing.T) {
	echo := NewFunctionTool("echo", func(_ context.Context, params map[string]any) (map[string]any, error) {
		return map[string]any{"echo": params["msg"]}, nil
	})

	assert.Equal(t, "echo", echo.Name())

	out, err := echo.Execute(context.Background(), map[string]any{"msg": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"echo": "hi"}, out)
}

func TestFunctionToolLifecycleHooks(t *testing.T) {
	var initialized, cleaned bool
	ft := NewFunctionTool("hooked", nil, func(o *Options) {
		o.InitFunc = func(context.Context) error {
			initialized = true
			return nil
		}
		o.CleanupFunc = func(context.Context) error {
			cleaned = true
			return nil
		}
	})

	require.NoError(t, ft.Initialize(context.Background()))
	require.NoError(t, ft.Cleanup(context.Background()))
	assert.True(t, initialized)
	assert.True(t, cleaned)
}

func TestFunctionToolNilHooksAreNoOps(t *testing.T) {
	ft := NewFunctionTool("bare", func(context.Context, map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	})

	assert.NoError(t, ft.Initialize(context.Background()))
	assert.NoError(t, ft.Cleanup(context.Background()))
}

func TestFunctionToolInitErrorIsToolError(t *testing.T) {
	ft := NewFunctionTool("flaky", nil, func(o *Options) {
		o.InitFunc = func(context.Context) error { return errors.New("no connection") }
	})

	err := ft.Initialize(context.Background())
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "flaky", toolErr.Tool)
	assert.Equal(t, "INIT_ERROR", toolErr.Code)
}

func TestFunctionToolCleanupErrorIsToolError(t *testing.T) {
	ft := NewFunctionTool("flaky", nil, func(o *Options) {
		o.CleanupFunc = func(context.Context) error { return errors.New("still busy") }
	})

	err := ft.Cleanup(context.Background())
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "CLEANUP_ERROR", toolErr.Code)
}

func TestFunctionToolExecuteWrapsPlainErrors(t *testing.T) {
	ft := NewFunctionTool("boom", func(context.Context, map[string]any) (map[string]any, error) {
		return nil, errors.New("exploded")
	})

	_, err := ft.Execute(context.Background(), nil)
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "exploded")
}

func TestFunctionToolExecuteForwardsToolErrors(t *testing.T) {
	original := NewToolError("boom", "rate limited", "RATE_LIMIT")
	ft := NewFunctionTool("boom", func(context.Context, map[string]any) (map[string]any, error) {
		return nil, original
	})

	_, err := ft.Execute(context.Background(), nil)
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Same(t, original, toolErr)
}

func TestFunctionToolWithoutExecuteFunc(t *testing.T) {
	ft := NewFunctionTool("inert", nil)

	_, err := ft.Execute(context.Background(), nil)
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "NOT_EXECUTABLE", toolErr.Code)
}
