package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arcanahq/arcana/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTool records lifecycle transitions for assertions.
type stubTool struct {
	mu       sync.Mutex
	inits    int
	cleanups int
	initErr  error
}

func (s *stubTool) Initialize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	return s.initErr
}

func (s *stubTool) Cleanup(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups++
	return nil
}

func (s *stubTool) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inits, s.cleanups
}

// failingCleanupTool always fails cleanup to exercise best-effort semantics.
type failingCleanupTool struct{ stubTool }

func (f *failingCleanupTool) Cleanup(ctx context.Context) error {
	_ = f.stubTool.Cleanup(ctx)
	return errors.New("cleanup boom")
}

func newTestAgent(t *testing.T) *BaseAgent {
	t.Helper()
	b := NewBaseAgent("test_agent", logging.NoOpLogger{})
	return &b
}

func TestStopBeforeStartIsNoOp(t *testing.T) {
	b := newTestAgent(t)
	tool := &stubTool{}
	b.RegisterTool("stub", tool)

	require.NoError(t, b.Stop(context.Background()))

	_, cleanups := tool.counts()
	assert.Zero(t, cleanups)
	assert.False(t, b.Running())
}

func TestStartIsIdempotent(t *testing.T) {
	b := newTestAgent(t)
	tool := &stubTool{}
	b.RegisterTool("stub", tool)

	ctx := context.Background()
	require.NoError(t, b.Start(ctx))
	require.NoError(t, b.Start(ctx))

	inits, _ := tool.counts()
	assert.Equal(t, 1, inits)
	assert.True(t, b.Running())
}

func TestRestartReinitializesTools(t *testing.T) {
	b := newTestAgent(t)
	tool := &stubTool{}
	b.RegisterTool("stub", tool)

	ctx := context.Background()
	require.NoError(t, b.Start(ctx))
	require.NoError(t, b.Stop(ctx))
	require.NoError(t, b.Start(ctx))

	inits, cleanups := tool.counts()
	assert.Equal(t, 2, inits)
	assert.Equal(t, 1, cleanups)
}

func TestRegisterToolReplacesWithLastWriteWins(t *testing.T) {
	b := newTestAgent(t)
	first := &stubTool{}
	second := &stubTool{}

	b.RegisterTool("dup", first)
	b.RegisterTool("dup", second)

	assert.Equal(t, []string{"dup"}, b.ToolNames())

	bound, ok := b.Tool("dup")
	require.True(t, ok)
	assert.Same(t, second, bound)

	// The replaced tool is never touched by the lifecycle.
	require.NoError(t, b.Start(context.Background()))
	inits, _ := first.counts()
	assert.Zero(t, inits)
	inits, _ = second.counts()
	assert.Equal(t, 1, inits)
}

func TestStartFailFastLeavesLaterToolsUninitialized(t *testing.T) {
	b := newTestAgent(t)
	ok1 := &stubTool{}
	bad := &stubTool{initErr: errors.New("init boom")}
	ok2 := &stubTool{}
	b.RegisterTool("ok1", ok1)
	b.RegisterTool("bad", bad)
	b.RegisterTool("ok2", ok2)

	ctx := context.Background()
	err := b.Start(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "bad")

	inits, _ := ok1.counts()
	assert.Equal(t, 1, inits)
	inits, _ = ok2.counts()
	assert.Zero(t, inits, "tools after the failing one must stay uninitialized")

	// The agent is left in the started flag state; Stop recovers it.
	assert.True(t, b.Running())
	require.NoError(t, b.Stop(ctx))
	assert.False(t, b.Running())
	require.NoError(t, b.Start(ctx))
}

func TestStopCleansUpAllToolsBestEffort(t *testing.T) {
	b := newTestAgent(t)
	failing := &failingCleanupTool{}
	after := &stubTool{}
	b.RegisterTool("failing", failing)
	b.RegisterTool("after", after)

	ctx := context.Background()
	require.NoError(t, b.Start(ctx))
	require.NoError(t, b.Stop(ctx), "cleanup failures must be swallowed")

	_, cleanups := after.counts()
	assert.Equal(t, 1, cleanups, "tools after a failing cleanup still get cleaned up")
}

func TestManagedExecutionStopsOnBodyError(t *testing.T) {
	b := newTestAgent(t)
	tool := &stubTool{}
	b.RegisterTool("stub", tool)

	bodyErr := errors.New("body boom")
	err := b.ManagedExecution(context.Background(), func(context.Context) error {
		return bodyErr
	})
	require.ErrorIs(t, err, bodyErr)

	inits, cleanups := tool.counts()
	assert.Equal(t, 1, inits)
	assert.Equal(t, 1, cleanups)
	assert.False(t, b.Running())
}

func TestManagedExecutionStopsOnPanic(t *testing.T) {
	b := newTestAgent(t)
	tool := &stubTool{}
	b.RegisterTool("stub", tool)

	assert.Panics(t, func() {
		_ = b.ManagedExecution(context.Background(), func(context.Context) error {
			panic("body panic")
		})
	})

	_, cleanups := tool.counts()
	assert.Equal(t, 1, cleanups)
	assert.False(t, b.Running())
}

func TestManagedExecutionStopsAfterStartFailure(t *testing.T) {
	b := newTestAgent(t)
	ok := &stubTool{}
	bad := &stubTool{initErr: errors.New("init boom")}
	b.RegisterTool("ok", ok)
	b.RegisterTool("bad", bad)

	ran := false
	err := b.ManagedExecution(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, ran, "body must not run when start fails")

	_, cleanups := ok.counts()
	assert.Equal(t, 1, cleanups, "tools initialized before the failure are cleaned up")
	assert.False(t, b.Running())
}

func TestStopCancelsOutstandingCleanupTasks(t *testing.T) {
	b := newTestAgent(t)
	ctx := context.Background()
	require.NoError(t, b.Start(ctx))

	cancelled := make(chan struct{})
	h := b.Go(ctx, func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	})

	require.NoError(t, b.Stop(ctx))

	select {
	case <-cancelled:
	default:
		t.Fatal("background work was not cancelled at stop")
	}
	assert.True(t, h.Finished())
}

func TestStopAllowsBackgroundWorkToCallAgentMethods(t *testing.T) {
	b := newTestAgent(t)
	ctx := context.Background()
	require.NoError(t, b.Start(ctx))

	observed := make(chan bool, 1)
	b.Go(ctx, func(ctx context.Context) {
		<-ctx.Done()
		// Shutdown path takes the agent mutex while Stop is draining.
		observed <- b.Running()
	})

	stopped := make(chan struct{})
	go func() {
		_ = b.Stop(ctx)
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop blocked on background work taking the agent mutex")
	}
	assert.False(t, <-observed)
}

func TestStopAwaitsFinishedHandlesWithoutCancel(t *testing.T) {
	b := newTestAgent(t)
	ctx := context.Background()
	require.NoError(t, b.Start(ctx))

	done := make(chan struct{})
	h := b.Go(ctx, func(context.Context) { close(done) })

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("background work did not finish")
	}
	<-done

	require.NoError(t, b.Stop(ctx))
	assert.True(t, h.Finished())
}
