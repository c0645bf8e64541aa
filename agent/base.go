package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arcanahq/arcana/core"
	"github.com/arcanahq/arcana/logging"
)

// CleanupHandle tracks one piece of outstanding background work owned by an
// agent. It pairs an explicit cancellation token with a done channel so Stop
// can request cancellation and await completion without relying on any
// implicit scheduler.
type CleanupHandle struct {
	cancel context.CancelFunc
	done   <-chan struct{}
}

// NewCleanupHandle builds a handle from a cancel token and a channel that is
// closed when the background work has fully exited.
func NewCleanupHandle(cancel context.CancelFunc, done <-chan struct{}) *CleanupHandle {
	return &CleanupHandle{cancel: cancel, done: done}
}

// Finished reports whether the tracked work has already completed.
func (h *CleanupHandle) Finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Cancel requests cancellation of the tracked work.
func (h *CleanupHandle) Cancel() { h.cancel() }

// Done returns a channel closed when the tracked work has exited.
func (h *CleanupHandle) Done() <-chan struct{} { return h.done }

// BaseAgent bundles the shared lifecycle (Start/Stop), the named tool
// registry and identity helpers. Embed it in concrete agent implementations
// and supply ExecuteTask/ReceiveMessage to satisfy the core.Agent contract.
// All exported methods are goroutine-safe unless otherwise documented.
type BaseAgent struct {
	id        string
	mu        sync.Mutex
	toolOrder []string // registration order, drives init/cleanup sequencing
	tools     map[string]core.Tool
	running   bool
	cleanups  []*CleanupHandle
	logger    logging.Logger
}

// NewBaseAgent constructs an inert BaseAgent with the given identity. A nil
// logger is replaced with a NoOpLogger.
func NewBaseAgent(id string, logger logging.Logger) BaseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return BaseAgent{
		id:     id,
		tools:  make(map[string]core.Tool),
		logger: logger,
	}
}

// ID returns the unique identifier for this agent.
func (b *BaseAgent) ID() string { return b.id }

// Running reports whether the agent is currently in the running state.
func (b *BaseAgent) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// RegisterTool binds tool under name. Registering a name twice replaces the
// previous binding with a warning — last write wins, and cleanup of the
// replaced tool remains the caller's responsibility. The name keeps its
// original position in the initialization order.
func (b *BaseAgent) RegisterTool(name string, tool core.Tool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.tools[name]; exists {
		b.logger.Warn("tool already registered, replacing", "agent_id", b.id, "tool", name)
	} else {
		b.toolOrder = append(b.toolOrder, name)
	}
	b.tools[name] = tool
}

// Tool returns the tool registered under name, if any.
func (b *BaseAgent) Tool(name string) (core.Tool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tools[name]
	return t, ok
}

// ToolNames returns the registered tool names in registration order.
func (b *BaseAgent) ToolNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.toolOrder))
	copy(names, b.toolOrder)
	return names
}

// Start transitions the agent from inert to running and initializes every
// registered tool in registration order. It is a no-op when already running.
//
// Initialization is fail-fast: the first tool error propagates immediately,
// leaving later tools uninitialized and the running flag set. Callers must
// Stop to recover before retrying a failed Start.
func (b *BaseAgent) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}
	b.running = true

	for _, name := range b.toolOrder {
		start := time.Now()
		b.logger.Info("initializing tool", "agent_id", b.id, "tool", name)
		if err := b.tools[name].Initialize(ctx); err != nil {
			b.logger.Error("tool initialization failed", "agent_id", b.id, "tool", name, "error", err, "duration", time.Since(start))
			return fmt.Errorf("initialize tool %q: %w", name, err)
		}
		b.logger.Debug("tool initialized", "agent_id", b.id, "tool", name, "duration", time.Since(start))
	}

	return nil
}

// Stop transitions the agent from running to inert. It is a no-op when not
// running. Every registered tool is cleaned up best-effort: a cleanup failure
// is logged and swallowed so sibling tools still get cleaned up. Outstanding
// cleanup handles are then cancelled and awaited, with the cancellation
// suppressed, and the handle list is cleared.
//
// Stop never returns a non-nil error; the error return exists to satisfy the
// core.Agent contract.
func (b *BaseAgent) Stop(ctx context.Context) error {
	b.mu.Lock()

	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false

	for _, name := range b.toolOrder {
		b.logger.Info("cleaning up tool", "agent_id", b.id, "tool", name)
		if err := b.tools[name].Cleanup(ctx); err != nil {
			b.logger.Error("tool cleanup failed", "agent_id", b.id, "tool", name, "error", err)
		}
	}

	// Drain outside the lock: background work may touch mutex-taking agent
	// methods on its way out.
	handles := b.cleanups
	b.cleanups = nil
	b.mu.Unlock()

	for _, h := range handles {
		if !h.Finished() {
			h.Cancel()
		}
		<-h.Done()
	}

	return nil
}

// ManagedExecution runs fn between a guaranteed Start/Stop pair. Stop runs on
// every exit path — fn returning an error, fn panicking, or Start itself
// failing — so tools registered before the call are always cleaned up.
func (b *BaseAgent) ManagedExecution(ctx context.Context, fn func(ctx context.Context) error) error {
	err := b.Start(ctx)
	defer func() {
		_ = b.Stop(ctx)
	}()
	if err != nil {
		return err
	}
	return fn(ctx)
}

// AddCleanupTask registers a pending background handle to be cancelled and
// awaited when the agent stops.
func (b *BaseAgent) AddCleanupTask(h *CleanupHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanups = append(b.cleanups, h)
}

// Go launches fn on its own goroutine under a cancellable context derived
// from ctx and registers the resulting handle for cleanup at Stop. The
// returned handle lets callers await or cancel the work early.
func (b *BaseAgent) Go(ctx context.Context, fn func(ctx context.Context)) *CleanupHandle {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	h := NewCleanupHandle(cancel, done)
	b.AddCleanupTask(h)

	go func() {
		defer close(done)
		defer cancel()
		fn(ctx)
	}()

	return h
}

// Logger returns the agent's logger.
func (b *BaseAgent) Logger() logging.Logger { return b.logger }

// Run satisfies the core.Agent contract for variants without a continuous
// processing loop. It returns immediately.
func (b *BaseAgent) Run(context.Context) error { return nil }
