package core

import "context"

// Agent defines the capability contract every agent kind in Arcana satisfies.
//
// Agents own a set of registered tools and expose an explicit running/inert
// lifecycle: Start initializes tools (fail-fast), Stop cleans them up
// (best-effort) and cancels outstanding background work. Both transitions are
// idempotent and an agent may oscillate between the two states for its whole
// lifetime; there is no terminal state.
//
// ExecuteTask and ReceiveMessage are polymorphic per concrete variant — a
// task-handling agent, a reminder agent and so on each supply their own
// behavior. No default implementation exists for either.
type Agent interface {
	// ID returns the unique identifier assigned at construction. The manager
	// keys its registry by this value.
	ID() string

	// Start transitions the agent from inert to running and initializes every
	// registered tool in registration order. Calling Start on a running agent
	// is a no-op. A tool initialization failure aborts Start immediately,
	// leaving later tools uninitialized; callers must Stop before retrying.
	Start(ctx context.Context) error

	// Stop transitions the agent from running to inert, cleans up every tool
	// (failures are logged and swallowed) and cancels outstanding background
	// work. Calling Stop on an inert agent is a no-op.
	Stop(ctx context.Context) error

	// Run drives the agent's own processing loop until it finishes or the
	// context is cancelled. Agents without a continuous loop return nil
	// immediately.
	Run(ctx context.Context) error

	// ExecuteTask performs one decomposed task and returns a result mapping.
	ExecuteTask(ctx context.Context, task Task) (map[string]any, error)

	// ReceiveMessage handles a point-to-point message from another agent (or
	// the user pseudo-sender) and returns a response mapping.
	ReceiveMessage(ctx context.Context, senderID string, msg Message) (map[string]any, error)
}

// Messenger is the minimal send capability agents need to reach each other.
// The manager satisfies it; spawned agents hold a Messenger rather than the
// concrete manager to avoid an import cycle.
type Messenger interface {
	// SendMessage delivers msg to recipientID and returns the recipient's
	// response. Delivery is synchronous from the caller's perspective.
	SendMessage(ctx context.Context, senderID, recipientID string, msg Message) (map[string]any, error)
}
