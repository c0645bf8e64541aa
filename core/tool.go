package core

import "context"

// Tool is the lifecycle contract every pluggable capability satisfies.
//
// A tool is owned exclusively by the single agent holding the reference; no
// tool is shared across agents. Initialize runs during the owning agent's
// Start and may fail, which aborts the start. Cleanup runs during Stop; a
// cleanup failure is logged by the owner and never propagated so sibling
// tools still get cleaned up.
type Tool interface {
	// Initialize prepares the tool for use (open connections, load state).
	Initialize(ctx context.Context) error

	// Cleanup releases any resources held by the tool.
	Cleanup(ctx context.Context) error
}
