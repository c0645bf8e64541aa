// Package manager implements the orchestration layer of Arcana.
//
// The AgentManager serves as the central coordination hub: it owns the
// authoritative registry of live agents, routes point-to-point messages
// between them, drives their run loops concurrently, and turns a parsed user
// request into a sequence of intent-bound tasks, each handled by a freshly
// spawned ephemeral agent that is deprecated as soon as its task completes.
//
// # Responsibilities (abridged)
//   - Agent registry bookkeeping (register / lookup / deprecate, single writer)
//   - Synchronous point-to-point message delivery
//   - Concurrent run-loop supervision with fail-fast aggregation
//   - The request pipeline: parse → decompose → spawn → dispatch → deprecate
//
// See manager.go for the operational implementation details.
package manager
