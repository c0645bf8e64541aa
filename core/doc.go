// Package core provides the foundational domain types and interfaces used by
// Arcana. It defines the core abstractions for:
//
//   - Agents (independently running units with an explicit lifecycle)
//   - Tools (pluggable capabilities with initialize/cleanup hooks)
//   - Tasks and Messages (the decomposition + point-to-point delivery records)
//   - The knowledge base (shared-by-reference store handed to spawned agents)
//   - The NLU parser contract (external collaborator yielding intents/entities)
//
// The package intentionally keeps implementation concerns (concrete agents,
// storage backends, model providers, orchestration) out of scope, exposing
// small interfaces so higher packages can wire custom implementations without
// cyclic dependencies.
package core
