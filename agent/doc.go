// Package agent contains first-class agent implementations and the shared
// lifecycle plumbing for building Arcana agents. The package focuses on three
// concerns:
//
//  1. Base lifecycle + tool registry plumbing (BaseAgent)
//  2. The ephemeral specialized worker spawned per decomposed task (TaskAgent)
//  3. A long-running scheduling variant (ReminderAgent)
//
// Design principles:
//   - Minimal hidden global state – explicit wiring via constructor options
//   - Capability contract over inheritance – embed BaseAgent, implement the
//     core.Agent methods your variant needs
//   - Observability – clear logging hooks at start/stop and tool transitions
//
// Execution model:
//   - Start initializes registered tools in registration order (fail-fast)
//   - Stop cleans up tools best-effort then cancels outstanding background
//     work registered via AddCleanupTask
//   - Both transitions are idempotent; agents restart any number of times
//
// The package intentionally keeps NLU, storage and orchestration concerns in
// their respective packages to avoid cyclic deps.
package agent
