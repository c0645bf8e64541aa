// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer ArcanaLogger with contextual
// helpers (manager, agent, component) and domain specific logging helpers for
// tool lifecycle, task execution and agent spawn/deprecation.
package logging
