package core

import "context"

// KnowledgeBase is the shared store handed by reference to every spawned
// agent. Agents merge their accumulated results into it during execution,
// before deprecation; the manager itself never writes to it.
//
// Concurrency control beyond what a concrete backend provides is outside this
// core — concurrent agents coordinate through the backend's own guarantees.
type KnowledgeBase interface {
	// Store persists value under key, overwriting any previous value.
	Store(ctx context.Context, key string, value any) error

	// Retrieve returns the value stored under key. Implementations return an
	// error satisfying errors.Is(err, knowledge.ErrNotFound) for missing keys.
	Retrieve(ctx context.Context, key string) (any, error)

	// Keys lists all keys currently present.
	Keys(ctx context.Context) ([]string, error)

	// Delete removes key if present. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
