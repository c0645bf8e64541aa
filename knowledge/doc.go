// Package knowledge houses concrete implementations of core.KnowledgeBase.
// The interface itself lives in the core package to centralize domain
// contracts; keeping only implementations here prevents higher level packages
// (agents, manager) from depending on concrete storage.
//
// Add additional backends (Postgres, Firestore, etc.) in this package without
// changing any calling code — only the wiring layer decides which
// implementation to instantiate.
package knowledge
