package core

import "context"

// ParseResult is the structured outcome of natural-language understanding:
// the ordered intents classified from the input and the entities extracted
// alongside them (label → surface text).
type ParseResult struct {
	Intents  []string          `json:"intents"`
	Entities map[string]string `json:"entities"`
}

// Parser is the contract the manager requires from its NLU collaborator.
// Parsing semantics (keyword rules, LLM extraction, ...) are entirely the
// implementation's concern; the core only consumes intents and entities.
type Parser interface {
	Parse(ctx context.Context, input string) (ParseResult, error)
}
