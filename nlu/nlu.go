// Package nlu contains implementations of the core.Parser contract — the
// external collaborator that turns free-form user input into intents and
// entities. The core never depends on parsing semantics; these
// implementations range from deterministic keyword rules (offline, tests) to
// LLM-backed extraction in the anthropic and openai sub-packages.
package nlu

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/arcanahq/arcana/core"
)

// Rule binds an intent to the trigger phrases that activate it. Triggers are
// matched case-insensitively as substrings of the input.
type Rule struct {
	Intent   string
	Triggers []string
}

// KeywordParser is a deterministic rule/regex parser. It classifies intents
// by trigger phrases in declaration order and extracts entities with named
// regular expressions. Suited to tests, examples and offline operation; for
// open-ended input use the LLM-backed parsers instead.
type KeywordParser struct {
	rules    []Rule
	labels   []string
	patterns map[string]*regexp.Regexp
}

// KeywordOptions overrides the built-in rules and entity patterns.
type KeywordOptions struct {
	// Rules replace the default intent rules when non-empty.
	Rules []Rule
	// EntityPatterns maps an entity label to a regular expression. A pattern
	// with a capture group extracts the group, otherwise the whole match.
	EntityPatterns map[string]string
}

var defaultRules = []Rule{
	{Intent: "book_restaurant", Triggers: []string{"book a table", "reserve a table", "restaurant"}},
	{Intent: "book_flight", Triggers: []string{"book a flight", "flight to"}},
	{Intent: "set_reminder", Triggers: []string{"remind", "reminder"}},
	{Intent: "search", Triggers: []string{"find", "search", "look up"}},
}

var defaultEntityPatterns = map[string]string{
	"date":     `(\d{4}-\d{2}-\d{2}|today|tomorrow|tonight)`,
	"time":     `\b(\d{1,2}:\d{2})\b`,
	"people":   `\bfor (\d+)\b`,
	"location": `\bin ([A-Z][a-zA-Z]+)`,
}

// NewKeywordParser constructs a parser with the default rules and patterns,
// optionally overridden.
func NewKeywordParser(optFns ...func(o *KeywordOptions)) (*KeywordParser, error) {
	opts := KeywordOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	rules := opts.Rules
	if len(rules) == 0 {
		rules = defaultRules
	}
	patternSpecs := opts.EntityPatterns
	if len(patternSpecs) == 0 {
		patternSpecs = defaultEntityPatterns
	}

	// Sorted label order keeps extraction deterministic.
	labels := make([]string, 0, len(patternSpecs))
	for label := range patternSpecs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	patterns := make(map[string]*regexp.Regexp, len(patternSpecs))
	for label, spec := range patternSpecs {
		re, err := regexp.Compile(spec)
		if err != nil {
			return nil, err
		}
		patterns[label] = re
	}

	return &KeywordParser{rules: rules, labels: labels, patterns: patterns}, nil
}

// Parse classifies intents and extracts entities from input. Intents appear
// in rule declaration order, at most once each; an input matching no rule
// yields an empty intent list, not an error.
func (p *KeywordParser) Parse(_ context.Context, input string) (core.ParseResult, error) {
	lowered := strings.ToLower(input)

	var intents []string
	for _, rule := range p.rules {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lowered, strings.ToLower(trigger)) {
				intents = append(intents, rule.Intent)
				break
			}
		}
	}

	entities := make(map[string]string)
	for _, label := range p.labels {
		re := p.patterns[label]
		match := re.FindStringSubmatch(input)
		if match == nil {
			continue
		}
		if len(match) > 1 {
			entities[label] = match[1]
		} else {
			entities[label] = match[0]
		}
	}

	return core.ParseResult{Intents: intents, Entities: entities}, nil
}
