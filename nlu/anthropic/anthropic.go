// Package anthropic provides a core.Parser implementation backed by the
// Anthropic Claude Messages API. The model is prompted to return a strict
// JSON object with intents and entities; parsing semantics beyond that
// contract stay inside the prompt.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/arcanahq/arcana/core"
)

const systemPrompt = `Parse the user request into structured intents and entities.
Return only a JSON object of the shape:
{"intents": ["<intent>", ...], "entities": {"<label>": "<text>", ...}}
Intents are snake_case user goals (e.g. "book_restaurant", "set_reminder").
Entities map a label (e.g. "date", "location", "people") to the exact text fragment.
Return an empty intents list when no goal is recognizable. No prose, no code fences.`

// Options configures the Anthropic parser (model id, max tokens, API key).
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Parser wraps the Anthropic Messages API behind the core.Parser interface.
type Parser struct {
	client *anthropic.Client
	opts   Options
}

// NewParser creates a new Anthropic parser using the official client.
func NewParser(optFns ...func(o *Options)) *Parser {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Parser{client: &client, opts: opts}
}

// NewParserFromClient creates a new Anthropic parser from an existing client.
func NewParserFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Parser {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Parser{client: client, opts: opts}
}

// Parse sends the input to Claude and decodes the structured result.
func (p *Parser) Parse(ctx context.Context, input string) (core.ParseResult, error) {
	params := anthropic.MessageNewParams{
		Model:     p.opts.Model,
		MaxTokens: p.opts.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return core.ParseResult{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return decodeResult(sb.String())
}

// decodeResult unmarshals the model output, tolerating stray code fences.
func decodeResult(raw string) (core.ParseResult, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var result core.ParseResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return core.ParseResult{}, fmt.Errorf("decode parse result: %w", err)
	}
	if result.Entities == nil {
		result.Entities = map[string]string{}
	}
	return result, nil
}
