// Package openai provides a core.Parser implementation backed by the OpenAI
// Chat Completions API. It mirrors the anthropic parser: the model is
// prompted to emit a strict JSON object with intents and entities.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/arcanahq/arcana/core"
)

const systemPrompt = `Parse the user request into structured intents and entities.
Return only a JSON object of the shape:
{"intents": ["<intent>", ...], "entities": {"<label>": "<text>", ...}}
Intents are snake_case user goals (e.g. "book_restaurant", "set_reminder").
Entities map a label (e.g. "date", "location", "people") to the exact text fragment.
Return an empty intents list when no goal is recognizable. No prose, no code fences.`

// Options configure the OpenAI parser. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	MaxCompletionTokens int64
	APIKey              string
}

// Parser wraps the OpenAI Chat Completions API behind the core.Parser interface.
type Parser struct {
	client *openai.Client
	opts   Options
}

// NewParser creates a new OpenAI parser using the official client. An empty
// APIKey falls back to the client's environment-based authentication.
func NewParser(optFns ...func(o *Options)) *Parser {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)

	return &Parser{client: &client, opts: opts}
}

// NewParserFromClient creates a new OpenAI parser from an existing client.
func NewParserFromClient(client *openai.Client, optFns ...func(o *Options)) *Parser {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Parser{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		MaxCompletionTokens: 1024,
	}
}

// Parse sends the input to the model and decodes the structured result.
func (p *Parser) Parse(ctx context.Context, input string) (core.ParseResult, error) {
	params := openai.ChatCompletionNewParams{
		Model: p.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(input),
		},
		MaxCompletionTokens: openai.Int(p.opts.MaxCompletionTokens),
		Temperature:         openai.Float(0),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return core.ParseResult{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return core.ParseResult{}, fmt.Errorf("openai returned no choices")
	}

	return decodeResult(completion.Choices[0].Message.Content)
}

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
