// Package arcana provides a high-level façade over the agent manager and
// service abstractions (knowledge base, NLU parser, workflows & logging)
// enabling rapid construction of multi-agent assistants. Most applications
// interact with this package by:
//  1. Creating an Arcana via New() (optionally overriding default in-memory services)
//  2. Registering long-running agents (reminder, custom variants)
//  3. Handing user requests to HandleRequest, which spawns ephemeral
//     task agents per decomposed intent
//
// The façade delegates orchestration to manager.AgentManager while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// knowledge backend, an LLM-backed parser and a structured logger.
package arcana

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/arcanahq/arcana/agent"
	"github.com/arcanahq/arcana/config"
	"github.com/arcanahq/arcana/core"
	"github.com/arcanahq/arcana/knowledge"
	"github.com/arcanahq/arcana/logging"
	"github.com/arcanahq/arcana/manager"
	"github.com/arcanahq/arcana/nlu"
	nluanthropic "github.com/arcanahq/arcana/nlu/anthropic"
	nluopenai "github.com/arcanahq/arcana/nlu/openai"
	"github.com/arcanahq/arcana/workflow"
)

// Options configures the Arcana instance.
type Options struct {
	// Parser yields intents and entities from user input. Defaults to the
	// keyword parser.
	Parser core.Parser
	// KnowledgeBase shared by every spawned agent. Defaults to in-memory.
	KnowledgeBase core.KnowledgeBase
	// Workflows, when set, are resolved by intent inside spawned task agents.
	Workflows *workflow.Registry
	// Spawn overrides the ephemeral agent constructor.
	Spawn manager.SpawnFunc
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Arcana is the high-level façade aggregating the manager and its services.
type Arcana struct {
	opts    Options
	manager *manager.AgentManager
}

// New creates a new Arcana instance with optional overrides. Any unset
// service is initialized with a local default.
func New(optFns ...func(o *Options)) *Arcana {
	opts := Options{
		KnowledgeBase: knowledge.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parser == nil {
		// The default rule set never fails to compile.
		opts.Parser, _ = nlu.NewKeywordParser()
	}
	if opts.Spawn == nil {
		opts.Spawn = func(id string, messenger core.Messenger, kb core.KnowledgeBase) core.Agent {
			return agent.NewTaskAgent(id, messenger, kb, func(o *agent.TaskAgentOptions) {
				o.Logger = opts.Logger
				o.Workflows = opts.Workflows
			})
		}
	}

	m := manager.New(func(o *manager.Options) {
		o.Parser = opts.Parser
		o.KnowledgeBase = opts.KnowledgeBase
		o.Spawn = opts.Spawn
		o.Logger = opts.Logger
	})

	return &Arcana{opts: opts, manager: m}
}

// FromConfig assembles an Arcana instance from a loaded configuration:
// logger, parser provider, knowledge backend and workflow directory.
func FromConfig(ctx context.Context, cfg *config.Config) (*Arcana, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logger := logging.NewSlogLogger(parseLevel(cfg.Logging.Level), cfg.Logging.Format, false)

	parser, err := buildParser(cfg.NLU)
	if err != nil {
		return nil, err
	}

	kb, err := buildKnowledgeBase(ctx, cfg.Knowledge)
	if err != nil {
		return nil, err
	}

	var workflows *workflow.Registry
	if cfg.Workflows.Dir != "" {
		workflows, err = workflow.LoadDir(cfg.Workflows.Dir)
		if err != nil {
			return nil, fmt.Errorf("load workflows: %w", err)
		}
	}

	return New(func(o *Options) {
		o.Parser = parser
		o.KnowledgeBase = kb
		o.Workflows = workflows
		o.Logger = logger
	}), nil
}

func parseLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

func buildParser(cfg config.NLUConfig) (core.Parser, error) {
	switch cfg.Provider {
	case "anthropic":
		return nluanthropic.NewParser(func(o *nluanthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.APIKey = cfg.APIKey
		}), nil
	case "openai":
		return nluopenai.NewParser(func(o *nluopenai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.APIKey
		}), nil
	case "keyword", "":
		return nlu.NewKeywordParser()
	default:
		return nil, fmt.Errorf("unknown nlu provider %q", cfg.Provider)
	}
}

func buildKnowledgeBase(ctx context.Context, cfg config.KnowledgeConfig) (core.KnowledgeBase, error) {
	switch cfg.Backend {
	case "redis":
		return knowledge.NewRedisStore(ctx, knowledge.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case "memory", "":
		return knowledge.NewInMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown knowledge backend %q", cfg.Backend)
	}
}

// Manager exposes the underlying AgentManager for advanced wiring.
func (a *Arcana) Manager() *manager.AgentManager { return a.manager }

// KnowledgeBase returns the shared knowledge base.
func (a *Arcana) KnowledgeBase() core.KnowledgeBase { return a.opts.KnowledgeBase }

// RegisterAgent adds a long-running agent to the manager's registry.
func (a *Arcana) RegisterAgent(ag core.Agent) { a.manager.RegisterAgent(ag) }

// HandleRequest runs the request pipeline for one user input.
func (a *Arcana) HandleRequest(ctx context.Context, input string) error {
	return a.manager.HandleUserRequest(ctx, input)
}

// RunAgents drives every registered agent's run loop until completion or
// first failure.
func (a *Arcana) RunAgents(ctx context.Context) error {
	return a.manager.RunAgents(ctx)
}
