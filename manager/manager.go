package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/arcanahq/arcana/agent"
	"github.com/arcanahq/arcana/core"
	"github.com/arcanahq/arcana/logging"
)

// SpawnFunc constructs the ephemeral specialized agent for one decomposed
// task. The manager hands each spawned agent its own messenger reference and
// the shared knowledge base.
type SpawnFunc func(id string, messenger core.Messenger, kb core.KnowledgeBase) core.Agent

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Parser is the external NLU collaborator yielding intents and entities.
	Parser core.Parser
	// KnowledgeBase is passed by reference to every spawned agent.
	KnowledgeBase core.KnowledgeBase
	// Spawn overrides the specialized agent constructor used by the request
	// pipeline. Defaults to agent.NewTaskAgent.
	Spawn SpawnFunc
	// Logger for registry and routing events.
	Logger logging.Logger
}

// AgentManager owns the registry of live agents and the request-handling
// pipeline. The registry has a single writer — the manager itself — and the
// ephemeral id counter is manager-scoped, so independent managers never
// collide on ids. Public methods are safe for concurrent use.
type AgentManager struct {
	mu      sync.RWMutex
	agents  map[string]core.Agent
	counter int

	parser core.Parser
	kb     core.KnowledgeBase
	spawn  SpawnFunc
	logger logging.Logger
}

// New constructs an AgentManager with optional overrides.
func New(optFns ...func(o *Options)) *AgentManager {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Spawn == nil {
		opts.Spawn = func(id string, messenger core.Messenger, kb core.KnowledgeBase) core.Agent {
			return agent.NewTaskAgent(id, messenger, kb, func(o *agent.TaskAgentOptions) {
				o.Logger = opts.Logger
			})
		}
	}
	return &AgentManager{
		agents: make(map[string]core.Agent),
		parser: opts.Parser,
		kb:     opts.KnowledgeBase,
		spawn:  opts.Spawn,
		logger: opts.Logger,
	}
}

// KnowledgeBase returns the shared knowledge base reference.
func (m *AgentManager) KnowledgeBase() core.KnowledgeBase { return m.kb }

// RegisterAgent inserts a into the registry keyed by its own id. A colliding
// id silently overwrites the previous entry; uniqueness is guaranteed only by
// the id-minting scheme.
func (m *AgentManager) RegisterAgent(a core.Agent) {
	m.mu.Lock()
	m.agents[a.ID()] = a
	m.mu.Unlock()
	m.logger.Debug("agent registered", "agent_id", a.ID())
}

// Agent returns the registered agent under id, if any. Callers that need to
// distinguish a dropped message from a delivered one can check the recipient
// here before sending.
func (m *AgentManager) Agent(id string) (core.Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	return a, ok
}

// AgentIDs returns the ids of all currently registered agents.
func (m *AgentManager) AgentIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.agents))
	for id := range m.agents {
		ids = append(ids, id)
	}
	return ids
}

// DeprecateAgent removes the agent from the registry if present. This is the
// sole retirement mechanism; any merge of the agent's accumulated state into
// the knowledge base is the agent's own responsibility before this point.
func (m *AgentManager) DeprecateAgent(agentID string) {
	m.mu.Lock()
	_, present := m.agents[agentID]
	delete(m.agents, agentID)
	m.mu.Unlock()
	if present {
		m.logger.Info("agent deprecated", "agent_id", agentID)
	}
}

// SendMessage delivers msg to recipientID and returns the recipient's
// response. Delivery is synchronous: the call does not return until the
// recipient's ReceiveMessage completes.
//
// A message to an unknown recipient is logged as an error and silently
// dropped — the caller receives (nil, nil), not a failure. Callers that must
// detect the drop can check Agent(recipientID) beforehand.
func (m *AgentManager) SendMessage(ctx context.Context, senderID, recipientID string, msg core.Message) (map[string]any, error) {
	m.mu.RLock()
	recipient, ok := m.agents[recipientID]
	m.mu.RUnlock()

	if !ok {
		m.logger.Error("message recipient not found", "sender", senderID, "recipient", recipientID, "action", msg.Action)
		return nil, nil
	}

	return recipient.ReceiveMessage(ctx, senderID, msg)
}

// RunAgents concurrently drives every registered agent's run loop and blocks
// until all of them return. The first failure cancels the remaining loops and
// surfaces to the caller; sibling outcomes after that point are undefined.
func (m *AgentManager) RunAgents(ctx context.Context) error {
	m.mu.RLock()
	agents := make([]core.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		agents = append(agents, a)
	}
	m.mu.RUnlock()

	if len(agents) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	for _, a := range agents {
		wg.Add(1)
		go func(a core.Agent) {
			defer wg.Done()
			if err := a.Run(ctx); err != nil {
				select {
				case errCh <- fmt.Errorf("agent %s run loop: %w", a.ID(), err):
				default:
				}
				cancel()
			}
		}(a)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// DecomposeTasks emits one task per parsed intent, each carrying the complete
// entity set extracted from the request. Entities are deliberately not
// filtered per intent — every task sees the whole mapping.
func (m *AgentManager) DecomposeTasks(intents []string, entities map[string]string) []core.Task {
	tasks := make([]core.Task, 0, len(intents))
	for _, intent := range intents {
		tasks = append(tasks, core.Task{Intent: intent, Entities: entities})
	}
	return tasks
}

// HandleUserRequest runs the full request pipeline: the configured parser
// yields intents and entities, decomposition produces one task per intent,
// and each task is handled by a freshly spawned specialized agent that is
// registered, messaged once and immediately deprecated.
//
// The pipeline does not Start/Stop the ephemeral agents; lifecycle management
// belongs to the spawned agent itself (or whatever its handlers wrap in
// ManagedExecution).
func (m *AgentManager) HandleUserRequest(ctx context.Context, userInput string) error {
	if m.parser == nil {
		return fmt.Errorf("no parser configured")
	}

	parsed, err := m.parser.Parse(ctx, userInput)
	if err != nil {
		return fmt.Errorf("parse user request: %w", err)
	}
	m.logger.Info("user request parsed", "intents", parsed.Intents)

	tasks := m.DecomposeTasks(parsed.Intents, parsed.Entities)

	for _, task := range tasks {
		agentID := m.mintAgentID()
		specialized := m.spawn(agentID, m, m.kb)
		m.RegisterAgent(specialized)
		m.logger.Info("spawned specialized agent", "agent_id", agentID, "intent", task.Intent)

		_, err := m.SendMessage(ctx, "user", agentID, core.NewUserMessage(task))

		// Deprecate regardless of outcome: the agent exists for exactly one
		// task delivery.
		m.DeprecateAgent(agentID)
		if err != nil {
			return fmt.Errorf("dispatch task %q to %s: %w", task.Intent, agentID, err)
		}
	}

	return nil
}

// mintAgentID increments the manager-scoped counter and returns a fresh
// ephemeral id. Deprecated ids are never reused.
func (m *AgentManager) mintAgentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("specialized_agent_%d", m.counter)
}

// Counter returns the number of ephemeral ids minted so far.
func (m *AgentManager) Counter() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counter
}
