package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/arcanahq/arcana/core"
	"github.com/arcanahq/arcana/logging"
	"github.com/arcanahq/arcana/tool"
	"github.com/arcanahq/arcana/workflow"
)

// TaskAgent is the ephemeral specialized variant the manager spawns per
// decomposed task. It is bound to the manager's messenger and the shared
// knowledge base at construction, handles a single "user" message carrying a
// task, merges the execution result into the knowledge base and is then
// deprecated by its spawner.
//
// The pipeline that spawns a TaskAgent does not Start/Stop it; a TaskAgent
// that registers tools is responsible for running its work under
// ManagedExecution (or its caller is).
type TaskAgent struct {
	BaseAgent
	messenger core.Messenger
	kb        core.KnowledgeBase
	workflows *workflow.Registry
}

// TaskAgentOptions configures optional TaskAgent collaborators.
type TaskAgentOptions struct {
	// Logger used for lifecycle and execution logging.
	Logger logging.Logger
	// Workflows, when set, lets the agent resolve declarative workflows by
	// intent and execute their steps through registered tools.
	Workflows *workflow.Registry
}

// NewTaskAgent constructs a TaskAgent bound to a messenger and the shared
// knowledge base.
func NewTaskAgent(id string, messenger core.Messenger, kb core.KnowledgeBase, optFns ...func(o *TaskAgentOptions)) *TaskAgent {
	opts := TaskAgentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &TaskAgent{
		BaseAgent: NewBaseAgent(id, opts.Logger),
		messenger: messenger,
		kb:        kb,
		workflows: opts.Workflows,
	}
}

// ReceiveMessage handles a point-to-point message. The "user" action carries
// a decomposed task which is executed immediately; the result is merged into
// the knowledge base before the response returns. Unknown actions are
// acknowledged without error.
func (a *TaskAgent) ReceiveMessage(ctx context.Context, senderID string, msg core.Message) (map[string]any, error) {
	switch msg.Action {
	case core.ActionUser:
		if msg.Task == nil {
			a.Logger().Warn("user message without task", "agent_id", a.ID(), "sender", senderID)
			return map[string]any{"status": "ignored", "reason": "no task"}, nil
		}
		result, err := a.ExecuteTask(ctx, *msg.Task)
		if err != nil {
			return nil, err
		}
		a.retain(ctx, *msg.Task, result)
		return result, nil
	default:
		a.Logger().Warn("unknown message action", "agent_id", a.ID(), "sender", senderID, "action", msg.Action)
		return map[string]any{"status": "ignored", "action": msg.Action}, nil
	}
}

// ExecuteTask performs one decomposed task. A workflow registered for the
// task's intent takes precedence; otherwise the built-in booking and search
// handlers apply. Unknown intents produce a status-only result, never an
// error.
func (a *TaskAgent) ExecuteTask(ctx context.Context, task core.Task) (map[string]any, error) {
	start := time.Now()
	a.Logger().Info("executing task", "agent_id", a.ID(), "intent", task.Intent)

	if a.workflows != nil {
		if wf, ok := a.workflows.Lookup(task.Intent); ok {
			return a.runWorkflow(ctx, wf, task)
		}
	}

	switch task.Intent {
	case "book", "book_restaurant", "book_flight":
		return a.handleBooking(ctx, task)
	case "find", "search":
		return a.handleSearch(ctx, task)
	default:
		a.Logger().Warn("unknown intent", "agent_id", a.ID(), "intent", task.Intent, "duration", time.Since(start))
		return map[string]any{"status": "unknown_intent", "intent": task.Intent}, nil
	}
}

// runWorkflow executes every step of wf through this agent's registered
// tools. Step params override colliding entity keys.
func (a *TaskAgent) runWorkflow(ctx context.Context, wf *workflow.Workflow, task core.Task) (map[string]any, error) {
	a.Logger().Info("running workflow", "agent_id", a.ID(), "workflow", wf.Name, "steps", len(wf.Steps))

	outputs := make([]map[string]any, 0, len(wf.Steps))
	for i, step := range wf.Steps {
		t, ok := a.Tool(step.Tool)
		if !ok {
			return nil, fmt.Errorf("workflow %q step %d: tool %q not registered", wf.Name, i, step.Tool)
		}
		exec, ok := t.(tool.Executor)
		if !ok {
			return nil, fmt.Errorf("workflow %q step %d: tool %q is not executable", wf.Name, i, step.Tool)
		}

		params := make(map[string]any, len(task.Entities)+len(step.Params))
		for k, v := range task.Entities {
			params[k] = v
		}
		for k, v := range step.Params {
			params[k] = v
		}

		stepCtx := ctx
		if step.Timeout > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, step.Timeout.Std())
			defer cancel()
		}

		out, err := exec.Execute(stepCtx, params)
		if err != nil {
			return nil, fmt.Errorf("workflow %q step %d (%s): %w", wf.Name, i, step.Tool, err)
		}
		outputs = append(outputs, out)
	}

	return map[string]any{
		"status":   "success",
		"intent":   task.Intent,
		"workflow": wf.Name,
		"steps":    outputs,
	}, nil
}

// handleBooking executes a booking intent. When a "browser" executor tool is
// registered the booking is driven through it; otherwise the agent produces a
// structured confirmation from the entities alone.
func (a *TaskAgent) handleBooking(ctx context.Context, task core.Task) (map[string]any, error) {
	location := entityOr(task.Entities, "your area", "location", "GPE")
	people := entityOr(task.Entities, "2", "people", "NUMBER", "CARDINAL")
	date := entityOr(task.Entities, "today", "date", "DATE")

	if t, ok := a.Tool("browser"); ok {
		if exec, ok := t.(tool.Executor); ok {
			out, err := exec.Execute(ctx, map[string]any{
				"action":   "book",
				"location": location,
				"people":   people,
				"date":     date,
			})
			if err != nil {
				return nil, fmt.Errorf("booking via browser tool: %w", err)
			}
			out["status"] = "success"
			out["intent"] = task.Intent
			return out, nil
		}
	}

	a.Logger().Info("handling booking", "agent_id", a.ID(), "location", location, "people", people, "date", date)
	return map[string]any{
		"status":   "success",
		"intent":   task.Intent,
		"location": location,
		"people":   people,
		"date":     date,
	}, nil
}

// handleSearch executes a search intent against the knowledge base, falling
// back to an empty match set when nothing is stored under the query.
func (a *TaskAgent) handleSearch(ctx context.Context, task core.Task) (map[string]any, error) {
	query := entityOr(task.Entities, "", "query", "TOPIC")
	a.Logger().Info("handling search", "agent_id", a.ID(), "query", query)

	result := map[string]any{
		"status": "success",
		"intent": task.Intent,
		"query":  query,
	}
	if a.kb == nil || query == "" {
		result["matches"] = []string{}
		return result, nil
	}

	if v, err := a.kb.Retrieve(ctx, query); err == nil {
		result["matches"] = []any{v}
	} else {
		result["matches"] = []string{}
	}
	return result, nil
}

// retain merges a task result into the shared knowledge base so the outcome
// survives this agent's deprecation.
func (a *TaskAgent) retain(ctx context.Context, task core.Task, result map[string]any) {
	if a.kb == nil {
		return
	}
	key := fmt.Sprintf("results/%s", a.ID())
	record := map[string]any{
		"intent":   task.Intent,
		"entities": task.Entities,
		"result":   result,
	}
	if err := a.kb.Store(ctx, key, record); err != nil {
		a.Logger().Error("failed to retain task result", "agent_id", a.ID(), "key", key, "error", err)
	}
}

// Notify sends a free-form message to another registered agent through the
// manager's router. The response is the recipient's, or nil when the
// recipient no longer exists.
func (a *TaskAgent) Notify(ctx context.Context, recipientID, action string, payload map[string]any) (map[string]any, error) {
	if a.messenger == nil {
		return nil, fmt.Errorf("agent %s has no messenger", a.ID())
	}
	return a.messenger.SendMessage(ctx, a.ID(), recipientID, core.Message{
		ID:      core.NewID(),
		Action:  action,
		Payload: payload,
	})
}

// entityOr returns the first non-empty entity among keys, or fallback.
func entityOr(entities map[string]string, fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := entities[k]; ok && v != "" {
			return v
		}
	}
	return fallback
}
