package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arcanahq/arcana/core"
	"github.com/arcanahq/arcana/logging"
	"github.com/arcanahq/arcana/tool"
)

// Reminder is one scheduled notification owned by a ReminderAgent.
type Reminder struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	DueAt   time.Time `json:"due_at,omitempty"`
	Cron    string    `json:"cron,omitempty"`
	FiredAt time.Time `json:"fired_at,omitempty"`
}

// ReminderAgent is a long-running variant that schedules reminders and
// records firings in the shared knowledge base. One-shot reminders run on
// timer goroutines registered as cleanup handles, so stopping the agent
// cancels everything still pending. Recurring reminders go through a cron
// scheduler registered as a tool, tying its start/stop to the agent
// lifecycle.
type ReminderAgent struct {
	BaseAgent
	kb        core.KnowledgeBase
	scheduler *tool.SchedulerTool

	mu      sync.Mutex
	pending map[string]Reminder
}

// NewReminderAgent constructs a ReminderAgent bound to the shared knowledge
// base. The cron scheduler is registered under the tool name "scheduler".
func NewReminderAgent(id string, kb core.KnowledgeBase, logger logging.Logger) *ReminderAgent {
	a := &ReminderAgent{
		BaseAgent: NewBaseAgent(id, logger),
		kb:        kb,
		scheduler: tool.NewSchedulerTool(),
		pending:   make(map[string]Reminder),
	}
	a.RegisterTool("scheduler", a.scheduler)
	return a
}

// Run blocks until the context is cancelled. Reminder firing happens on
// background timers and cron entries, not in the run loop itself.
func (a *ReminderAgent) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// SetReminder schedules a one-shot reminder firing after delay. The timer
// goroutine is registered as a cleanup handle; stopping the agent cancels it
// without the reminder firing.
func (a *ReminderAgent) SetReminder(ctx context.Context, text string, delay time.Duration) string {
	rem := Reminder{ID: core.NewID(), Text: text, DueAt: time.Now().Add(delay)}

	a.mu.Lock()
	a.pending[rem.ID] = rem
	a.mu.Unlock()

	a.Go(ctx, func(ctx context.Context) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			a.mu.Lock()
			delete(a.pending, rem.ID)
			a.mu.Unlock()
		case <-timer.C:
			a.fire(ctx, rem)
		}
	})

	a.Logger().Info("reminder scheduled", "agent_id", a.ID(), "reminder_id", rem.ID, "due_at", rem.DueAt)
	return rem.ID
}

// SetRecurring schedules a recurring reminder on a cron expression. Firing
// only happens while the agent (and therefore the scheduler tool) is running.
func (a *ReminderAgent) SetRecurring(text, cronSpec string) (string, error) {
	rem := Reminder{ID: core.NewID(), Text: text, Cron: cronSpec}
	if _, err := a.scheduler.Schedule(cronSpec, func() {
		a.fire(context.Background(), rem)
	}); err != nil {
		return "", fmt.Errorf("schedule recurring reminder: %w", err)
	}

	a.mu.Lock()
	a.pending[rem.ID] = rem
	a.mu.Unlock()

	a.Logger().Info("recurring reminder scheduled", "agent_id", a.ID(), "reminder_id", rem.ID, "cron", cronSpec)
	return rem.ID, nil
}

// Pending returns the reminders that have not fired yet.
func (a *ReminderAgent) Pending() []Reminder {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Reminder, 0, len(a.pending))
	for _, rem := range a.pending {
		out = append(out, rem)
	}
	return out
}

func (a *ReminderAgent) fire(ctx context.Context, rem Reminder) {
	rem.FiredAt = time.Now()

	a.mu.Lock()
	if rem.Cron == "" {
		delete(a.pending, rem.ID)
	}
	a.mu.Unlock()

	a.Logger().Info("reminder fired", "agent_id", a.ID(), "reminder_id", rem.ID, "text", rem.Text)
	if a.kb == nil {
		return
	}
	key := fmt.Sprintf("reminders/%s", rem.ID)
	if err := a.kb.Store(ctx, key, rem); err != nil {
		a.Logger().Error("failed to record fired reminder", "agent_id", a.ID(), "reminder_id", rem.ID, "error", err)
	}
}

// ExecuteTask handles the set_reminder intent. The entity set supplies the
// reminder text ("message") and either a relative delay ("in", Go duration
// syntax) or a cron expression ("cron").
func (a *ReminderAgent) ExecuteTask(ctx context.Context, task core.Task) (map[string]any, error) {
	if task.Intent != "set_reminder" && task.Intent != "remind" {
		a.Logger().Warn("unknown intent", "agent_id", a.ID(), "intent", task.Intent)
		return map[string]any{"status": "unknown_intent", "intent": task.Intent}, nil
	}

	text := entityOr(task.Entities, "reminder", "message", "text")

	if spec, ok := task.Entities["cron"]; ok && spec != "" {
		id, err := a.SetRecurring(text, spec)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "success", "intent": task.Intent, "reminder_id": id, "cron": spec}, nil
	}

	delay := time.Minute
	if in, ok := task.Entities["in"]; ok && in != "" {
		d, err := time.ParseDuration(in)
		if err != nil {
			return nil, fmt.Errorf("parse reminder delay %q: %w", in, err)
		}
		delay = d
	}

	id := a.SetReminder(ctx, text, delay)
	return map[string]any{"status": "success", "intent": task.Intent, "reminder_id": id}, nil
}

// ReceiveMessage accepts "user" messages carrying set_reminder tasks; other
// actions are acknowledged without effect.
func (a *ReminderAgent) ReceiveMessage(ctx context.Context, senderID string, msg core.Message) (map[string]any, error) {
	if msg.Action != core.ActionUser || msg.Task == nil {
		a.Logger().Warn("unhandled message", "agent_id", a.ID(), "sender", senderID, "action", msg.Action)
		return map[string]any{"status": "ignored", "action": msg.Action}, nil
	}
	return a.ExecuteTask(ctx, *msg.Task)
}
