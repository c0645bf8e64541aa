package core

import "github.com/google/uuid"

// Task pairs one parsed intent with the entity set extracted from the user
// request. Decomposition emits one Task per intent and every task carries the
// complete entity mapping, not a per-intent subset.
type Task struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
}

// ActionUser is the message action used by the request pipeline to hand a
// decomposed task to a freshly spawned agent.
const ActionUser = "user"

// Message is an addressed payload delivered point-to-point between agents.
// For the request pipeline Action is "user" and Task carries the decomposed
// work; other actions put free-form content in Payload.
type Message struct {
	ID      string         `json:"id"`
	Action  string         `json:"action"`
	Task    *Task          `json:"task,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewUserMessage builds a pipeline message carrying a decomposed task.
func NewUserMessage(task Task) Message {
	return Message{ID: NewID(), Action: ActionUser, Task: &task}
}

// NewID generates a unique identifier for messages and other records.
func NewID() string { return uuid.NewString() }
