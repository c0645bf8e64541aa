package tool

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
)

// SchedulerTool wraps a cron scheduler behind the tool lifecycle contract.
// Initialize starts the scheduler and Cleanup stops it, waiting for in-flight
// jobs to finish, so the owning agent's Start/Stop fully control when
// scheduled work may fire. Jobs scheduled while the tool is inert begin
// running only after the next Initialize.
type SchedulerTool struct {
	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSchedulerTool constructs a SchedulerTool using the standard five-field
// cron expression format.
func NewSchedulerTool() *SchedulerTool {
	return &SchedulerTool{cron: cron.New()}
}

// Initialize starts the underlying scheduler. Repeated calls are no-ops.
func (s *SchedulerTool) Initialize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.cron.Start()
	s.running = true
	return nil
}

// Cleanup stops the scheduler and waits for running jobs to complete, unless
// ctx is done first. Repeated calls are no-ops.
func (s *SchedulerTool) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	return nil
}

// Schedule registers fn to run on the given cron expression. The returned id
// can be passed to Remove. Scheduling is allowed in both lifecycle states;
// execution only happens while the tool is initialized.
func (s *SchedulerTool) Schedule(spec string, fn func()) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return 0, &ToolError{Tool: "scheduler", Message: err.Error(), Code: "INVALID_SCHEDULE"}
	}
	return id, nil
}

// Remove deletes a previously scheduled entry.
func (s *SchedulerTool) Remove(id cron.EntryID) { s.cron.Remove(id) }

// Entries returns the ids of all scheduled entries.
func (s *SchedulerTool) Entries() []cron.EntryID {
	entries := s.cron.Entries()
	ids := make([]cron.EntryID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}
