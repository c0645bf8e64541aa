package agent

import (
	"context"
	"testing"
	"time"

	"github.com/arcanahq/arcana/core"
	"github.com/arcanahq/arcana/knowledge"
	"github.com/arcanahq/arcana/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ core.Agent = (*ReminderAgent)(nil)

func TestReminderFiresAndIsRecorded(t *testing.T) {
	kb := knowledge.NewInMemoryStore()
	a := NewReminderAgent("reminder_agent", kb, logging.NoOpLogger{})

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	defer a.Stop(ctx)

	id := a.SetReminder(ctx, "stand up", 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, err := kb.Retrieve(ctx, "reminders/"+id)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, a.Pending())
}

func TestStopCancelsPendingReminder(t *testing.T) {
	kb := knowledge.NewInMemoryStore()
	a := NewReminderAgent("reminder_agent", kb, logging.NoOpLogger{})

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))

	id := a.SetReminder(ctx, "way later", time.Hour)
	require.Len(t, a.Pending(), 1)

	require.NoError(t, a.Stop(ctx))

	// The timer goroutine was cancelled and the reminder never fired.
	assert.Empty(t, a.Pending())
	_, err := kb.Retrieve(ctx, "reminders/"+id)
	assert.ErrorIs(t, err, knowledge.ErrNotFound)
}

func TestRecurringReminderValidatesCronSpec(t *testing.T) {
	a := NewReminderAgent("reminder_agent", nil, logging.NoOpLogger{})

	_, err := a.SetRecurring("daily standup", "not a cron spec")
	require.Error(t, err)

	id, err := a.SetRecurring("daily standup", "0 9 * * *")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, a.Pending(), 1)
}

func TestReminderAgentExecuteTask(t *testing.T) {
	kb := knowledge.NewInMemoryStore()
	a := NewReminderAgent("reminder_agent", kb, logging.NoOpLogger{})

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	defer a.Stop(ctx)

	result, err := a.ExecuteTask(ctx, core.Task{
		Intent:   "set_reminder",
		Entities: map[string]string{"message": "tea time", "in": "10ms"},
	})
	require.NoError(t, err)
	assert.Equal(t, "success", result["status"])

	id, ok := result["reminder_id"].(string)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, err := kb.Retrieve(ctx, "reminders/"+id)
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestReminderAgentRejectsBadDelay(t *testing.T) {
	a := NewReminderAgent("reminder_agent", nil, logging.NoOpLogger{})

	_, err := a.ExecuteTask(context.Background(), core.Task{
		Intent:   "set_reminder",
		Entities: map[string]string{"in": "soonish"},
	})
	require.Error(t, err)
}

func TestReminderAgentReceiveMessageUnknownIntent(t *testing.T) {
	a := NewReminderAgent("reminder_agent", nil, logging.NoOpLogger{})

	task := core.Task{Intent: "book_restaurant", Entities: map[string]string{}}
	result, err := a.ReceiveMessage(context.Background(), "user", core.NewUserMessage(task))
	require.NoError(t, err)
	assert.Equal(t, "unknown_intent", result["status"])
}

func TestReminderAgentRunReturnsOnCancel(t *testing.T) {
	a := NewReminderAgent("reminder_agent", nil, logging.NoOpLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run loop did not return after cancellation")
	}
}
