package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymleadhub/atlas-agent/internal/agent"
	"github.com/gymleadhub/atlas-agent/internal/config"
	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/knowledge"
	"github.com/gymleadhub/atlas-agent/internal/store"
	"github.com/gymleadhub/atlas-agent/internal/tools"
)

// scriptedClient returns the same result every call, or an error.
type scriptedClient struct {
	result *core.ChatResult
	err    error
	calls  int
}

func (c *scriptedClient) ChatCompletion(ctx context.Context, messages []core.Message, opts core.ChatOptions) (*core.ChatResult, error) {
	return c.ChatCompletionWithTools(ctx, messages, nil, opts)
}

func (c *scriptedClient) ChatCompletionWithTools(ctx context.Context, messages []core.Message, defs []core.ToolDefinition, opts core.ChatOptions) (*core.ChatResult, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

type fixture struct {
	db      *store.DB
	runner  *Runner
	client  *scriptedClient
	orgID   string
	agentID string
}

func setup(t *testing.T, client *scriptedClient) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(ctx, t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	orgID, err := db.CreateOrganization(ctx, "Gym", "")
	require.NoError(t, err)
	agentID, err := db.CreateAgent(ctx, store.Agent{
		OrganizationID: orgID,
		Name:           "Follow-up Bot",
		SystemPrompt:   "You chase leads.",
		Enabled:        true,
	})
	require.NoError(t, err)

	orch := agent.NewOrchestrator(db, client, tools.NewBuiltinRegistry(db, nil), knowledge.NewProvider(db),
		config.OrchestratorConfig{MaxToolIterations: 8, HistoryLimit: 30}, "gpt-4o-mini", nil)
	runner := NewRunner(db, orch, time.Minute, 10*time.Minute, nil)
	return &fixture{db: db, runner: runner, client: client, orgID: orgID, agentID: agentID}
}

func (f *fixture) addDueTask(t *testing.T, title string) string {
	t.Helper()
	id, err := f.db.CreateTask(context.Background(), store.ScheduledTask{
		OrganizationID: f.orgID,
		AgentID:        f.agentID,
		Title:          title,
		DueAt:          time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)
	return id
}

func TestCheckRunsDueTaskOnce(t *testing.T) {
	f := setup(t, &scriptedClient{result: &core.ChatResult{Content: "Sent a nudge."}})
	taskID := f.addDueTask(t, "chase trial lead")
	ctx := context.Background()

	n := f.runner.CheckScheduledTasks(ctx)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 1, f.runner.Status().TasksQueued)
	assert.EqualValues(t, 0, f.runner.Status().TasksFailed)
	assert.Equal(t, 1, f.client.calls)

	tasks, err := f.db.ListTasks(ctx, f.orgID, store.TaskCompleted)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, taskID, tasks[0].ID)

	// Re-running the check never double-queues the same row.
	n = f.runner.CheckScheduledTasks(ctx)
	assert.Zero(t, n)
	assert.EqualValues(t, 1, f.runner.Status().TasksQueued)
	assert.Equal(t, 1, f.client.calls)
}

func TestCheckSkipsFutureTasks(t *testing.T) {
	f := setup(t, &scriptedClient{result: &core.ChatResult{Content: "ok"}})
	_, err := f.db.CreateTask(context.Background(), store.ScheduledTask{
		OrganizationID: f.orgID,
		AgentID:        f.agentID,
		Title:          "tomorrow",
		DueAt:          time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	n := f.runner.CheckScheduledTasks(context.Background())
	assert.Zero(t, n)
	assert.Zero(t, f.client.calls)
}

func TestFailedTurnMarksTaskFailed(t *testing.T) {
	f := setup(t, &scriptedClient{err: assert.AnError})
	f.addDueTask(t, "doomed")
	ctx := context.Background()

	n := f.runner.CheckScheduledTasks(ctx)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 1, f.runner.Status().TasksQueued)
	assert.EqualValues(t, 1, f.runner.Status().TasksFailed)

	tasks, err := f.db.ListTasks(ctx, f.orgID, store.TaskFailed)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.NotEmpty(t, tasks[0].LastError)
}

func TestTaskRunsThroughOrchestratorWithNote(t *testing.T) {
	f := setup(t, &scriptedClient{result: &core.ChatResult{Content: "done"}})
	ctx := context.Background()
	_, err := f.db.CreateTask(ctx, store.ScheduledTask{
		OrganizationID: f.orgID,
		AgentID:        f.agentID,
		Title:          "nudge",
		Payload:        `{"note":"ask about the trial"}`,
		DueAt:          time.Now().UTC().Add(-time.Second),
	})
	require.NoError(t, err)

	f.runner.CheckScheduledTasks(ctx)

	// The turn landed in a fresh conversation with the payload note.
	rows, err := f.db.QueryContext(ctx, `SELECT content FROM messages WHERE role = 'user'`)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var content string
	require.NoError(t, rows.Scan(&content))
	assert.Contains(t, content, "ask about the trial")
	assert.Contains(t, content, "[Scheduled follow-up]")
}

func TestStartStopLifecycle(t *testing.T) {
	f := setup(t, &scriptedClient{result: &core.ChatResult{Content: "ok"}})

	assert.False(t, f.runner.Status().Running)
	f.runner.Start()
	assert.True(t, f.runner.Status().Running)

	// Idempotent start.
	f.runner.Start()
	assert.True(t, f.runner.Status().Running)

	f.runner.Stop()
	assert.False(t, f.runner.Status().Running)

	// Idempotent stop.
	f.runner.Stop()
	assert.False(t, f.runner.Status().Running)
}
