// Package scheduler runs due follow-up tasks through the agent loop.
package scheduler

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gymleadhub/atlas-agent/internal/agent"
	"github.com/gymleadhub/atlas-agent/internal/store"
)

// claimBatchSize caps how many tasks one check picks up.
const claimBatchSize = 25

// Runner polls for due scheduled tasks and dispatches each through the
// orchestrator. One Runner per process; the DB claim keeps a single instance
// honest, but two instances sharing a DB is not a supported deployment.
type Runner struct {
	DB           *store.DB
	Orchestrator *agent.Orchestrator
	Logger       *slog.Logger

	Interval     time.Duration
	StaleTimeout time.Duration

	running     atomic.Bool
	tasksQueued atomic.Int64
	tasksFailed atomic.Int64
	stop        chan struct{}
	done        chan struct{}
}

// NewRunner creates a stopped runner.
func NewRunner(db *store.DB, orch *agent.Orchestrator, interval, staleTimeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		DB:           db,
		Orchestrator: orch,
		Logger:       logger,
		Interval:     interval,
		StaleTimeout: staleTimeout,
	}
}

// Status is a point-in-time snapshot of the runner.
type Status struct {
	Running     bool  `json:"running"`
	TasksQueued int64 `json:"tasks_queued"`
	TasksFailed int64 `json:"tasks_failed"`
}

// Status reports the running flag and lifetime counters.
func (r *Runner) Status() Status {
	return Status{
		Running:     r.running.Load(),
		TasksQueued: r.tasksQueued.Load(),
		TasksFailed: r.tasksFailed.Load(),
	}
}

// Start begins the background poll loop. Starting a running runner is a no-op.
func (r *Runner) Start() {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		r.Logger.Info("scheduler started", "interval", r.Interval)

		for {
			select {
			case <-ticker.C:
				r.CheckScheduledTasks(context.Background())
			case <-r.stop:
				r.Logger.Info("scheduler stopped")
				return
			}
		}
	}()
}

// Stop signals the loop and waits for in-flight work to finish. Stopping a
// stopped runner is a no-op.
func (r *Runner) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	close(r.stop)
	<-r.done
}

// CheckScheduledTasks runs one scheduler pass: requeue stranded work, claim
// due tasks, dispatch each through the orchestrator, settle the rows. It
// returns the number of tasks claimed this pass. Safe to call directly (the
// HTTP check endpoint does) while the loop is running; the claim's status
// guard prevents double-queuing.
func (r *Runner) CheckScheduledTasks(ctx context.Context) int {
	if r.StaleTimeout > 0 {
		if n, err := r.DB.RequeueStaleTasks(ctx, r.StaleTimeout); err != nil {
			r.Logger.Error("requeue sweep failed", "error", err)
		} else if n > 0 {
			r.Logger.Warn("requeued stranded tasks", "count", n)
		}
	}

	tasks, err := r.DB.ClaimDueTasks(ctx, time.Now(), claimBatchSize)
	if err != nil {
		r.Logger.Error("claiming due tasks failed", "error", err)
		return 0
	}

	for _, task := range tasks {
		r.tasksQueued.Add(1)
		if err := r.runTask(ctx, task); err != nil {
			r.tasksFailed.Add(1)
			r.Logger.Error("task failed", "task", task.ID, "org", task.OrganizationID, "error", err)
			if err := r.DB.FailTask(ctx, task.ID, err.Error()); err != nil {
				r.Logger.Error("marking task failed", "task", task.ID, "error", err)
			}
			continue
		}
		if err := r.DB.CompleteTask(ctx, task.ID); err != nil {
			r.Logger.Error("marking task completed", "task", task.ID, "error", err)
		}
	}
	return len(tasks)
}

// taskError wraps a turn failure so FailTask records something useful.
type taskError struct{ reason string }

func (e *taskError) Error() string { return e.reason }

func (r *Runner) runTask(ctx context.Context, task store.ScheduledTask) error {
	note := task.Title
	if task.Payload != "" {
		var payload struct {
			Note string `json:"note"`
		}
		if err := json.Unmarshal([]byte(task.Payload), &payload); err == nil && payload.Note != "" {
			note = payload.Note
		}
	}

	r.Logger.Info("running scheduled task", "task", task.ID, "org", task.OrganizationID, "title", task.Title)
	result := r.Orchestrator.Execute(ctx, agent.ExecuteRequest{
		OrganizationID: task.OrganizationID,
		AgentID:        task.AgentID,
		ConversationID: task.ConversationID,
		Message:        "[Scheduled follow-up] " + note,
	})
	if !result.Success {
		return &taskError{reason: result.Error}
	}
	return nil
}
