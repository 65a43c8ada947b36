// Package agentrun implements the execution contract shared by all
// agents: every triggered run persists exactly one audit row, created in
// the running state before any work starts and closed exactly once as
// success, failed or skipped.
package agentrun

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alpha/internal/domain/execution"
	"alpha/internal/metrics"
	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

// ErrPreconditionNotMet is returned by a work function when the agent's
// documented skip condition holds (learning content already generated,
// portfolio empty). The run is closed as skipped and the owner is not
// notified.
var ErrPreconditionNotMet = errors.New("agent precondition not met")

// Result carries the item counts a work function reports back
type Result struct {
	ItemsProcessed int
	ItemsFailed    int
}

// WorkFunc is one agent's core routine. Per-item and per-source failures
// are the routine's own business; only an error returned here marks the
// whole run as failed.
type WorkFunc func(ctx context.Context) (Result, error)

// Notifier delivers out-of-band alerts to the system owner
type Notifier interface {
	Notify(ctx context.Context, title, content string) bool
}

// Runner persists run state transitions and escalates fatal failures
type Runner struct {
	runs     execution.Repository
	notifier Notifier
	log      *logger.Logger
}

// NewRunner creates a run-and-record wrapper
func NewRunner(runs execution.Repository, notifier Notifier) *Runner {
	return &Runner{
		runs:     runs,
		notifier: notifier,
		log:      logger.Get().With("component", "agent_runner"),
	}
}

// Start persists a running row and returns its id immediately; the work
// function executes on a background goroutine detached from the request
// context. No error from the work function ever reaches the caller.
func (r *Runner) Start(ctx context.Context, userID uuid.UUID, agent execution.Agent, work WorkFunc) (uuid.UUID, error) {
	run := &execution.Run{
		ID:        uuid.New(),
		UserID:    userID,
		Agent:     agent,
		Status:    execution.StatusRunning,
		StartedAt: time.Now(),
	}

	if err := r.runs.Create(ctx, run); err != nil {
		return uuid.Nil, errors.Wrapf(err, "create %s run", agent)
	}

	go r.execute(run, work)

	return run.ID, nil
}

// Execute runs the work synchronously under an already-persisted run row.
// Tests and callers that need completion semantics use this directly;
// Start is the fire-and-forget path on top of it.
func (r *Runner) Execute(run *execution.Run, work WorkFunc) {
	r.execute(run, work)
}

func (r *Runner) execute(run *execution.Run, work WorkFunc) {
	// The triggering request has already been answered; the run owns
	// its own lifetime from here.
	ctx := context.Background()
	log := r.log.With("agent", run.Agent, "run_id", run.ID, "user_id", run.UserID)

	log.Infow("Agent run started")

	start := run.StartedAt
	result, err := r.runWork(ctx, work)
	finished := time.Now()

	run.ItemsProcessed = result.ItemsProcessed
	run.ItemsFailed = result.ItemsFailed
	run.DurationMs = finished.Sub(start).Milliseconds()
	run.FinishedAt = &finished

	switch {
	case err == nil:
		run.Status = execution.StatusSuccess
	case errors.Is(err, ErrPreconditionNotMet):
		run.Status = execution.StatusSkipped
	default:
		run.Status = execution.StatusFailed
		run.ErrorMessage = err.Error()
	}

	if finishErr := r.runs.Finish(ctx, run); finishErr != nil {
		log.Errorw("Failed to record run outcome", "error", finishErr)
	}

	metrics.AgentRuns.WithLabelValues(string(run.Agent), string(run.Status)).Inc()
	metrics.AgentDuration.WithLabelValues(string(run.Agent)).Observe(finished.Sub(start).Seconds())
	metrics.AgentItems.WithLabelValues(string(run.Agent), "processed").Add(float64(run.ItemsProcessed))
	metrics.AgentItems.WithLabelValues(string(run.Agent), "failed").Add(float64(run.ItemsFailed))

	switch run.Status {
	case execution.StatusSkipped:
		log.Infow("Agent run skipped", "reason", err)
	case execution.StatusFailed:
		log.Errorw("Agent run failed", "error", err, "duration_ms", run.DurationMs)
		r.escalate(ctx, run)
	default:
		log.Infow("Agent run completed",
			"items_processed", run.ItemsProcessed,
			"items_failed", run.ItemsFailed,
			"duration_ms", run.DurationMs,
		)
	}
}

// runWork shields the runner from panicking work functions
func (r *Runner) runWork(ctx context.Context, work WorkFunc) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf("agent panicked: %v", rec)
		}
	}()
	return work(ctx)
}

func (r *Runner) escalate(ctx context.Context, run *execution.Run) {
	if r.notifier == nil {
		return
	}

	title := fmt.Sprintf("%s agent run failed", run.Agent)
	content := fmt.Sprintf("Run %s for user %s failed: %s", run.ID, run.UserID, run.ErrorMessage)

	if !r.notifier.Notify(ctx, title, content) {
		r.log.Warnw("Owner notification delivery failed", "run_id", run.ID)
	}
}
