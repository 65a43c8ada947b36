package execution

import (
	"time"

	"github.com/google/uuid"
)

// Agent identifies one of the three on-demand routines
type Agent string

const (
	AgentInformation Agent = "information"
	AgentLearning    Agent = "learning"
	AgentInvestment  Agent = "investment"
)

// ParseAgent validates an agent name from the transport layer
func ParseAgent(s string) (Agent, bool) {
	switch Agent(s) {
	case AgentInformation, AgentLearning, AgentInvestment:
		return Agent(s), true
	default:
		return "", false
	}
}

// Status is the run state machine: a row is persisted as running before
// any work starts, then closed exactly once as success, failed or skipped.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	// StatusPartial is reserved. The current agents record runs that
	// completed with item failures as success with a non-zero failure
	// count.
	StatusPartial Status = "partial"
)

// Run is one agent execution audit row
type Run struct {
	ID             uuid.UUID  `db:"id"`
	UserID         uuid.UUID  `db:"user_id"`
	Agent          Agent      `db:"agent_name"`
	Status         Status     `db:"status"`
	ItemsProcessed int        `db:"items_processed"`
	ItemsFailed    int        `db:"items_failed"`
	ErrorMessage   string     `db:"error_message"`
	DurationMs     int64      `db:"duration_ms"`
	StartedAt      time.Time  `db:"started_at"`
	FinishedAt     *time.Time `db:"finished_at"`
}
