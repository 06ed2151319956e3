package store

import "time"

// AgentRun is the live, in-memory state of one writer agent session.
// The durable conversation lives in agent_sessions/agent_messages; this record
// only tracks the background job while it runs.
type AgentRun struct {
	ID        string    `json:"id"` // opaque session id
	UserID    string    `json:"user_id"`
	Stage     string    `json:"stage"`
	StartedAt time.Time `json:"started_at"`

	// Done is closed when the background job has finished and torn down.
	// There is deliberately no cancellation side to this handle: the current
	// contract cannot stop an in-flight run. Storing the handle keeps the
	// option open for a later version.
	Done <-chan struct{} `json:"-"`
}

// Life-cycle stages, in order. Error is reachable from any of the first three.
const (
	StageInitializing   = "initializing"
	StageIntentAnalysis = "intent_analysis"
	StageRunning        = "running"
	StageComplete       = "complete"
	StageError          = "error"
)
