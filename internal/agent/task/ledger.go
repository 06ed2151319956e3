package task

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task statuses. A task never leaves the ledger individually; the whole
// session slice is dropped at teardown.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Task is one work item the agent tracks for itself during a run.
// IDs are unique per ledger instance, not globally.
type Task struct {
	ID          int       `json:"id"`
	SessionID   string    `json:"sessionId"`
	OwnerID     uuid.UUID `json:"-"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Ledger is an ephemeral, per-process task store keyed by session id.
// Constructed once and handed to every tool factory; no package-level state.
// The single orchestrator job per session is the usual writer, but HTTP
// handlers may read concurrently, so access is locked.
type Ledger struct {
	mu      sync.Mutex
	tasks   map[string]map[int]*Task
	counter int
}

func NewLedger() *Ledger {
	return &Ledger{tasks: make(map[string]map[int]*Task)}
}

func (l *Ledger) Create(sessionID string, ownerID uuid.UUID, description string, priority int) *Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++
	now := time.Now().UTC()
	t := &Task{
		ID:          l.counter,
		SessionID:   sessionID,
		OwnerID:     ownerID,
		Description: description,
		Status:      StatusPending,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if l.tasks[sessionID] == nil {
		l.tasks[sessionID] = make(map[int]*Task)
	}
	l.tasks[sessionID][t.ID] = t

	copied := *t
	return &copied
}

func (l *Ledger) Get(sessionID string, taskID int, ownerID uuid.UUID) (*Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getLocked(sessionID, taskID, ownerID)
}

func (l *Ledger) getLocked(sessionID string, taskID int, ownerID uuid.UUID) (*Task, bool) {
	session, ok := l.tasks[sessionID]
	if !ok {
		return nil, false
	}
	t, ok := session[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, false
	}
	copied := *t
	return &copied, true
}

// UpdateStatus mutates the task's status and returns the new state plus the
// status it replaced.
func (l *Ledger) UpdateStatus(sessionID string, taskID int, ownerID uuid.UUID, status string) (*Task, string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	session, ok := l.tasks[sessionID]
	if !ok {
		return nil, "", false
	}
	t, ok := session[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, "", false
	}

	oldStatus := t.Status
	t.Status = status
	t.UpdatedAt = time.Now().UTC()

	copied := *t
	return &copied, oldStatus, true
}

// List returns the session's tasks sorted by priority descending, then
// creation time ascending. statusFilter == "" returns all.
func (l *Ledger) List(sessionID string, ownerID uuid.UUID, statusFilter string) []*Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Task, 0)
	for _, t := range l.tasks[sessionID] {
		if t.OwnerID != ownerID {
			continue
		}
		if statusFilter != "" && t.Status != statusFilter {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Summary counts the session's tasks per status.
func (l *Ledger) Summary(sessionID string, ownerID uuid.UUID) map[string]int {
	all := l.List(sessionID, ownerID, "")

	summary := map[string]int{
		"total":       len(all),
		"pending":     0,
		"in_progress": 0,
		"completed":   0,
		"failed":      0,
		"cancelled":   0,
	}
	for _, t := range all {
		summary[t.Status]++
	}
	return summary
}

// ClearSession drops every task for the session. Called by orchestrator
// teardown; clearing an already-cleared session is a no-op.
func (l *Ledger) ClearSession(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.tasks, sessionID)
}
