package tool

import (
	"encoding/json"
	"fmt"

	"ai-writer-be/internal/agent/event"
	"ai-writer-be/internal/agent/task"
)

func (t *Toolbox) createTask(input *TaskCreateInput) (string, error) {
	if input.Description == "" {
		return "", fmt.Errorf("description is required")
	}

	created := t.ledger.Create(t.sessionID, t.userID, input.Description, input.Priority)

	t.bus.Publish(t.sessionID, event.Envelope{Type: event.TypeTaskCreated, Data: map[string]interface{}{
		"task": created,
	}})

	return fmt.Sprintf("task %d created: %s", created.ID, created.Description), nil
}

func (t *Toolbox) updateTask(input *TaskUpdateInput) (string, error) {
	if !task.ValidStatus(input.Status) {
		return "", fmt.Errorf("invalid status: %q", input.Status)
	}

	updated, oldStatus, ok := t.ledger.UpdateStatus(t.sessionID, input.TaskID, t.userID, input.Status)
	if !ok {
		return "", fmt.Errorf("task %d not found", input.TaskID)
	}

	t.bus.Publish(t.sessionID, event.Envelope{Type: event.TypeTaskUpdated, Data: map[string]interface{}{
		"task":      updated,
		"oldStatus": oldStatus,
	}})

	return fmt.Sprintf("task %d moved %s -> %s", updated.ID, oldStatus, updated.Status), nil
}

func (t *Toolbox) listTasks(input *TaskListInput) (string, error) {
	if input.Status != "" && !task.ValidStatus(input.Status) {
		return "", fmt.Errorf("invalid status filter: %q", input.Status)
	}

	tasks := t.ledger.List(t.sessionID, t.userID, input.Status)
	summary := t.ledger.Summary(t.sessionID, t.userID)

	encoded, err := json.Marshal(map[string]interface{}{
		"tasks":   tasks,
		"summary": summary,
	})
	if err != nil {
		return "", fmt.Errorf("encode task list: %w", err)
	}
	return string(encoded), nil
}
