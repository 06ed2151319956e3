package tool

import (
	"fmt"

	"ai-writer-be/internal/agent/event"
)

const (
	OpReplace      = "replace"
	OpDelete       = "delete"
	OpInsertBefore = "insert_before"
	OpInsertAfter  = "insert_after"
)

// publishParagraphEdit validates the instruction and streams it to
// subscribers. This event is the only channel generated text travels
// through; the tool never writes documents itself. Malformed
// instructions come back as errors for the model to fix and are not
// published.
func (t *Toolbox) publishParagraphEdit(input *ParagraphEditInput) (string, error) {
	if input.ParagraphID == "" {
		return "", fmt.Errorf("paragraphId is required")
	}

	switch input.Operation {
	case OpDelete:
		if input.NewContent != "" {
			return "", fmt.Errorf("operation %q must not carry newContent", OpDelete)
		}
	case OpReplace, OpInsertBefore, OpInsertAfter:
		if input.NewContent == "" {
			return "", fmt.Errorf("operation %q requires non-empty newContent", input.Operation)
		}
	default:
		return "", fmt.Errorf("unknown operation: %q", input.Operation)
	}

	t.editsSent++
	total := input.TotalParagraphs
	if total < t.editsSent {
		total = t.editsSent
	}

	data := map[string]interface{}{
		"paragraphId":     input.ParagraphID,
		"operation":       input.Operation,
		"newContent":      input.NewContent,
		"originalContent": input.OriginalContent,
		"reasoning":       input.Reasoning,
		"originalLength":  len(input.OriginalContent),
		"newLength":       len(input.NewContent),
		"progress": map[string]interface{}{
			"current": t.editsSent,
			"total":   total,
		},
	}
	if input.StartOffset != nil {
		data["startOffset"] = *input.StartOffset
	}
	if input.EndOffset != nil {
		data["endOffset"] = *input.EndOffset
	}

	t.bus.Publish(t.sessionID, event.Envelope{Type: event.TypeParagraphEdit, Data: data})

	return fmt.Sprintf("edit instruction %d published for paragraph %s (%s)",
		t.editsSent, input.ParagraphID, input.Operation), nil
}
