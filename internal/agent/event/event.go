package event

// Envelope is the unit delivered to stream subscribers. Immutable once
// published; consumers receive it as JSON {type, data}.
type Envelope struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// The closed catalog of envelope types the core emits.
const (
	TypeAgentStatus          = "agent_status"
	TypeIntentSummary        = "intent_summary"
	TypeKnowledgeSearchStart = "knowledge_search_start"
	TypeKnowledgeSearchDone  = "knowledge_search_result"
	TypeDocumentUpdate       = "document_update"
	TypeParagraphEdit        = "paragraph_edit_instruction"
	TypeTaskCreated          = "task_created"
	TypeTaskUpdated          = "task_updated"
	TypeAgentComplete        = "agent_complete"
	TypeAgentError           = "agent_error"
	TypeSessionClosed        = "session_closed"
)

func AgentStatus(stage string) Envelope {
	return Envelope{Type: TypeAgentStatus, Data: map[string]interface{}{"stage": stage}}
}

func AgentComplete(output, summary string) Envelope {
	return Envelope{Type: TypeAgentComplete, Data: map[string]interface{}{
		"result": map[string]interface{}{
			"output":  output,
			"summary": summary,
		},
	}}
}

func AgentError(message, code string, recoverable bool) Envelope {
	return Envelope{Type: TypeAgentError, Data: map[string]interface{}{
		"message":     message,
		"code":        code,
		"recoverable": recoverable,
	}}
}

func SessionClosed() Envelope {
	return Envelope{Type: TypeSessionClosed, Data: map[string]interface{}{}}
}
