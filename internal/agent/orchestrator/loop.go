package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-writer-be/internal/agent/tool"
	"ai-writer-be/internal/model"
	"ai-writer-be/pkg/llm"
)

// action is one decoded model turn. The model either invokes a tool or
// finishes with its final text.
type action struct {
	Action string          `json:"action"`
	Tool   string          `json:"tool,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`
	Output string          `json:"output,omitempty"`
}

const (
	iterationLimitOutput = "Stopped after reaching the iteration limit."
	budgetLimitOutput    = "Stopped after exceeding the execution time budget."
)

// runLoop drives the model's tool-calling loop. Bounded two ways: by
// MaxIterations and by the wall-clock budget carried on ctx. Hitting
// either bound ends the run with a degraded final output, not an error.
// Tool protocol faults feed back into the conversation for the model to
// correct; they never abort the run.
func (o *Orchestrator) runLoop(
	ctx context.Context,
	provider llm.LLMProvider,
	toolbox *tool.Toolbox,
	req Request,
	intent Intent,
	history []*model.AgentMessage,
) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: buildSystemPrompt(req, intent)})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.UserPrompt})

	for i := 0; i < o.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return budgetLimitOutput, nil
			}
			return "", err
		}

		response, err := provider.Chat(ctx, messages)
		if err != nil {
			// The budget expiring mid-call is still the budget bound,
			// not a provider failure.
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return budgetLimitOutput, nil
			}
			return "", err
		}
		messages = append(messages, llm.Message{Role: "assistant", Content: response})

		var act action
		if jsonErr := json.Unmarshal([]byte(extractJSON(response)), &act); jsonErr != nil || act.Action == "" {
			// Not following the protocol usually means the model wrote
			// its answer directly.
			return strings.TrimSpace(response), nil
		}

		switch act.Action {
		case "final":
			return act.Output, nil
		case "tool":
			result := o.invokeTool(ctx, toolbox, act)
			messages = append(messages, llm.Message{Role: "user", Content: result})
		default:
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: fmt.Sprintf(`unknown action %q; use "tool" or "final"`, act.Action),
			})
		}
	}

	return iterationLimitOutput, nil
}

func (o *Orchestrator) invokeTool(ctx context.Context, toolbox *tool.Toolbox, act action) string {
	call, err := tool.ParseCall(act.Tool, act.Args)
	if err != nil {
		return fmt.Sprintf("tool error: %v", err)
	}

	result, err := toolbox.Invoke(ctx, call)
	if err != nil {
		return fmt.Sprintf("tool error: %v", err)
	}
	return fmt.Sprintf("tool result (%s): %s", act.Tool, result)
}

func buildSystemPrompt(req Request, intent Intent) string {
	var sb strings.Builder
	sb.WriteString("You are a writing agent working on the user's document. ")
	sb.WriteString("Respond to every turn with JSON only, one of:\n")
	sb.WriteString(`{"action":"tool","tool":"<name>","args":{...}}` + "\n")
	sb.WriteString(`{"action":"final","output":"<closing summary for the user>"}` + "\n\n")
	sb.WriteString("Available tools:\n")
	sb.WriteString("- document_analyzer {content, selectionStart?, selectionEnd?}: segment a document into paragraphs with ids and offsets\n")
	sb.WriteString("- paragraph_editor {paragraphId, operation: replace|delete|insert_before|insert_after, newContent?, reasoning, totalParagraphs?}: stream one edit instruction to the user's editor; this is the only way to deliver generated text\n")
	sb.WriteString("- document_knowledge_search {query, topK?}: retrieve relevant fragments from the user's documents\n")
	sb.WriteString("- web_research {query}: look up public information\n")
	sb.WriteString("- task_create {description, priority?} / task_update {taskId, status} / task_list {status?}: track your own plan\n\n")

	if intent.Summary != "" {
		sb.WriteString("Intent analysis: " + intent.Summary + "\n")
	}
	if req.DocumentContent != "" {
		sb.WriteString("Current document content:\n" + req.DocumentContent + "\n")
	}
	if req.TargetSelection != nil {
		sb.WriteString(fmt.Sprintf("The user selected the range [%d, %d]; only edit paragraphs overlapping it.\n",
			req.TargetSelection.Start, req.TargetSelection.End))
	}
	if len(req.SelectedSnippets) > 0 {
		sb.WriteString("Snippets the user highlighted:\n")
		for _, s := range req.SelectedSnippets {
			sb.WriteString("- " + s + "\n")
		}
	}
	return sb.String()
}
