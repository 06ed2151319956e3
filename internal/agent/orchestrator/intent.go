package orchestrator

import (
	"context"
	"encoding/json"
	"strings"

	"ai-writer-be/pkg/llm"
)

// Intent is the structured summary produced before the tool loop starts.
type Intent struct {
	Intent           string   `json:"intent"`
	Summary          string   `json:"summary"`
	KeyPoints        []string `json:"keyPoints"`
	SuggestedActions []string `json:"suggestedActions"`
	ToneStyle        *string  `json:"toneStyle"`
}

// analyzeIntent asks the model for a one-shot structured reading of the
// user's request. It never hard-fails: any model or parse problem
// degrades to a summary cut from the first 100 characters of the prompt.
func analyzeIntent(ctx context.Context, provider llm.LLMProvider, userPrompt string, snippets []string) Intent {
	if userPrompt == "" {
		return Intent{Intent: "unknown", Summary: "", KeyPoints: []string{}, SuggestedActions: []string{}}
	}

	var sb strings.Builder
	sb.WriteString("Analyze the user's writing request. Respond with JSON only, shaped as ")
	sb.WriteString(`{"intent": "one sentence", "summary": "short overview", "keyPoints": ["..."], "suggestedActions": ["..."], "toneStyle": "recommended tone or null"}.` + "\n")
	sb.WriteString("Leave fields empty when the request does not give enough information.\n")
	sb.WriteString("User request: " + userPrompt + "\n")
	if len(snippets) > 0 {
		sb.WriteString("Selected snippets:\n")
		for _, s := range snippets {
			sb.WriteString("- " + s + "\n")
		}
	}

	degraded := Intent{
		Intent:           "",
		Summary:          truncateRunes(userPrompt, 100),
		KeyPoints:        []string{},
		SuggestedActions: []string{},
	}

	response, err := provider.Generate(ctx, sb.String(), llm.WithTemperature(0.2))
	if err != nil {
		return degraded
	}

	var parsed Intent
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return degraded
	}
	if parsed.Summary == "" {
		parsed.Summary = parsed.Intent
	}
	if parsed.KeyPoints == nil {
		parsed.KeyPoints = []string{}
	}
	if parsed.SuggestedActions == nil {
		parsed.SuggestedActions = []string{}
	}
	return parsed
}

// extractJSON peels markdown code fences off a model response. Models
// regularly wrap JSON in ```json blocks despite instructions not to.
func extractJSON(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}

	if idx := strings.Index(trimmed, "```json"); idx >= 0 {
		trimmed = trimmed[idx+len("```json"):]
	} else if idx := strings.Index(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[idx+len("```"):]
	}
	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
