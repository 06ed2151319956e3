package tool

import (
	"context"
	"fmt"
	"strings"

	"ai-writer-be/internal/agent/event"

	"github.com/pgvector/pgvector-go"
)

// searchKnowledge retrieves the closest chunks from the user's document
// knowledge base. Retrieval failures degrade to a textual result and a
// success:false event; they never abort the run.
func (t *Toolbox) searchKnowledge(ctx context.Context, input *KnowledgeSearchInput) (string, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = t.defaultTopK
	}

	t.bus.Publish(t.sessionID, event.Envelope{Type: event.TypeKnowledgeSearchStart, Data: map[string]interface{}{
		"query":       input.Query,
		"search_type": "documents",
		"top_k":       topK,
	}})

	result, err := t.runKnowledgeSearch(ctx, input.Query, topK)
	if err != nil {
		t.publishSearchResult(input.Query, "documents", 0, false, err.Error())
		return fmt.Sprintf("Error retrieving knowledge: %v", err), nil
	}

	t.publishSearchResult(input.Query, "documents", len(result), true, "")

	if len(result) == 0 {
		return "No relevant content found", nil
	}

	parts := make([]string, len(result))
	for i, content := range result {
		parts[i] = fmt.Sprintf("Fragment %d:\n%s", i+1, content)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (t *Toolbox) runKnowledgeSearch(ctx context.Context, query string, topK int) ([]string, error) {
	embedResp, err := t.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	queryVec := pgvector.NewVector(embedResp.Embedding.Values)
	chunks, err := t.chunks.SearchSimilar(ctx, t.userID, queryVec, t.documentIds, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	contents := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Content != "" {
			contents = append(contents, chunk.Content)
		}
	}
	return contents, nil
}

// searchWeb runs a public web lookup with its own deadline so a slow
// backend cannot eat the whole run budget.
func (t *Toolbox) searchWeb(ctx context.Context, input *WebResearchInput) (string, error) {
	t.bus.Publish(t.sessionID, event.Envelope{Type: event.TypeKnowledgeSearchStart, Data: map[string]interface{}{
		"query":       input.Query,
		"search_type": "web",
	}})

	searchCtx, cancel := context.WithTimeout(ctx, t.searchTimeout)
	defer cancel()

	text, err := t.web.Search(searchCtx, input.Query)
	if err != nil {
		t.publishSearchResult(input.Query, "web", 0, false, err.Error())
		return fmt.Sprintf("Web search failed: %v", err), nil
	}

	if text == "" {
		t.publishSearchResult(input.Query, "web", 0, true, "")
		return "No web results found", nil
	}

	t.publishSearchResult(input.Query, "web", 1, true, "")
	return text, nil
}

func (t *Toolbox) publishSearchResult(query, searchType string, count int, success bool, errMsg string) {
	data := map[string]interface{}{
		"query":         query,
		"search_type":   searchType,
		"results_count": count,
		"success":       success,
	}
	if !success {
		data["error"] = errMsg
	}
	t.bus.Publish(t.sessionID, event.Envelope{Type: event.TypeKnowledgeSearchDone, Data: data})
}
