package factory

import (
	"fmt"

	"ai-writer-be/pkg/llm"
	"ai-writer-be/pkg/llm/huggingface"
	"ai-writer-be/pkg/llm/ollama"
)

// NewLLMProvider builds a completion backend from a stored user config or the
// application defaults.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
