package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Agent    AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	AgentLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	GeminiAPIKey      string
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	HuggingFaceAPIKey string
	EmbedTopic        string
}

// AgentConfig bounds the writer agent's tool loop.
type AgentConfig struct {
	MaxIterations    int
	ExecutionBudget  time.Duration
	SearchTimeout    time.Duration
	KnowledgeTopK    int
	ChunkSize        int
	ChunkOverlap     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			AgentLogFilePath:   getEnv("AGENT_LOG_FILE_PATH", "agent.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
			EmbedTopic:        getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT_CONTENT"),
		},
		Agent: AgentConfig{
			MaxIterations:   getEnvAsInt("AGENT_MAX_ITERATIONS", 15),
			ExecutionBudget: time.Duration(getEnvAsInt("AGENT_EXECUTION_BUDGET_SECONDS", 300)) * time.Second,
			SearchTimeout:   time.Duration(getEnvAsInt("AGENT_SEARCH_TIMEOUT_SECONDS", 15)) * time.Second,
			KnowledgeTopK:   getEnvAsInt("AGENT_KNOWLEDGE_TOP_K", 3),
			ChunkSize:       getEnvAsInt("EMBED_CHUNK_SIZE", 1500),
			ChunkOverlap:    getEnvAsInt("EMBED_CHUNK_OVERLAP", 200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
