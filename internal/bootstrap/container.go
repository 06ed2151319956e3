package bootstrap

import (
	"log"

	"ai-writer-be/internal/agent/conversation"
	"ai-writer-be/internal/agent/eventbus"
	"ai-writer-be/internal/agent/orchestrator"
	"ai-writer-be/internal/agent/task"
	"ai-writer-be/internal/config"
	"ai-writer-be/internal/controller"
	"ai-writer-be/internal/pkg/logger"
	"ai-writer-be/internal/repository/memory"
	"ai-writer-be/internal/repository/unitofwork"
	"ai-writer-be/internal/service"
	"ai-writer-be/pkg/embedding"
	pkgNats "ai-writer-be/pkg/nats"
	"ai-writer-be/pkg/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AgentController     controller.IAgentController
	DocumentController  controller.IDocumentController
	LLMConfigController controller.ILLMConfigController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	agentLogger := logger.NewIsolatedLogger(cfg.App.AgentLogFilePath)

	// 2. Event Bus (in-process document vectorization pipeline)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	}

	// 4. NATS (optional, the app runs without it)
	var natsPub *pkgNats.Publisher
	var natsSub *pkgNats.Subscriber
	if cfg.App.NatsURL != "" {
		pub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
		sub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			natsSub = sub
		}
	}

	// 5. Agent Core
	bus := eventbus.New()
	ledger := task.NewLedger()
	runs := memory.NewSessionRepository()
	convo := conversation.NewStore(uowFactory)
	webSearch := search.NewClient(cfg.Agent.SearchTimeout)
	resolver := orchestrator.NewConfigResolver(uowFactory, cfg.Ai)

	orch := orchestrator.New(
		bus,
		ledger,
		convo,
		runs,
		uowFactory,
		resolver,
		embeddingProvider,
		webSearch,
		cfg.Agent,
		agentLogger,
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Ai.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.EmbedTopic,
		uowFactory,
		embeddingProvider,
		cfg.Agent,
	)

	// Relay document events from other processes into the local
	// vectorization pipeline.
	if natsSub != nil {
		relayService := service.NewVectorizeRelayService(natsSub, publisherService)
		go func() {
			if err := relayService.Start(); err != nil {
				log.Printf("[WARN] Failed to start vectorize relay: %v", err)
			}
		}()
	}

	documentService := service.NewDocumentService(uowFactory, publisherService, natsPub)
	llmConfigService := service.NewLLMConfigService(uowFactory)
	agentService := service.NewAgentService(orch, convo, runs, uowFactory)

	// 7. Controllers
	return &Container{
		AgentController:     controller.NewAgentController(agentService, bus, sysLogger),
		DocumentController:  controller.NewDocumentController(documentService),
		LLMConfigController: controller.NewLLMConfigController(llmConfigService),

		ConsumerService: consumerService,
	}
}
