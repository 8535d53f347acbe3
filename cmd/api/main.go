// @title           Retrieval-Augmented Chat API
// @version         1.0
// @description     This API handles chat sessions with document-grounded generation.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/RAGChat/internal/chat"
	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/data/store"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/handlers"
	"github.com/akolanti/RAGChat/internal/job"
	"github.com/akolanti/RAGChat/internal/rag"
	"github.com/akolanti/RAGChat/internal/rag/assemble"
	"github.com/akolanti/RAGChat/internal/rag/chunker"
	"github.com/akolanti/RAGChat/internal/rag/embedding"
	"github.com/akolanti/RAGChat/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/RAGChat/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/RAGChat/internal/rag/ingest"
	"github.com/akolanti/RAGChat/internal/rag/llm"
	"github.com/akolanti/RAGChat/internal/rag/llm/gemini"
	"github.com/akolanti/RAGChat/internal/rag/llm/openaiLLM"
	"github.com/akolanti/RAGChat/internal/rag/retriever"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB/memoryIndex"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/RAGChat/internal/server"
	"github.com/akolanti/RAGChat/internal/worker"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	env := config.GetEnv()
	flag.StringVar(&listenAddr, "listen-addr", env.ListenAddr, "server listen address")
	flag.Parse()

	//init buffered ingest channel
	ingestChannel := make(chan job.IngestJob, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores - redis first, in-memory twins when it is offline
	var chatStore chatModel.ChatStore
	var docStore chatModel.DocumentStore
	redisChats := store.GetRedisChatStore(serviceContext)
	redisDocs := store.GetRedisDocumentStore(serviceContext)
	if redisChats == nil || redisDocs == nil {
		logger.Error("Redis stores are offline")
		chatStore = store.InitChatStore()
		docStore = store.InitDocumentStore()
	} else {
		chatStore = redisChats
		docStore = redisDocs
	}

	jobService := job.InitJobService(job.ServiceConfig{
		IngestChannel:     ingestChannel,
		DispatcherChannel: dispatcherChannel,
		DocStore:          docStore,
	})
	logger.Info("Starting job service")

	//model provider pair
	var embedder embedding.Embedder
	var llmProvider llm.Provider
	switch env.Provider {
	case config.ProviderOpenAI:
		embedder = openaiEmbedding.GetOpenAIEmbeddingClient(serviceContext, config.OpenAIEmbeddingModel, env.OpenAIAPIKey)
		llmProvider = openaiLLM.GetOpenAIClient(serviceContext, config.OpenAIModelName, env.OpenAIAPIKey)
	default:
		embedder = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, env.GoogleAPIKey)
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, env.GoogleAPIKey)
	}

	if embedder == nil || llmProvider == nil {
		logger.Error("Model provider failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}
	embedder = embedding.WithRetry(embedding.WithCache(embedder))

	//vector index - qdrant first, brute-force fallback
	var index vectorDB.Index
	if qdrantIndex := qdrantDB.GetQdrantIndex(serviceContext, env.QdrantHost, env.QdrantPort, embedder.Model()); qdrantIndex != nil {
		index = qdrantIndex
	} else {
		logger.Error("Qdrant is offline, falling back to the in-memory index")
		index = memoryIndex.New(embedder.Model())
	}

	textChunker, err := chunker.New(config.ChunkLength, config.ChunkOverlap)
	if err != nil {
		logger.Error("Invalid chunking configuration", "error", err)
		return
	}

	ragService := rag.NewService(
		retriever.New(embedder, index),
		assemble.New(config.PromptPreamble, config.ContextBudget),
		llmProvider,
		ingest.New(textChunker, embedder, index),
		index,
	)

	orchestrator := chat.NewOrchestrator(chatStore, docStore, ragService, jobService)
	handlers.InitChatHandler(orchestrator)

	//init worker pool
	worker.InitServices(jobService, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
