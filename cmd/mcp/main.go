package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/RAGChat/internal/chat"
	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/data/store"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
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
	"github.com/akolanti/RAGChat/internal/worker"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

// Same pipeline as the HTTP binary, exposed as tools over MCP stdio so agent
// hosts can drive chats directly.

type createChatInput struct {
	OwnerId string `json:"owner_id,omitempty" jsonschema:"identity to attribute the chat to, defaults to mcp"`
}

type createChatOutput struct {
	ChatId string `json:"chat_id"`
}

type sendMessageInput struct {
	ChatId string   `json:"chat_id" jsonschema:"the chat to send the message to"`
	Prompt string   `json:"prompt" jsonschema:"the user message"`
	Files  []string `json:"files,omitempty" jsonschema:"local file paths to ingest before answering"`
}

type getMessagesInput struct {
	ChatId string `json:"chat_id" jsonschema:"the chat to read"`
}

type getMessagesOutput struct {
	Messages []chatModel.Message `json:"messages"`
}

type listDocumentsOutput struct {
	Documents []commonModels.Document `json:"documents"`
}

type deleteChatOutput struct {
	Deleted bool `json:"deleted"`
}

func main() {

	logger_i.InitTo(os.Stderr)
	var logger = logger_i.NewLogger("mcp")

	env := config.GetEnv()

	ingestChannel := make(chan job.IngestJob, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel := make(chan bool, 1)
	var workerWaitGroup sync.WaitGroup

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

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
		return
	}
	embedder = embedding.WithRetry(embedding.WithCache(embedder))

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

	worker.InitServices(jobService, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	server := mcp.NewServer(&mcp.Implementation{Name: "ragchat", Version: "1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_chat",
		Description: "Create a new chat session and return its id",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input createChatInput) (*mcp.CallToolResult, createChatOutput, error) {
		ownerId := input.OwnerId
		if ownerId == "" {
			ownerId = "mcp"
		}
		session, err := orchestrator.CreateChat(ctx, ownerId)
		if err != nil {
			return nil, createChatOutput{}, err
		}
		return nil, createChatOutput{ChatId: session.Id}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_message",
		Description: "Send a message to a chat, optionally attaching local files, and get the grounded answer",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input sendMessageInput) (*mcp.CallToolResult, chat.SendResult, error) {
		// ingestion deletes its input once indexed, staging keeps the
		// caller's original untouched
		uploads := make([]chat.Upload, 0, len(input.Files))
		for _, path := range input.Files {
			upload, err := chat.StageUpload(path)
			if err != nil {
				return nil, chat.SendResult{}, err
			}
			uploads = append(uploads, upload)
		}
		result, err := orchestrator.SendMessage(ctx, input.ChatId, input.Prompt, uploads)
		if err != nil {
			return nil, chat.SendResult{}, err
		}
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_messages",
		Description: "List the full message transcript of a chat",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input getMessagesInput) (*mcp.CallToolResult, getMessagesOutput, error) {
		messages, err := orchestrator.GetMessages(ctx, input.ChatId)
		if err != nil {
			return nil, getMessagesOutput{}, err
		}
		return nil, getMessagesOutput{Messages: messages}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents attached to a chat with their ingestion status",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input getMessagesInput) (*mcp.CallToolResult, listDocumentsOutput, error) {
		docs, err := orchestrator.ListDocuments(ctx, input.ChatId)
		if err != nil {
			return nil, listDocumentsOutput{}, err
		}
		return nil, listDocumentsOutput{Documents: docs}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_chat",
		Description: "Delete a chat and everything indexed for it",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input getMessagesInput) (*mcp.CallToolResult, deleteChatOutput, error) {
		if err := orchestrator.DeleteChat(ctx, input.ChatId); err != nil {
			return nil, deleteChatOutput{}, err
		}
		return nil, deleteChatOutput{Deleted: true}, nil
	})

	runCtx, stop := signal.NotifyContext(serviceContext, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server listening on stdio")
	if err := server.Run(runCtx, &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server stopped", "error", err)
	}

	close(stopWorkerChannel)
	workerWaitGroup.Wait()
}
