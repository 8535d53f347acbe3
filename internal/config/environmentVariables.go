package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"
	USER_ID_KEY    = "userId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//auth - the identity service in front of us issues and validates user tokens,
	//we only gate on the shared service token and trust the resolved user header
	NoAuthBypass = false
	UserIdHeader = "X-User-Id"

	//chunking - counts are in runes so multi-byte text never splits mid-character
	ChunkLength  = 1000
	ChunkOverlap = 150

	//retrieval
	TopK = 4

	//context assembly
	ContextBudget  = 8000 //runes for the whole assembled prompt
	HistoryWindow  = 10   //messages fetched for assembly, the budget trims further
	MaxQueryLength = 4000 //runes, keeps preamble plus query inside ContextBudget

	PromptPreamble = "You are a helpful assistant. Answer using the provided document context and the conversation so far. If the context does not contain the answer, say you don't know."

	//embeddings
	EmbeddingOutputDimensionality int32 = 1536
	EmbeddingMaxRetries                 = 2
	EmbeddingRetryDelay                 = 2 * time.Second
	EmbeddingCacheTTL                   = 12 * time.Hour
	EmbedCallTimeout                    = 30 * time.Second
	GoogleEmbeddingModel                = "gemini-embedding-001"
	OpenAIEmbeddingModel                = "text-embedding-3-small"

	//llm
	ProviderGoogle            = "google"
	ProviderOpenAI            = "openai"
	GeminiModelName           = "gemini-2.5-flash-lite-preview-09-2025"
	OpenAIModelName           = "gpt-4o-mini"
	GenerationTimeout         = 3 * time.Minute //model responses are slow, clients wait this long
	ModelTemperature  float32 = 0.7

	//worker pool - document ingestion fan-out
	MaxWorkerCount    int64 = 10
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute
	BufferLimit             = 100

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 4 * time.Minute //must outlast GenerationTimeout
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//vectorDB
	ChunkCollection        = "chat-chunks"
	QdrantHost             = "127.0.0.1"
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1                //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout = 30 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DBs we can use
	RedisChatStore     = 0
	RedisDocumentStore = 1

	RedisChatStoreTTL     = 24 * time.Hour
	RedisDocumentStoreTTL = 24 * time.Hour

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
)
