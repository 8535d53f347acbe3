package rag

import (
	"context"
	"time"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/metrics"
	"github.com/akolanti/RAGChat/internal/rag/assemble"
	"github.com/akolanti/RAGChat/internal/rag/ingest"
	"github.com/akolanti/RAGChat/internal/rag/llm"
	"github.com/akolanti/RAGChat/internal/rag/retriever"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

// QueryResult carries the answer plus the manifest of what fed the prompt.
type QueryResult struct {
	Answer             string
	IncludedChunkIds   []string
	IncludedMessageIds []string
}

// Service is the public contract of the pipeline. The orchestrator only
// calls this - it doesn't need to know the llm, the index or the embedder.
type Service interface {
	// ProcessQuery runs retrieve, assemble and generate for one user turn.
	// A chat with no indexed chunks degrades to a plain conversational
	// answer rather than failing.
	ProcessQuery(ctx context.Context, chatId string, query string, history []chatModel.Message) (QueryResult, error)

	// IngestDocument indexes one uploaded file into the chat's collection
	// and returns the number of chunks stored.
	IngestDocument(ctx context.Context, doc commonModels.Document, path string) (int, error)

	// DeleteChatIndex drops every vector the chat ever stored.
	DeleteChatIndex(ctx context.Context, chatId string) error
}

type service struct {
	retriever   *retriever.Retriever
	assembler   *assemble.Assembler
	llmProvider llm.Provider
	ingestor    *ingest.Ingestor
	index       vectorDB.Index
	logger      *logger_i.Logger
}

// NewService constructor, dependencies injected so tests can swap mocks in.
func NewService(r *retriever.Retriever, a *assemble.Assembler, provider llm.Provider, in *ingest.Ingestor, index vectorDB.Index) Service {
	return &service{
		retriever:   r,
		assembler:   a,
		llmProvider: provider,
		ingestor:    in,
		index:       index,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessQuery(ctx context.Context, chatId string, query string, history []chatModel.Message) (QueryResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	processContext, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	// Retrieval. A broken index must not take the chat down, the prompt is
	// simply assembled without document context.
	matches, err := s.executeRetrievalStep(processContext, inMethodLogger, chatId, query)
	if err != nil {
		inMethodLogger.Error("Retrieval degraded to empty context", "error", err)
		matches = nil
	}

	// Assembly is pure and cheap, no timeout needed.
	prompt := s.executeAssemblyStep(inMethodLogger, query, matches, history)

	// Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, prompt.Text)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Answer:             answer,
		IncludedChunkIds:   prompt.IncludedChunkIds,
		IncludedMessageIds: prompt.IncludedMessageIds,
	}, nil
}

func (s *service) IngestDocument(ctx context.Context, doc commonModels.Document, path string) (int, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	return s.ingestor.ProcessDocument(ctx, doc, path)
}

func (s *service) DeleteChatIndex(ctx context.Context, chatId string) error {
	return s.index.DeleteChat(ctx, chatId)
}
