package rag

import (
	"context"
	"time"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/metrics"
	"github.com/akolanti/RAGChat/internal/rag/assemble"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, chatId string, query string) ([]commonModels.ScoredChunk, error) {
	log.Debug("ProcessQuery", "step", "retrieval")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	return s.retriever.Retrieve(ctx, chatId, query, config.TopK)
}

func (s *service) executeAssemblyStep(log *logger_i.Logger, query string, matches []commonModels.ScoredChunk, history []chatModel.Message) assemble.Prompt {
	log.Debug("ProcessQuery", "step", "assembly")

	prompt := s.assembler.Assemble(query, matches, history)
	log.Debug("Assembled prompt", "chunks included", len(prompt.IncludedChunkIds), "messages included", len(prompt.IncludedMessageIds))
	return prompt
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, prompt string) (string, error) {
	log.Debug("ProcessQuery", "step", "generation")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, prompt)
}
