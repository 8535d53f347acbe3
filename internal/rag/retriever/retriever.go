package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/rag/embedding"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

// Retriever turns a raw query into the chat's most similar chunks. It owns
// the embed-then-search pair so callers never juggle raw vectors.
type Retriever struct {
	embedder embedding.Embedder
	index    vectorDB.Index
	logger   *logger_i.Logger
}

func New(embedder embedding.Embedder, index vectorDB.Index) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   logger_i.NewLogger("Retriever"),
	}
}

// Retrieve returns up to k chunks of the chat ranked by similarity to the
// query. A chat with no indexed chunks yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, chatId string, query string, k int) ([]commonModels.ScoredChunk, error) {
	logger := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if k <= 0 {
		k = config.TopK
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Error("Could not embed query", "error", err)
		return nil, fmt.Errorf("%w: embedding query: %v", chatModel.ErrRetrieval, err)
	}

	matches, err := r.index.Query(ctx, chatId, queryEmbedding, k)
	if err != nil {
		logger.Error("Index query failed", "chatId", chatId, "error", err)
		return nil, fmt.Errorf("%w: %v", chatModel.ErrRetrieval, err)
	}

	logger.Info("Retrieved chunks", "chatId", chatId, "requested", k, "got", len(matches))
	return matches, nil
}
