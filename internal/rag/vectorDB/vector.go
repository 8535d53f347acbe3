package vectorDB

import (
	"context"

	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

// Index is a per-chat collection of (chunk, embedding) pairs. Entries never
// cross chats; similarity is cosine and fixed for the life of the index.
// Implementations must reject embeddings whose model tag differs from the
// index's - vectors from different models are not comparable.
type Index interface {
	// UpsertBatch inserts or replaces entries by chunk id. Idempotent under
	// repeated identical input.
	UpsertBatch(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error

	// Query returns up to k entries of the given chat ranked by similarity.
	// Ties break toward the earlier chunk (ingest order, then ordinal).
	// An empty index yields an empty result, never an error.
	Query(ctx context.Context, chatId string, query commonModels.Embedding, k int) ([]commonModels.ScoredChunk, error)

	// DeleteChat tears down every entry belonging to the chat.
	DeleteChat(ctx context.Context, chatId string) error
}
