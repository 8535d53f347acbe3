package chatModel

import "errors"

// Error kinds of the pipeline. Per-document failures (ingestion, embedding)
// are absorbed into the response manifest; the rest propagate to the caller.
var (
	ErrIngestion     = errors.New("ingestion failed")
	ErrEmbedding     = errors.New("embedding call failed")
	ErrRetrieval     = errors.New("retrieval failed")
	ErrGeneration    = errors.New("generation failed")
	ErrModelMismatch = errors.New("embedding model mismatch")
	ErrChatNotFound  = errors.New("chat not found")
	ErrQueryTooLong  = errors.New("query too long")
)
