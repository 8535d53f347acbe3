package commonModels

import "time"

type DocStatus string

const (
	DocStatusPending  DocStatus = "pending"
	DocStatusIngested DocStatus = "ingested"
	DocStatusFailed   DocStatus = "failed"
)

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)

// Document is chat-scoped: it lives and dies with the chat it was uploaded into.
type Document struct {
	Id          string    `json:"source_doc_id"`
	ChatId      string    `json:"chat_id"`
	Name        string    `json:"doc_name"`
	ContentType DocType   `json:"content_type"`
	Status      DocStatus `json:"status"`
	FailReason  string    `json:"fail_reason,omitempty"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DocChunk is the unit of retrieval. Ordinal is the chunk's position within
// its parent document and doubles as the deterministic tie-breaker.
type DocChunk struct {
	Doc     Document `json:"doc"`
	ChunkId string   `json:"chunk_id"`
	Chunk   string   `json:"content"`
	Ordinal int      `json:"ordinal"`
}

// Embedding pairs the vector with the model that produced it. The tag is
// load-bearing: vectors from different models must never be compared.
type Embedding struct {
	Values []float32 `json:"values"`
	Model  string    `json:"model"`
}

type ScoredChunk struct {
	Chunk DocChunk `json:"chunk"`
	Score float32  `json:"score"`
}
