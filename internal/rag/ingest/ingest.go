package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/akolanti/RAGChat/internal/adapter/utils"
	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/rag/chunker"
	"github.com/akolanti/RAGChat/internal/rag/embedding"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB"
	"github.com/akolanti/RAGChat/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

const embedBatchSize = 100

// Ingestor owns the extract-chunk-embed-upsert pipeline for one uploaded
// document. Everything it indexes stays scoped to the document's chat.
type Ingestor struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	index    vectorDB.Index
}

func New(ch *chunker.Chunker, embedder embedding.Embedder, index vectorDB.Index) *Ingestor {
	return &Ingestor{
		chunker:  ch,
		embedder: embedder,
		index:    index,
	}
}

// ProcessDocument runs the full ingestion of one file and returns the number
// of chunks indexed. The file at path is removed after a successful run.
// Failures are wrapped so callers can report the document as failed without
// aborting the rest of the request.
func (in *Ingestor) ProcessDocument(ctx context.Context, doc commonModels.Document, path string) (int, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	loggr.Debug("Processing document", "filename", doc.Name, "path", path)

	docType := getDocType(doc.Name)
	if docType == commonModels.ERR {
		return 0, fmt.Errorf("%w: unsupported file type %q", chatModel.ErrIngestion, doc.Name)
	}
	doc.ContentType = docType

	pages, err := extractText(path, docType)
	if err != nil {
		return 0, fmt.Errorf("%w: extracting %q: %v", chatModel.ErrIngestion, doc.Name, err)
	}

	chunks, err := in.prepareChunks(pages, doc)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		loggr.Info("Document yielded no text", "filename", doc.Name)
		return 0, nil
	}

	loggr.Debug("Processing document", "chunks", len(chunks))
	if err := in.batchIngest(ctx, doc.ChatId, chunks); err != nil {
		return 0, err
	}

	if err := os.Remove(path); err != nil {
		loggr.Error("Error removing file", "error", err)
	}
	return len(chunks), nil
}

// prepareChunks splits the document text into spans and stamps each with its
// identity. Ordinals run across the whole document so retrieval ties resolve
// toward earlier content.
func (in *Ingestor) prepareChunks(pages []rawPage, doc commonModels.Document) ([]commonModels.DocChunk, error) {
	var parts []string
	for _, page := range pages {
		if page.Content != "" {
			parts = append(parts, page.Content)
		}
	}
	text := strings.Join(parts, "\n\n")

	spans, err := in.chunker.Split(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chatModel.ErrIngestion, err)
	}

	chunks := make([]commonModels.DocChunk, len(spans))
	for i, span := range spans {
		chunks[i] = commonModels.DocChunk{
			Doc:     doc,
			ChunkId: utils.GetNewUUID(),
			Chunk:   span.Text,
			Ordinal: span.Ordinal,
		}
	}
	return chunks, nil
}

func (in *Ingestor) batchIngest(ctx context.Context, chatId string, chunks []commonModels.DocChunk) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	for i := 0; i < len(chunks); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		loggr.Debug("Starting embedding call", "batch length", len(currentBatch))
		vectors, err := in.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		err = in.index.UpsertBatch(ctx, chatId, currentBatch, vectors)
		if err != nil {
			return fmt.Errorf("%w: upserting batch: %v", chatModel.ErrIngestion, err)
		}
	}
	return nil
}
