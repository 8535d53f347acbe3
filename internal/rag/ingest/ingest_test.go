package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/rag/chunker"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB/memoryIndex"
)

const testModel = "test-embed-v1"

type mockEmbedder struct {
	batchFunc func(ctx context.Context, texts []string) ([]commonModels.Embedding, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	embs, err := m.batchFunc(ctx, []string{text})
	if err != nil {
		return commonModels.Embedding{}, err
	}
	return embs[0], nil
}
func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	return m.batchFunc(ctx, texts)
}
func (m *mockEmbedder) Model() string { return testModel }

func unitEmbedder() *mockEmbedder {
	return &mockEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
			out := make([]commonModels.Embedding, len(texts))
			for i := range texts {
				out[i] = commonModels.Embedding{Values: []float32{1, 0}, Model: testModel}
			}
			return out, nil
		},
	}
}

type mockIndex struct {
	upsertFunc func(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error
}

func (m *mockIndex) UpsertBatch(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error {
	return m.upsertFunc(ctx, chatId, chunks, embeddings)
}
func (m *mockIndex) Query(ctx context.Context, chatId string, query commonModels.Embedding, k int) ([]commonModels.ScoredChunk, error) {
	return nil, nil
}
func (m *mockIndex) DeleteChat(ctx context.Context, chatId string) error { return nil }

func newTestIngestor(t *testing.T, idx *mockIndex) *Ingestor {
	t.Helper()
	ch, err := chunker.New(50, 10)
	if err != nil {
		t.Fatalf("chunker.New failed: %v", err)
	}
	return New(ch, unitEmbedder(), idx)
}

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.DOCX},
		{"image.png", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestPrepareChunks_OrdinalsRunAcrossDocument(t *testing.T) {
	in := newTestIngestor(t, &mockIndex{})
	pages := []rawPage{
		{Number: 1, Content: strings.Repeat("a", 60)},
		{Number: 2, Content: strings.Repeat("b", 60)},
	}
	doc := commonModels.Document{Id: "doc-1", ChatId: "chat-1", Name: "d.txt"}

	chunks, err := in.prepareChunks(pages, doc)
	if err != nil {
		t.Fatalf("prepareChunks failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
		if c.Doc.Id != "doc-1" {
			t.Errorf("chunk %d lost its document reference: %+v", i, c.Doc)
		}
		if c.ChunkId == "" {
			t.Errorf("chunk %d has no id", i)
		}
	}
}

func TestBatchIngest_SplitsIntoBatches(t *testing.T) {
	chunks := make([]commonModels.DocChunk, 150) // 100 + 50
	for i := range chunks {
		chunks[i] = commonModels.DocChunk{ChunkId: "c", Chunk: "test content"}
	}

	callCount := 0
	idx := &mockIndex{
		upsertFunc: func(ctx context.Context, chatId string, c []commonModels.DocChunk, e []commonModels.Embedding) error {
			callCount++
			if len(c) != len(e) {
				t.Errorf("batch %d: %d chunks but %d embeddings", callCount, len(c), len(e))
			}
			return nil
		},
	}

	in := newTestIngestor(t, idx)
	if err := in.batchIngest(context.Background(), "chat-1", chunks); err != nil {
		t.Fatalf("batchIngest failed: %v", err)
	}
	if callCount != 2 {
		t.Errorf("expected 2 batches to be upserted, got %d", callCount)
	}
}

func TestBatchIngest_UpsertErrorIsIngestionError(t *testing.T) {
	idx := &mockIndex{
		upsertFunc: func(ctx context.Context, chatId string, c []commonModels.DocChunk, e []commonModels.Embedding) error {
			return errors.New("qdrant down")
		},
	}

	in := newTestIngestor(t, idx)
	err := in.batchIngest(context.Background(), "chat-1", []commonModels.DocChunk{{Chunk: "hi"}})
	if !errors.Is(err, chatModel.ErrIngestion) {
		t.Errorf("got %v, want ErrIngestion", err)
	}
}

func TestProcessDocument_PlainTextEndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := strings.Repeat("retrieval augmented generation. ", 10)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ch, _ := chunker.New(50, 10)
	idx := memoryIndex.New(testModel)
	in := New(ch, unitEmbedder(), idx)
	doc := commonModels.Document{Id: "doc-1", ChatId: "chat-1", Name: "notes.txt"}

	count, err := in.ProcessDocument(context.Background(), doc, path)
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}
	if count == 0 {
		t.Fatal("no chunks indexed")
	}

	results, err := idx.Query(context.Background(), "chat-1", commonModels.Embedding{Values: []float32{1, 0}, Model: testModel}, 1)
	if err != nil || len(results) == 0 {
		t.Fatalf("indexed chunks not queryable: results=%v err=%v", results, err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("source file not cleaned up after ingestion")
	}
}

func TestProcessDocument_UnsupportedTypeFails(t *testing.T) {
	in := newTestIngestor(t, &mockIndex{})
	doc := commonModels.Document{Id: "doc-1", ChatId: "chat-1", Name: "image.png"}

	_, err := in.ProcessDocument(context.Background(), doc, "/tmp/does-not-matter.png")
	if !errors.Is(err, chatModel.ErrIngestion) {
		t.Errorf("got %v, want ErrIngestion", err)
	}
}

func TestProcessDocument_CorruptPdfFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	in := newTestIngestor(t, &mockIndex{})
	doc := commonModels.Document{Id: "doc-1", ChatId: "chat-1", Name: "broken.pdf"}

	_, err := in.ProcessDocument(context.Background(), doc, path)
	if !errors.Is(err, chatModel.ErrIngestion) {
		t.Errorf("got %v, want ErrIngestion", err)
	}
}
