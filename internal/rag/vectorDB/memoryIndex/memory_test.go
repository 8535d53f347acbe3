package memoryIndex

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

const model = "test-embed-v1"

func emb(values ...float32) commonModels.Embedding {
	return commonModels.Embedding{Values: values, Model: model}
}

func chunk(id string, ordinal int) commonModels.DocChunk {
	return commonModels.DocChunk{ChunkId: id, Chunk: "content-" + id, Ordinal: ordinal}
}

func TestQuery_RanksBySimilarity(t *testing.T) {
	idx := New(model)
	ctx := context.Background()

	err := idx.UpsertBatch(ctx, "chat-1",
		[]commonModels.DocChunk{chunk("a", 0), chunk("b", 1), chunk("c", 2)},
		[]commonModels.Embedding{emb(1, 0), emb(0, 1), emb(0.9, 0.1)},
	)
	if err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	results, err := idx.Query(ctx, "chat-1", emb(1, 0), 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Chunk.ChunkId != "a" || results[1].Chunk.ChunkId != "c" {
		t.Errorf("wrong ranking: %s then %s, want a then c", results[0].Chunk.ChunkId, results[1].Chunk.ChunkId)
	}
	if results[0].Score < results[1].Score {
		t.Error("scores are not descending")
	}
}

func TestQuery_TieBreaksByInsertionOrder(t *testing.T) {
	idx := New(model)
	ctx := context.Background()

	// identical vectors, identical scores - earlier chunk must win
	err := idx.UpsertBatch(ctx, "chat-1",
		[]commonModels.DocChunk{chunk("first", 0), chunk("second", 1), chunk("third", 2)},
		[]commonModels.Embedding{emb(1, 1), emb(1, 1), emb(1, 1)},
	)
	if err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	results, _ := idx.Query(ctx, "chat-1", emb(1, 1), 3)
	got := []string{results[0].Chunk.ChunkId, results[1].Chunk.ChunkId, results[2].Chunk.ChunkId}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break order %v, want %v", got, want)
		}
	}
}

func TestQuery_NeverCrossesChats(t *testing.T) {
	idx := New(model)
	ctx := context.Background()

	idx.UpsertBatch(ctx, "chat-1", []commonModels.DocChunk{chunk("mine", 0)}, []commonModels.Embedding{emb(1, 0)})
	idx.UpsertBatch(ctx, "chat-2", []commonModels.DocChunk{chunk("theirs", 0)}, []commonModels.Embedding{emb(1, 0)})

	results, err := idx.Query(ctx, "chat-1", emb(1, 0), 10)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	for _, r := range results {
		if r.Chunk.ChunkId != "mine" {
			t.Fatalf("query leaked chunk %q from another chat", r.Chunk.ChunkId)
		}
	}
}

func TestQuery_EmptyIndexReturnsEmpty(t *testing.T) {
	idx := New(model)

	results, err := idx.Query(context.Background(), "no-such-chat", emb(1, 0), 5)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from an empty index", len(results))
	}
}

func TestUpsert_Idempotent(t *testing.T) {
	idx := New(model)
	ctx := context.Background()

	chunks := []commonModels.DocChunk{chunk("a", 0)}
	embs := []commonModels.Embedding{emb(0.5, 0.5)}
	for i := 0; i < 5; i++ {
		if err := idx.UpsertBatch(ctx, "chat-1", chunks, embs); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	results, _ := idx.Query(ctx, "chat-1", emb(0.5, 0.5), 10)
	if len(results) != 1 {
		t.Errorf("repeated upsert duplicated the entry: %d results", len(results))
	}
}

func TestModelTagGuard(t *testing.T) {
	idx := New(model)
	ctx := context.Background()
	foreign := commonModels.Embedding{Values: []float32{1}, Model: "other-model-v2"}

	err := idx.UpsertBatch(ctx, "chat-1", []commonModels.DocChunk{chunk("a", 0)}, []commonModels.Embedding{foreign})
	if !errors.Is(err, chatModel.ErrModelMismatch) {
		t.Errorf("upsert: got %v, want ErrModelMismatch", err)
	}

	_, err = idx.Query(ctx, "chat-1", foreign, 3)
	if !errors.Is(err, chatModel.ErrModelMismatch) {
		t.Errorf("query: got %v, want ErrModelMismatch", err)
	}
}

func TestDeleteChat_TearsDownAllEntries(t *testing.T) {
	idx := New(model)
	ctx := context.Background()

	idx.UpsertBatch(ctx, "chat-1", []commonModels.DocChunk{chunk("a", 0), chunk("b", 1)}, []commonModels.Embedding{emb(1, 0), emb(0, 1)})
	if err := idx.DeleteChat(ctx, "chat-1"); err != nil {
		t.Fatalf("DeleteChat failed: %v", err)
	}

	results, err := idx.Query(ctx, "chat-1", emb(1, 0), 10)
	if err != nil || len(results) != 0 {
		t.Errorf("entries survived teardown: %d results, err %v", len(results), err)
	}
}
