package rag_test

import (
	"context"

	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

const mockModel = "mock-embed-v1"

// MockIndex implements vectorDB.Index
type MockIndex struct {
	// Control fields to simulate different behaviors
	OnUpsertBatch func(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error
	OnQuery       func(ctx context.Context, chatId string, query commonModels.Embedding, k int) ([]commonModels.ScoredChunk, error)
	OnDeleteChat  func(ctx context.Context, chatId string) error
}

func (m *MockIndex) UpsertBatch(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, chatId, chunks, embeddings)
	}
	return nil
}

func (m *MockIndex) Query(ctx context.Context, chatId string, query commonModels.Embedding, k int) ([]commonModels.ScoredChunk, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, chatId, query, k)
	}
	return []commonModels.ScoredChunk{
		{Chunk: commonModels.DocChunk{ChunkId: "default-chunk", Chunk: "default context"}, Score: 0.9},
	}, nil
}

func (m *MockIndex) DeleteChat(ctx context.Context, chatId string) error {
	if m.OnDeleteChat != nil {
		return m.OnDeleteChat(ctx, chatId)
	}
	return nil
}

type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) (commonModels.Embedding, error)
	OnBatchEmbed func(ctx context.Context, texts []string) ([]commonModels.Embedding, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return commonModels.Embedding{Values: []float32{0.1}, Model: mockModel}, nil
}

func (m *MockEmbedder) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	if m.OnBatchEmbed != nil {
		return m.OnBatchEmbed(ctx, texts)
	}
	// Dummy vectors matching input size
	out := make([]commonModels.Embedding, len(texts))
	for i := range texts {
		out[i] = commonModels.Embedding{Values: []float32{0.1}, Model: mockModel}
	}
	return out, nil
}

func (m *MockEmbedder) Model() string { return mockModel }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}
