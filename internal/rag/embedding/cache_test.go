package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

type countingEmbedder struct {
	calls int32
	fail  bool
}

func (c *countingEmbedder) Model() string { return "test-model-v1" }

func (c *countingEmbedder) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.fail {
		return commonModels.Embedding{}, errors.New("provider down")
	}
	return commonModels.Embedding{Values: []float32{float32(len(text))}, Model: c.Model()}, nil
}

func (c *countingEmbedder) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.fail {
		return nil, errors.New("provider down")
	}
	out := make([]commonModels.Embedding, len(texts))
	for i, t := range texts {
		out[i] = commonModels.Embedding{Values: []float32{float32(len(t))}, Model: c.Model()}
	}
	return out, nil
}

func TestCachedEmbedder_IdenticalInputHitsOnce(t *testing.T) {
	inner := &countingEmbedder{}
	e := WithCache(inner)
	ctx := context.Background()

	first, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	second, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if atomic.LoadInt32(&inner.calls) != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
	if first.Model != second.Model || first.Values[0] != second.Values[0] {
		t.Error("cached result differs from the original")
	}
}

func TestCachedEmbedder_BatchServesPartialHits(t *testing.T) {
	inner := &countingEmbedder{}
	e := WithCache(inner)
	ctx := context.Background()

	if _, err := e.Embed(ctx, "alpha"); err != nil {
		t.Fatalf("warm-up failed: %v", err)
	}

	embs, err := e.BatchEmbed(ctx, []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if len(embs) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(embs))
	}
	for i, text := range []string{"alpha", "beta", "gamma"} {
		if embs[i].Values[0] != float32(len(text)) {
			t.Errorf("embedding %d out of order after cache merge", i)
		}
	}
	// warm-up + one batch for the two misses
	if atomic.LoadInt32(&inner.calls) != 2 {
		t.Errorf("expected 2 provider calls, got %d", inner.calls)
	}
}

func TestCachedEmbedder_ErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	e := WithCache(inner)

	if _, err := e.Embed(context.Background(), "boom"); err == nil {
		t.Fatal("expected error from failing provider")
	}

	inner.fail = false
	if _, err := e.Embed(context.Background(), "boom"); err != nil {
		t.Errorf("recovered provider still failing through cache: %v", err)
	}
}
