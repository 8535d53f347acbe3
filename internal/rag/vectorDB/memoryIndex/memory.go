package memoryIndex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/rag/vectorDB"
)

// Index is a brute-force cosine-similarity store. It backs tests and serves
// as the fallback when qdrant is offline, the same way the redis stores fall
// back to their in-memory twins.
type Index struct {
	mu    sync.RWMutex
	model string
	chats map[string]*collection
}

type collection struct {
	byId    map[string]int //chunk id -> position in entries
	entries []entry
	nextSeq int64
}

type entry struct {
	chunk  commonModels.DocChunk
	vector []float32 //L2-normalized at upsert
	seq    int64     //insertion order, the tie-breaker
}

func New(modelTag string) *Index {
	return &Index{
		model: modelTag,
		chats: make(map[string]*collection),
	}
}

var _ vectorDB.Index = (*Index)(nil)

func (idx *Index) UpsertBatch(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("mismatch: got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	for _, emb := range embeddings {
		if emb.Model != idx.model {
			return fmt.Errorf("%w: index holds %q, got %q", chatModel.ErrModelMismatch, idx.model, emb.Model)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	coll, ok := idx.chats[chatId]
	if !ok {
		coll = &collection{byId: make(map[string]int)}
		idx.chats[chatId] = coll
	}

	for i, chunk := range chunks {
		vec := normalize(embeddings[i].Values)
		if pos, exists := coll.byId[chunk.ChunkId]; exists {
			// replace in place, the original seq keeps ordering stable
			coll.entries[pos].chunk = chunk
			coll.entries[pos].vector = vec
			continue
		}
		coll.byId[chunk.ChunkId] = len(coll.entries)
		coll.entries = append(coll.entries, entry{chunk: chunk, vector: vec, seq: coll.nextSeq})
		coll.nextSeq++
	}
	return nil
}

func (idx *Index) Query(ctx context.Context, chatId string, query commonModels.Embedding, k int) ([]commonModels.ScoredChunk, error) {
	if query.Model != idx.model {
		return nil, fmt.Errorf("%w: index holds %q, got %q", chatModel.ErrModelMismatch, idx.model, query.Model)
	}
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	coll, ok := idx.chats[chatId]
	if !ok || len(coll.entries) == 0 {
		return nil, nil
	}

	queryVec := normalize(query.Values)

	type scored struct {
		e     entry
		score float32
	}
	candidates := make([]scored, len(coll.entries))
	for i, e := range coll.entries {
		candidates[i] = scored{e: e, score: dot(e.vector, queryVec)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].e.seq < candidates[j].e.seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]commonModels.ScoredChunk, k)
	for i := 0; i < k; i++ {
		results[i] = commonModels.ScoredChunk{Chunk: candidates[i].e.chunk, Score: candidates[i].score}
	}
	return results, nil
}

func (idx *Index) DeleteChat(ctx context.Context, chatId string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.chats, chatId)
	return nil
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
