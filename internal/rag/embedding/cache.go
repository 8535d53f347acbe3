package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/pkg/logger_i"
	gocache "github.com/patrickmn/go-cache"
)

// cachedEmbedder memoizes by (text hash, model) so repeated identical chunk
// content never hits the external model twice. Keying on the model tag keeps
// the cache safe across a model upgrade.
type cachedEmbedder struct {
	inner  Embedder
	cache  *gocache.Cache
	logger *logger_i.Logger
}

func WithCache(inner Embedder) Embedder {
	return &cachedEmbedder{
		inner:  inner,
		cache:  gocache.New(config.EmbeddingCacheTTL, config.EmbeddingCacheTTL),
		logger: logger_i.NewLogger("EmbeddingCache"),
	}
}

func cacheKey(text string, model string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]) + "|" + model
}

func (c *cachedEmbedder) Model() string {
	return c.inner.Model()
}

func (c *cachedEmbedder) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	key := cacheKey(text, c.inner.Model())
	if hit, found := c.cache.Get(key); found {
		return hit.(commonModels.Embedding), nil
	}

	emb, err := c.inner.Embed(ctx, text)
	if err != nil {
		return commonModels.Embedding{}, err
	}
	c.cache.Set(key, emb, gocache.DefaultExpiration)
	return emb, nil
}

func (c *cachedEmbedder) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	results := make([]commonModels.Embedding, len(texts))

	var missing []string
	var missingIdx []int
	for i, t := range texts {
		if hit, found := c.cache.Get(cacheKey(t, c.inner.Model())); found {
			results[i] = hit.(commonModels.Embedding)
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		c.logger.Debug("batch fully served from cache", "size", len(texts))
		return results, nil
	}

	fresh, err := c.inner.BatchEmbed(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, emb := range fresh {
		i := missingIdx[j]
		results[i] = emb
		c.cache.Set(cacheKey(texts[i], c.inner.Model()), emb, gocache.DefaultExpiration)
	}
	return results, nil
}
