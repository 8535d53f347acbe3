package openaiEmbedding

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/rag/embedding"
	"github.com/akolanti/RAGChat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	oa    openai.Client
	model string
}

func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		embeddingClient = &client{
			oa:    openai.NewClient(option.WithAPIKey(apikey)),
			model: modelName,
		}
		logger.Info("OpenAI Embedding client created", "model", modelName)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) Model() string {
	return c.model
}

func (c *client) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	embs, err := c.BatchEmbed(ctx, []string{text})
	if err != nil {
		return commonModels.Embedding{}, err
	}
	return embs[0], nil
}

func (c *client) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.oa.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err, "batch", len(texts))
		return nil, err
	}
	if len(res.Data) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	embeddings := make([]commonModels.Embedding, len(res.Data))
	for i, d := range res.Data {
		values := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			values[j] = float32(v)
		}
		embeddings[i] = commonModels.Embedding{Values: values, Model: c.model}
	}
	return embeddings, nil
}
