package googleEmbedding

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/rag/embedding"
	"github.com/akolanti/RAGChat/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Info("Google Embedding client created", "model", modelName)
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func (c *client) Model() string {
	return c.model
}

func (c *client) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, genai.Text(text))
	if err != nil {
		log.Error("Error getting Embedding from Google", "error", err, "retryable", isRetryable(err))
		return commonModels.Embedding{}, err
	}
	if len(result.Embeddings) == 0 {
		return commonModels.Embedding{}, errors.New("empty embedding response")
	}
	return commonModels.Embedding{Values: result.Embeddings[0].Values, Model: c.model}, nil
}

func (c *client) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, getContent(texts))
	if err != nil {
		log.Error("Error getting batch Embeddings from Google", "error", err, "batch", len(texts))
		return nil, err
	}
	if len(result.Embeddings) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	embeddings := make([]commonModels.Embedding, len(result.Embeddings))
	for i, r := range result.Embeddings {
		embeddings[i] = commonModels.Embedding{Values: r.Values, Model: c.model}
	}
	return embeddings, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}
