package embedding

import (
	"context"

	"github.com/akolanti/RAGChat/internal/domain/commonModels"
)

type Embedder interface {
	Embed(ctx context.Context, text string) (commonModels.Embedding, error)
	BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error)
	Model() string
}
