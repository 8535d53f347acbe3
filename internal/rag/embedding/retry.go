package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/pkg/logger_i"
	"github.com/avast/retry-go/v4"
	"github.com/openai/openai-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// retryingEmbedder gives every external call a bounded number of retries with
// backoff. Exhausted retries surface as ErrEmbedding; the document owner
// decides whether that sinks the document.
type retryingEmbedder struct {
	inner  Embedder
	logger *logger_i.Logger
}

func WithRetry(inner Embedder) Embedder {
	return &retryingEmbedder{
		inner:  inner,
		logger: logger_i.NewLogger("EmbeddingRetry"),
	}
}

func (r *retryingEmbedder) Model() string {
	return r.inner.Model()
}

func (r *retryingEmbedder) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	emb, err := retry.DoWithData(
		func() (commonModels.Embedding, error) {
			return r.inner.Embed(ctx, text)
		},
		r.options(ctx)...,
	)
	if err != nil {
		return commonModels.Embedding{}, fmt.Errorf("%w: %v", chatModel.ErrEmbedding, err)
	}
	return emb, nil
}

func (r *retryingEmbedder) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	embs, err := retry.DoWithData(
		func() ([]commonModels.Embedding, error) {
			return r.inner.BatchEmbed(ctx, texts)
		},
		r.options(ctx)...,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chatModel.ErrEmbedding, err)
	}
	return embs, nil
}

func (r *retryingEmbedder) options(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Attempts(uint(1 + config.EmbeddingMaxRetries)),
		retry.Delay(config.EmbeddingRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			r.logger.Warn("retrying embedding call", "attempt", attempt, "error", err)
		}),
	}
}

// isRetryable keeps the backoff for quota and availability faults only. A bad
// API key or a malformed request fails the call outright instead of burning
// the whole schedule.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		}
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return true
		}
	}
	return false
}
