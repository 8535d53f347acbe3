package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type flakyEmbedder struct {
	calls int32
	err   error
}

func (f *flakyEmbedder) Model() string { return "test-model-v1" }

func (f *flakyEmbedder) Embed(ctx context.Context, text string) (commonModels.Embedding, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return commonModels.Embedding{}, f.err
	}
	return commonModels.Embedding{Values: []float32{1}, Model: f.Model()}, nil
}

func (f *flakyEmbedder) BatchEmbed(ctx context.Context, texts []string) ([]commonModels.Embedding, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]commonModels.Embedding, len(texts))
	for i := range texts {
		out[i] = commonModels.Embedding{Values: []float32{1}, Model: f.Model()}
	}
	return out, nil
}

func TestRetryingEmbedder_NonRetryableFailsImmediately(t *testing.T) {
	inner := &flakyEmbedder{err: errors.New("invalid api key")}
	e := WithRetry(inner)

	_, err := e.Embed(context.Background(), "text")
	if !errors.Is(err, chatModel.ErrEmbedding) {
		t.Fatalf("got %v, want ErrEmbedding", err)
	}
	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("non-retryable fault hit the provider %d times, want 1", got)
	}
}

func TestRetryingEmbedder_RetriesAvailabilityFaults(t *testing.T) {
	if testing.Short() {
		t.Skip("waits through the retry backoff")
	}

	inner := &flakyEmbedder{err: status.Error(codes.Unavailable, "upstream down")}
	e := WithRetry(inner)

	if _, err := e.BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if got := atomic.LoadInt32(&inner.calls); got < 2 {
		t.Errorf("availability fault was not retried: %d calls", got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"quota exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"unavailable", status.Error(codes.Unavailable, "down"), true},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "slow"), true},
		{"permission denied", status.Error(codes.PermissionDenied, "bad key"), false},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad input"), false},
		{"plain error", errors.New("boom"), false},
		{"cancelled context", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
