package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/RAGChat/internal/config"
	"github.com/akolanti/RAGChat/internal/domain/chatModel"
	"github.com/akolanti/RAGChat/internal/domain/commonModels"
	"github.com/akolanti/RAGChat/internal/rag"
	"github.com/akolanti/RAGChat/internal/rag/assemble"
	"github.com/akolanti/RAGChat/internal/rag/chunker"
	"github.com/akolanti/RAGChat/internal/rag/ingest"
	"github.com/akolanti/RAGChat/internal/rag/retriever"
)

func newService(t *testing.T, emb *MockEmbedder, idx *MockIndex, llm *MockLLM) rag.Service {
	t.Helper()
	ch, err := chunker.New(50, 10)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	return rag.NewService(
		retriever.New(emb, idx),
		assemble.New(config.PromptPreamble, config.ContextBudget),
		llm,
		ingest.New(ch, emb, idx),
		idx,
	)
}

func TestProcessQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockIndex, l *MockLLM)
		expectedAnswer string
		expectedChunks []string
		expectErr      error
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					if !strings.Contains(prompt, "default context") {
						t.Errorf("retrieved chunk missing from prompt: %q", prompt)
					}
					return "final answer", nil
				}
			},
			expectedAnswer: "final answer",
			expectedChunks: []string{"default-chunk"},
		},
		{
			name: "Empty_Index_Degrades_To_Plain_Answer",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockLLM) {
				v.OnQuery = func(ctx context.Context, chatId string, q commonModels.Embedding, k int) ([]commonModels.ScoredChunk, error) {
					return nil, nil
				}
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					return "plain answer", nil
				}
			},
			expectedAnswer: "plain answer",
			expectedChunks: []string{},
		},
		{
			name: "Retrieval_Failure_Degrades_To_Plain_Answer",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockLLM) {
				e.OnEmbed = func(ctx context.Context, text string) (commonModels.Embedding, error) {
					return commonModels.Embedding{}, errors.New("api limit")
				}
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					return "answer without documents", nil
				}
			},
			expectedAnswer: "answer without documents",
			expectedChunks: []string{},
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, prompt string) (string, error) {
					return "", chatModel.ErrGeneration
				}
			},
			expectErr: chatModel.ErrGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mIdx := &MockIndex{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mIdx, mLLM)

			s := newService(t, mEmbed, mIdx, mLLM)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			result, err := s.ProcessQuery(ctx, "chat-1", "test question", nil)

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("got err %v, want %v", err, tt.expectErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProcessQuery failed: %v", err)
			}

			if result.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %q, want %q", result.Answer, tt.expectedAnswer)
			}
			if len(result.IncludedChunkIds) != len(tt.expectedChunks) {
				t.Errorf("Manifest got %v, want %v", result.IncludedChunkIds, tt.expectedChunks)
			}
		})
	}
}

func TestProcessQuery_HistoryReachesPrompt(t *testing.T) {
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "earlier question") {
				t.Errorf("history missing from prompt: %q", prompt)
			}
			return "ok", nil
		},
	}

	s := newService(t, &MockEmbedder{}, &MockIndex{}, mLLM)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	history := []chatModel.Message{
		{Id: "m1", Role: chatModel.RoleUser, Content: "earlier question"},
		{Id: "m2", Role: chatModel.RoleAssistant, Content: "earlier answer"},
	}
	result, err := s.ProcessQuery(ctx, "chat-1", "follow-up", history)
	if err != nil {
		t.Fatalf("ProcessQuery failed: %v", err)
	}
	if len(result.IncludedMessageIds) != 2 {
		t.Errorf("history manifest got %v, want both messages", result.IncludedMessageIds)
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		content    []byte
		setupMocks func(e *MockEmbedder, v *MockIndex)
		expectErr  bool
	}{
		{
			name:       "Ingestion_Success",
			fileName:   "test_ingest.txt",
			content:    []byte("test content for ingestion"),
			setupMocks: func(e *MockEmbedder, v *MockIndex) {},
		},
		{
			name:     "Failure_Batch_Upsert",
			fileName: "test_ingest.txt",
			content:  []byte("test content for ingestion"),
			setupMocks: func(e *MockEmbedder, v *MockIndex) {
				v.OnUpsertBatch = func(ctx context.Context, chatId string, chunks []commonModels.DocChunk, embeddings []commonModels.Embedding) error {
					return errors.New("disk full")
				}
			},
			expectErr: true,
		},
		{
			name:       "Failure_Corrupt_Bytes",
			fileName:   "broken.pdf",
			content:    []byte("these are not pdf bytes"),
			setupMocks: func(e *MockEmbedder, v *MockIndex) {},
			expectErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.fileName)
			if err := os.WriteFile(path, tt.content, 0o644); err != nil {
				t.Fatal(err)
			}

			mEmbed := &MockEmbedder{}
			mIdx := &MockIndex{}
			tt.setupMocks(mEmbed, mIdx)

			s := newService(t, mEmbed, mIdx, &MockLLM{})

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
			doc := commonModels.Document{Id: "doc-1", ChatId: "chat-1", Name: tt.fileName}

			count, err := s.IngestDocument(ctx, doc, path)

			if tt.expectErr {
				if !errors.Is(err, chatModel.ErrIngestion) {
					t.Errorf("got %v, want ErrIngestion", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("IngestDocument failed: %v", err)
			}
			if count == 0 {
				t.Error("no chunks indexed")
			}
		})
	}
}
